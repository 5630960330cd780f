package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/JJulme/manito/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	getPushTokenQuery = `SELECT fcm_token FROM profiles WHERE id = $1`
	getNicknameQuery  = `SELECT nickname FROM profiles WHERE id = $1`
)

type pgProfileRepository struct {
	db     DBTX
	logger *zap.Logger
}

var _ ProfileRepository = (*pgProfileRepository)(nil)

func NewPgProfileRepository(db DBTX, logger *zap.Logger) ProfileRepository {
	return &pgProfileRepository{
		db:     db,
		logger: logger.Named("ProfileRepo"),
	}
}

func (r *pgProfileRepository) GetPushToken(ctx context.Context, userID string) (string, error) {
	log := r.logger.With(zap.String("user_id", userID))

	var row struct {
		FCMToken *string `db:"fcm_token"`
	}
	err := pgxscan.Get(ctx, r.db, &row, getPushTokenQuery, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Profile not found while resolving push token")
			return "", fmt.Errorf("user %s: %w", userID, models.ErrRecipientNotFound)
		}
		log.Error("Error getting push token", zap.Error(err))
		return "", fmt.Errorf("failed to get push token for user %s: %w", userID, err)
	}
	if row.FCMToken == nil || *row.FCMToken == "" {
		log.Info("Profile has no push token")
		return "", fmt.Errorf("user %s has no push token: %w", userID, models.ErrRecipientNotFound)
	}
	return *row.FCMToken, nil
}

func (r *pgProfileRepository) GetNickname(ctx context.Context, userID string) (string, error) {
	var row struct {
		Nickname *string `db:"nickname"`
	}
	err := pgxscan.Get(ctx, r.db, &row, getNicknameQuery, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Sender profile not found", zap.String("user_id", userID))
			return "", fmt.Errorf("user %s: %w", userID, models.ErrSenderNotFound)
		}
		r.logger.Error("Error getting nickname", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("failed to get nickname for user %s: %w", userID, err)
	}
	if row.Nickname == nil {
		return "", nil
	}
	return *row.Nickname, nil
}
