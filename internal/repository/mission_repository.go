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

const getMissionParticipantsQuery = `SELECT creator_id, manito_id FROM missions WHERE id = $1`

type pgMissionRepository struct {
	db     DBTX
	logger *zap.Logger
}

var _ MissionRepository = (*pgMissionRepository)(nil)

func NewPgMissionRepository(db DBTX, logger *zap.Logger) MissionRepository {
	return &pgMissionRepository{
		db:     db,
		logger: logger.Named("MissionRepo"),
	}
}

// GetParticipants wraps every failure, including a missing row, in models.ErrMissionLookupFailed.
func (r *pgMissionRepository) GetParticipants(ctx context.Context, missionID string) (*models.MissionParticipants, error) {
	log := r.logger.With(zap.String("mission_id", missionID))

	var row struct {
		CreatorID  *string `db:"creator_id"`
		AssigneeID *string `db:"manito_id"`
	}
	err := pgxscan.Get(ctx, r.db, &row, getMissionParticipantsQuery, missionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn("Mission not found")
			return nil, fmt.Errorf("mission %s not found: %w", missionID, models.ErrMissionLookupFailed)
		}
		log.Error("Error getting mission participants", zap.Error(err))
		return nil, fmt.Errorf("mission %s: %w: %v", missionID, models.ErrMissionLookupFailed, err)
	}

	p := &models.MissionParticipants{}
	if row.CreatorID != nil {
		p.CreatorID = *row.CreatorID
	}
	if row.AssigneeID != nil {
		p.AssigneeID = *row.AssigneeID
	}
	return p, nil
}
