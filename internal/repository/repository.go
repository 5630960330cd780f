package repository

import (
	"context"

	"github.com/JJulme/manito/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ProfileRepository reads user profiles.
type ProfileRepository interface {
	// GetPushToken returns the user's device token or models.ErrRecipientNotFound
	// when the profile is missing or has no token.
	GetPushToken(ctx context.Context, userID string) (string, error)
	// GetNickname returns models.ErrSenderNotFound when the profile is missing.
	GetNickname(ctx context.Context, userID string) (string, error)
}

// MissionRepository reads mission rows.
type MissionRepository interface {
	GetParticipants(ctx context.Context, missionID string) (*models.MissionParticipants, error)
}
