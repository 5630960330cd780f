//go:build integration

package repository_test

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/JJulme/manito/internal/models"
	"github.com/JJulme/manito/internal/repository"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

//go:embed testdata/migrations/*.sql
var migrations embed.FS

const seed = `
INSERT INTO profiles (id, fcm_token, nickname) VALUES
	('u1', 'tok-u1', '민수'),
	('u2', 'tok-u2', '지영'),
	('u3', NULL, '하늘'),
	('u4', '', NULL);
INSERT INTO missions (id, creator_id, manito_id, status) VALUES
	('m1', 'u1', 'u2', '진행중');
`

type RepositorySuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	profiles    repository.ProfileRepository
	missions    repository.MissionRepository
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("manito_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	dsn, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, dsn)
	require.NoError(s.T(), err)

	require.NoError(s.T(), runMigrations(dsn), "Failed to run migrations")

	_, err = s.pool.Exec(s.ctx, seed)
	require.NoError(s.T(), err, "Failed to seed test data")

	logger := zap.NewNop()
	s.profiles = repository.NewPgProfileRepository(s.pool, logger)
	s.missions = repository.NewPgMissionRepository(s.pool, logger)
}

func runMigrations(dbURL string) error {
	source, err := iofs.New(migrations, "testdata/migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (s *RepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		s.NoError(s.pgContainer.Terminate(s.ctx))
	}
}

func (s *RepositorySuite) TestGetPushToken() {
	token, err := s.profiles.GetPushToken(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("tok-u1", token)

	for _, id := range []string{"u3", "u4", "missing"} {
		_, err := s.profiles.GetPushToken(s.ctx, id)
		s.ErrorIs(err, models.ErrRecipientNotFound, id)
	}
}

func (s *RepositorySuite) TestGetNickname() {
	name, err := s.profiles.GetNickname(s.ctx, "u2")
	s.Require().NoError(err)
	s.Equal("지영", name)

	name, err = s.profiles.GetNickname(s.ctx, "u4")
	s.Require().NoError(err)
	s.Empty(name)

	_, err = s.profiles.GetNickname(s.ctx, "missing")
	s.ErrorIs(err, models.ErrSenderNotFound)
}

func (s *RepositorySuite) TestGetParticipants() {
	p, err := s.missions.GetParticipants(s.ctx, "m1")
	s.Require().NoError(err)
	s.Equal(&models.MissionParticipants{CreatorID: "u1", AssigneeID: "u2"}, p)

	_, err = s.missions.GetParticipants(s.ctx, "missing")
	s.ErrorIs(err, models.ErrMissionLookupFailed)
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}
