package mocks

import (
	"context"

	"github.com/JJulme/manito/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock ProfileRepository
type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) GetPushToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *ProfileRepository) GetNickname(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// Mock MissionRepository
type MissionRepository struct {
	mock.Mock
}

func (m *MissionRepository) GetParticipants(ctx context.Context, missionID string) (*models.MissionParticipants, error) {
	args := m.Called(ctx, missionID)
	p, _ := args.Get(0).(*models.MissionParticipants)
	return p, args.Error(1)
}
