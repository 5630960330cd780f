package mocks

import (
	"context"

	"github.com/JJulme/manito/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock EventHandler
type EventHandler struct {
	mock.Mock
}

func (m *EventHandler) Handle(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome {
	args := m.Called(ctx, event)
	return args.Get(0).(models.DeliveryOutcome)
}
