package mocks

import (
	"context"

	"github.com/JJulme/manito/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock Sender
type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, pushToken string, payload *models.NotificationPayload) (*models.DeliveryReceipt, error) {
	args := m.Called(ctx, pushToken, payload)
	receipt, _ := args.Get(0).(*models.DeliveryReceipt)
	return receipt, args.Error(1)
}
