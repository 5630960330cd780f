package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/JJulme/manito/internal/models"

	"go.uber.org/zap"
)

// Sender delivers one payload to one device.
type Sender interface {
	Send(ctx context.Context, pushToken string, payload *models.NotificationPayload) (*models.DeliveryReceipt, error)
}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// --- Stub sender ---

type stubSender struct {
	logger *zap.Logger
}

// NewStubSender returns a Sender that only logs. Used when FCM credentials are not configured.
func NewStubSender(logger *zap.Logger) Sender {
	return &stubSender{logger: logger.Named("stub_sender")}
}

func (s *stubSender) Send(_ context.Context, pushToken string, payload *models.NotificationPayload) (*models.DeliveryReceipt, error) {
	s.logger.Info("STUB: push notification not sent",
		zap.String("token", pushToken),
		zap.String("title", payload.Title),
		zap.String("body", payload.Body),
		zap.Any("data", payload.Data),
		zap.Bool("localized", payload.Localized()),
	)
	body, _ := json.Marshal(map[string]string{"name": "stub"})
	return &models.DeliveryReceipt{StatusCode: http.StatusOK, Body: body}, nil
}
