package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JJulme/manito/internal/googleauth"
	"github.com/JJulme/manito/internal/metrics"
	"github.com/JJulme/manito/internal/models"

	"go.uber.org/zap"
)

const (
	driverHTTP       = "http"
	maxGatewayAnswer = 1 << 20
)

type fcmHTTPSender struct {
	client   HTTPClient
	endpoint string
	cred     *googleauth.Credentials
	tokens   googleauth.TokenProvider
	logger   *zap.Logger
}

var _ Sender = (*fcmHTTPSender)(nil)

// NewFCMHTTPSender posts messages to {endpoint}/v1/projects/{project}/messages:send.
// A fresh access token is requested from tokens for every message.
func NewFCMHTTPSender(client HTTPClient, endpoint string, cred *googleauth.Credentials, tokens googleauth.TokenProvider, logger *zap.Logger) Sender {
	return &fcmHTTPSender{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		cred:     cred,
		tokens:   tokens,
		logger:   logger.Named("fcm_http_sender"),
	}
}

func (s *fcmHTTPSender) sendURL() string {
	return fmt.Sprintf("%s/v1/projects/%s/messages:send", s.endpoint, s.cred.ProjectID)
}

func (s *fcmHTTPSender) Send(ctx context.Context, pushToken string, payload *models.NotificationPayload) (*models.DeliveryReceipt, error) {
	accessToken, err := googleauth.GetAccessToken(ctx, s.tokens, s.cred)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain access token: %w", err)
	}

	body, err := json.Marshal(newFCMRequest(pushToken, payload))
	if err != nil {
		return nil, fmt.Errorf("failed to encode fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken.Value)

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues(driverHTTP).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(driverHTTP, "error").Inc()
		s.logger.Error("FCM request failed", zap.Error(err))
		return nil, fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	// bodies past maxGatewayAnswer are cut; FCM answers are far smaller
	answer, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayAnswer+1))
	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(driverHTTP, "error").Inc()
		return nil, fmt.Errorf("failed to read fcm response: %w", err)
	}
	if len(answer) > maxGatewayAnswer {
		answer = answer[:maxGatewayAnswer]
		s.logger.Warn("FCM response truncated",
			zap.Int("status_code", resp.StatusCode),
			zap.Int("kept_bytes", maxGatewayAnswer),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.GatewayRequestsTotal.WithLabelValues(driverHTTP, "rejected").Inc()
		s.logger.Warn("FCM rejected message",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("response", answer),
		)
		return nil, &models.GatewayError{StatusCode: resp.StatusCode, Body: answer}
	}

	metrics.GatewayRequestsTotal.WithLabelValues(driverHTTP, "ok").Inc()
	s.logger.Debug("FCM accepted message", zap.ByteString("response", answer))
	return &models.DeliveryReceipt{StatusCode: resp.StatusCode, Body: answer}, nil
}
