package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/JJulme/manito/internal/googleauth"
	"github.com/JJulme/manito/internal/metrics"
	"github.com/JJulme/manito/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	fcm "firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const driverSDK = "sdk"

type fcmSDKSender struct {
	client *fcm.Client
	logger *zap.Logger
}

var _ Sender = (*fcmSDKSender)(nil)

// NewFCMSDKSender sends through the Firebase Admin SDK. Access tokens come from tokens
// through an oauth2.TokenSource, so token caching behaves the same as with the HTTP driver.
// opts are appended to the client options, after the token source.
func NewFCMSDKSender(ctx context.Context, cred *googleauth.Credentials, tokens googleauth.TokenProvider, logger *zap.Logger, opts ...option.ClientOption) (Sender, error) {
	ts := googleauth.NewTokenSource(context.WithoutCancel(ctx), tokens, cred)
	clientOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cred.ProjectID}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app for project %s: %w", cred.ProjectID, err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get fcm messaging client: %w", err)
	}

	logger.Info("FCM SDK sender initialized", zap.String("project_id", cred.ProjectID))
	return &fcmSDKSender{
		client: client,
		logger: logger.Named("fcm_sdk_sender"),
	}, nil
}

func (s *fcmSDKSender) Send(ctx context.Context, pushToken string, payload *models.NotificationPayload) (*models.DeliveryReceipt, error) {
	start := time.Now()
	name, err := s.client.Send(ctx, toSDKMessage(pushToken, payload))
	metrics.GatewayRequestDuration.WithLabelValues(driverSDK).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, s.classify(err)
	}

	metrics.GatewayRequestsTotal.WithLabelValues(driverSDK, "ok").Inc()
	body, _ := json.Marshal(map[string]string{"name": name})
	return &models.DeliveryReceipt{StatusCode: http.StatusOK, Body: body}, nil
}

// classify separates gateway answers from failures that happened before or
// instead of a gateway response.
func (s *fcmSDKSender) classify(err error) error {
	if errors.Is(err, models.ErrAuthExchangeFailed) {
		metrics.GatewayRequestsTotal.WithLabelValues(driverSDK, "error").Inc()
		return fmt.Errorf("failed to obtain access token: %w", err)
	}
	if resp := errorutils.HTTPResponse(err); resp != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(driverSDK, "rejected").Inc()
		s.logger.Warn("FCM rejected message", zap.Int("status_code", resp.StatusCode), zap.Error(err))
		return &models.GatewayError{StatusCode: resp.StatusCode, Body: []byte(err.Error())}
	}
	metrics.GatewayRequestsTotal.WithLabelValues(driverSDK, "error").Inc()
	if errorutils.IsUnavailable(err) || errorutils.IsDeadlineExceeded(err) || errorutils.IsUnknown(err) {
		s.logger.Error("FCM request failed", zap.Error(err))
		return fmt.Errorf("fcm request failed: %w", err)
	}
	// the SDK validates the message locally before any request is made
	s.logger.Warn("FCM message refused before sending", zap.Error(err))
	return fmt.Errorf("%w: %v", models.ErrMessageInvalid, err)
}

func toSDKMessage(pushToken string, p *models.NotificationPayload) *fcm.Message {
	msg := &fcm.Message{
		Token: pushToken,
		Data:  p.Data,
	}
	if p.Title != "" || p.Body != "" {
		msg.Notification = &fcm.Notification{Title: p.Title, Body: p.Body}
	}
	if a := p.Android; a != nil {
		msg.Android = &fcm.AndroidConfig{
			Notification: &fcm.AndroidNotification{
				TitleLocKey: a.TitleLocKey,
				BodyLocKey:  a.BodyLocKey,
				BodyLocArgs: a.BodyLocArgs,
				Icon:        a.Icon,
				ImageURL:    imageURL(a.Image),
			},
		}
	}
	if o := p.APNS; o != nil {
		msg.APNS = &fcm.APNSConfig{
			Payload: &fcm.APNSPayload{
				Aps: &fcm.Aps{
					Alert: &fcm.ApsAlert{
						TitleLocKey: o.TitleLocKey,
						LocKey:      o.LocKey,
						LocArgs:     o.LocArgs,
					},
				},
			},
		}
	}
	return msg
}

// imageURL drops drawable names, which the SDK refuses as image URLs.
func imageURL(image string) string {
	u, err := url.ParseRequestURI(image)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return image
}
