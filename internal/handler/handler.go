package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/JJulme/manito/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventHandler is implemented by *service.EventRouter.
type EventHandler interface {
	Handle(ctx context.Context, event models.ChangeEvent) models.DeliveryOutcome
}

// RouteStyles holds the response style of each webhook route.
type RouteStyles struct {
	Comment        ResponseStyle
	FriendRequest  ResponseStyle
	MissionPropose ResponseStyle
	MissionsUpdate ResponseStyle
	Events         ResponseStyle
}

// DefaultRouteStyles answers in JSON everywhere except the missions update route.
func DefaultRouteStyles() RouteStyles {
	return RouteStyles{
		Comment:        StyleJSON,
		FriendRequest:  StyleJSON,
		MissionPropose: StyleJSON,
		MissionsUpdate: StylePlain,
		Events:         StyleJSON,
	}
}

type NotificationHandler struct {
	events   EventHandler
	styles   RouteStyles
	verifier *WebhookVerifier
	logger   *zap.Logger
}

// NewNotificationHandler creates the webhook handler. verifier may be nil to accept unsigned calls.
func NewNotificationHandler(events EventHandler, styles RouteStyles, verifier *WebhookVerifier, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		events:   events,
		styles:   styles,
		verifier: verifier,
		logger:   logger.Named("NotificationHandler"),
	}
}

func (h *NotificationHandler) RegisterRoutes(r gin.IRouter) {
	webhooks := r.Group("")
	if h.verifier != nil {
		webhooks.Use(h.verifier.Middleware())
	}

	webhooks.POST("/comment-notification", h.handleKind(models.EventKindCommentCreated, h.styles.Comment))
	webhooks.POST("/friend-request-notification", h.handleKind(models.EventKindFriendRequestCreated, h.styles.FriendRequest))
	webhooks.POST("/mission-propose-notification", h.handleKind(models.EventKindMissionProposed, h.styles.MissionPropose))
	webhooks.POST("/missions-update-notification", h.handleKind(models.EventKindMissionStatusChanged, h.styles.MissionsUpdate))
	webhooks.POST("/events", h.handleKind(models.EventKindUnknown, h.styles.Events))
}

// handleKind accepts only events of kind. EventKindUnknown accepts any supported kind.
func (h *NotificationHandler) handleKind(kind models.EventKind, style ResponseStyle) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome := h.process(c, kind)
		resp := Render(style, outcome)
		c.Data(resp.Status, resp.ContentType, resp.Body)
	}
}

func (h *NotificationHandler) process(c *gin.Context, expected models.EventKind) models.DeliveryOutcome {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("Invalid webhook body", zap.String("path", c.FullPath()), zap.Error(err))
		return models.Failed(expected, fmt.Errorf("%w: %v", models.ErrInvalidEvent, err))
	}

	event, err := payload.ToEvent()
	if err != nil {
		h.logger.Warn("Webhook payload rejected",
			zap.String("table", payload.Table),
			zap.String("type", payload.Type),
			zap.Error(err),
		)
		return models.Failed(expected, err)
	}

	if expected != models.EventKindUnknown && event.Kind != expected {
		h.logger.Warn("Event kind does not match route",
			zap.String("path", c.FullPath()),
			zap.String("expected", expected.String()),
			zap.String("got", event.Kind.String()),
		)
		return models.Failed(event.Kind, fmt.Errorf("%w: route accepts %s, got %s", models.ErrUnsupportedEvent, expected, event.Kind))
	}

	return h.events.Handle(c.Request.Context(), event)
}

// Health answers liveness probes.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
