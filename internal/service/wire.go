package service

import (
	"github.com/JJulme/manito/internal/models"

	"github.com/sideshow/apns2/payload"
)

// FCM HTTP v1 request body.
type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification *fcmNotification  `json:"notification,omitempty"`
	Data         map[string]string `json:"data"`
	Android      *fcmAndroid       `json:"android,omitempty"`
	APNS         *fcmAPNS          `json:"apns,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type fcmAndroid struct {
	Notification *models.AndroidOverride `json:"notification"`
}

type fcmAPNS struct {
	Payload *payload.Payload `json:"payload"`
}

func newFCMRequest(pushToken string, p *models.NotificationPayload) fcmRequest {
	msg := fcmMessage{
		Token: pushToken,
		Data:  p.Data,
	}
	if msg.Data == nil {
		msg.Data = map[string]string{}
	}
	if p.Title != "" || p.Body != "" {
		msg.Notification = &fcmNotification{Title: p.Title, Body: p.Body}
	}
	if p.Android != nil {
		msg.Android = &fcmAndroid{Notification: p.Android}
	}
	if p.APNS != nil {
		msg.APNS = &fcmAPNS{Payload: apsAlert(p.APNS)}
	}
	return fcmRequest{Message: msg}
}

// apsAlert renders {"aps":{"alert":{"title-loc-key","loc-key","loc-args"}}}.
func apsAlert(o *models.APNSOverride) *payload.Payload {
	pl := payload.NewPayload()
	if o.TitleLocKey != "" {
		pl.AlertTitleLocKey(o.TitleLocKey)
	}
	if o.LocKey != "" {
		pl.AlertLocKey(o.LocKey)
	}
	if len(o.LocArgs) > 0 {
		pl.AlertLocArgs(o.LocArgs)
	}
	return pl
}
