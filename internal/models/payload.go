package models

import "encoding/json"

// NotificationPayload is the platform-aware notification built for a single event.
// Either Title/Body (plain) or Android/APNS (localized) is populated, never both.
type NotificationPayload struct {
	Title   string            `json:"title,omitempty"`
	Body    string            `json:"body,omitempty"`
	Data    map[string]string `json:"data"`
	Android *AndroidOverride  `json:"android,omitempty"`
	APNS    *APNSOverride     `json:"apns,omitempty"`
}

// Localized reports whether the payload carries per-platform localization keys.
func (p *NotificationPayload) Localized() bool {
	return p.Android != nil || p.APNS != nil
}

// AndroidOverride is rendered into message.android.notification.
type AndroidOverride struct {
	TitleLocKey string   `json:"title_loc_key,omitempty"`
	BodyLocKey  string   `json:"body_loc_key,omitempty"`
	BodyLocArgs []string `json:"body_loc_args,omitempty"`
	Icon        string   `json:"icon"`
	Image       string   `json:"image,omitempty"`
}

// APNSOverride is rendered into message.apns.payload.aps.alert.
type APNSOverride struct {
	TitleLocKey string   `json:"title-loc-key,omitempty"`
	LocKey      string   `json:"loc-key,omitempty"`
	LocArgs     []string `json:"loc-args,omitempty"`
}

// Recipient is a user together with the push token the gateway targets.
type Recipient struct {
	UserID    string
	PushToken string
}

// DeliveryReceipt is what the gateway answered for an accepted message.
type DeliveryReceipt struct {
	StatusCode int
	Body       json.RawMessage
}
