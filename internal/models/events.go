package models

import (
	"fmt"
	"strings"
)

// EventKind identifies which database change produced an event.
type EventKind int

const (
	EventKindUnknown EventKind = iota
	EventKindCommentCreated
	EventKindFriendRequestCreated
	EventKindMissionProposed
	EventKindMissionStatusChanged
)

func (k EventKind) String() string {
	switch k {
	case EventKindCommentCreated:
		return "comment_created"
	case EventKindFriendRequestCreated:
		return "friend_request_created"
	case EventKindMissionProposed:
		return "mission_proposed"
	case EventKindMissionStatusChanged:
		return "mission_status_changed"
	default:
		return "unknown"
	}
}

// Tables and operations emitted by the database webhooks.
const (
	TableComments       = "comments"
	TableFriendRequests = "friend_requests"
	TableMissionPropose = "mission_propose"
	TableMissions       = "missions"

	OperationInsert = "INSERT"
	OperationUpdate = "UPDATE"
)

// KindFor maps a (table, operation) pair to an EventKind.
func KindFor(table, operation string) (EventKind, error) {
	op := strings.ToUpper(operation)
	switch {
	case table == TableComments && op == OperationInsert:
		return EventKindCommentCreated, nil
	case table == TableFriendRequests && op == OperationInsert:
		return EventKindFriendRequestCreated, nil
	case table == TableMissionPropose && op == OperationInsert:
		return EventKindMissionProposed, nil
	case table == TableMissions && op == OperationUpdate:
		return EventKindMissionStatusChanged, nil
	}
	return EventKindUnknown, fmt.Errorf("%w: %s on table %q", ErrUnsupportedEvent, operation, table)
}

// WebhookPayload is the envelope posted by the database webhook (and published to the queue).
type WebhookPayload struct {
	Type      string         `json:"type"`
	Table     string         `json:"table"`
	Schema    string         `json:"schema"`
	Record    map[string]any `json:"record"`
	OldRecord map[string]any `json:"old_record,omitempty"`
}

// ChangeEvent is a single inbound change. It is never modified after construction.
type ChangeEvent struct {
	Kind   EventKind
	Record map[string]any
}

// ToEvent converts the webhook envelope into a ChangeEvent.
func (p WebhookPayload) ToEvent() (ChangeEvent, error) {
	kind, err := KindFor(p.Table, p.Type)
	if err != nil {
		return ChangeEvent{}, err
	}
	if p.Record == nil {
		return ChangeEvent{}, fmt.Errorf("%w: record is missing", ErrInvalidEvent)
	}
	return ChangeEvent{Kind: kind, Record: p.Record}, nil
}

// CommentRecord is a row inserted into comments.
type CommentRecord struct {
	MissionID string
	UserID    string
	Comment   string
}

// FriendRequestRecord is a row inserted into friend_requests.
type FriendRequestRecord struct {
	SenderID   string
	ReceiverID string
}

// MissionProposeRecord is a row inserted into mission_propose.
type MissionProposeRecord struct {
	MissionID string
	FriendID  string
}

// MissionRecord is the updated missions row. Description and Guess are nil when NULL.
type MissionRecord struct {
	ID          string
	CreatorID   string
	AssigneeID  string
	Status      MissionStatus
	Description *string
	Guess       *string
}

func (e ChangeEvent) CommentRecord() (CommentRecord, error) {
	var r CommentRecord
	var err error
	if r.MissionID, err = e.requiredString("mission_id"); err != nil {
		return r, err
	}
	if r.UserID, err = e.requiredString("user_id"); err != nil {
		return r, err
	}
	r.Comment, err = e.requiredString("comment")
	return r, err
}

func (e ChangeEvent) FriendRequestRecord() (FriendRequestRecord, error) {
	var r FriendRequestRecord
	var err error
	if r.SenderID, err = e.requiredString("sender_id"); err != nil {
		return r, err
	}
	r.ReceiverID, err = e.requiredString("receiver_id")
	return r, err
}

func (e ChangeEvent) MissionProposeRecord() (MissionProposeRecord, error) {
	var r MissionProposeRecord
	var err error
	if r.MissionID, err = e.requiredString("mission_id"); err != nil {
		return r, err
	}
	r.FriendID, err = e.requiredString("friend_id")
	return r, err
}

func (e ChangeEvent) MissionRecord() (MissionRecord, error) {
	var r MissionRecord
	var err error
	if r.ID, err = e.requiredString("id"); err != nil {
		return r, err
	}
	if r.CreatorID, err = e.requiredString("creator_id"); err != nil {
		return r, err
	}
	if r.AssigneeID, err = e.requiredString("manito_id"); err != nil {
		return r, err
	}
	status, err := e.requiredString("status")
	if err != nil {
		return r, err
	}
	r.Status = ParseMissionStatus(status)
	r.Description = e.optionalString("description")
	r.Guess = e.optionalString("guess")
	return r, nil
}

func (e ChangeEvent) requiredString(field string) (string, error) {
	v := e.optionalString(field)
	if v == nil {
		return "", fmt.Errorf("%w: %s.%s is required", ErrInvalidEvent, e.Kind, field)
	}
	return *v, nil
}

// optionalString returns nil for absent or null fields. Non-string scalars are formatted,
// since ids may arrive as numbers from some producers.
func (e ChangeEvent) optionalString(field string) *string {
	raw, ok := e.Record[field]
	if !ok || raw == nil {
		return nil
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = fmt.Sprintf("%.0f", v)
	default:
		s = fmt.Sprint(v)
	}
	return &s
}
