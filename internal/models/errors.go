package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEvent         = errors.New("invalid event")
	ErrUnsupportedEvent     = errors.New("unsupported event")
	ErrRecipientNotFound    = errors.New("recipient push token not found")
	ErrSenderNotFound       = errors.New("sender profile not found")
	ErrAmbiguousParticipant = errors.New("actor is not a participant of the mission")
	ErrMissionLookupFailed  = errors.New("mission lookup failed")
	ErrAuthExchangeFailed   = errors.New("access token exchange failed")
	ErrGatewayRejected      = errors.New("push gateway rejected the message")
	ErrMessageInvalid       = errors.New("push message refused before sending")
)

// GatewayError carries the gateway's non-2xx answer unmodified.
type GatewayError struct {
	StatusCode int
	Body       []byte
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("push gateway rejected the message (status %d): %s", e.StatusCode, e.Body)
}

func (e *GatewayError) Unwrap() error { return ErrGatewayRejected }

// AuthExchangeError is returned when the identity endpoint refuses the assertion.
type AuthExchangeError struct {
	StatusCode int
	Body       []byte
	Cause      error
}

func (e *AuthExchangeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("access token exchange failed: %v", e.Cause)
	}
	return fmt.Sprintf("access token exchange failed (status %d): %s", e.StatusCode, e.Body)
}

func (e *AuthExchangeError) Is(target error) bool { return target == ErrAuthExchangeFailed }

func (e *AuthExchangeError) Unwrap() error { return e.Cause }

// ErrorKind returns a stable label for err, used in logs and metrics.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidEvent):
		return "invalid_event"
	case errors.Is(err, ErrUnsupportedEvent):
		return "unsupported_event"
	case errors.Is(err, ErrRecipientNotFound):
		return "recipient_not_found"
	case errors.Is(err, ErrSenderNotFound):
		return "sender_not_found"
	case errors.Is(err, ErrAmbiguousParticipant):
		return "ambiguous_participant"
	case errors.Is(err, ErrMissionLookupFailed):
		return "mission_lookup_failed"
	case errors.Is(err, ErrAuthExchangeFailed):
		return "auth_exchange_failed"
	case errors.Is(err, ErrGatewayRejected):
		return "gateway_rejected"
	case errors.Is(err, ErrMessageInvalid):
		return "message_invalid"
	default:
		return "internal"
	}
}
