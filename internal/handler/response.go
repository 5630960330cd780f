package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JJulme/manito/internal/models"
)

// ResponseStyle selects how an outcome is rendered to the webhook caller.
type ResponseStyle string

const (
	StyleJSON  ResponseStyle = "json"
	StylePlain ResponseStyle = "plain"
)

const (
	contentTypeJSON  = "application/json; charset=utf-8"
	contentTypePlain = "text/plain; charset=utf-8"
)

// BoundaryResponse is the HTTP answer for one handled event.
type BoundaryResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

// Render converts an outcome into a response in the given style.
//
// JSON: delivered → 200 with the gateway body, suppressed → 200 {"message"}, failed → 400 {"error"}.
// Plain: sent / no notification with 200, failed with 500.
func Render(style ResponseStyle, o models.DeliveryOutcome) BoundaryResponse {
	if style == StylePlain {
		return renderPlain(o)
	}
	return renderJSON(o)
}

func renderJSON(o models.DeliveryOutcome) BoundaryResponse {
	switch o.Status {
	case models.OutcomeDelivered:
		body := []byte(`{"message":"sent"}`)
		if o.Receipt != nil && len(o.Receipt.Body) > 0 {
			body = o.Receipt.Body
		}
		return BoundaryResponse{Status: http.StatusOK, ContentType: contentTypeJSON, Body: body}
	case models.OutcomeSuppressed:
		return jsonResponse(http.StatusOK, map[string]string{"message": "no notification sent"})
	}
	msg := "unknown error"
	if o.Err != nil {
		msg = o.Err.Error()
	}
	return jsonResponse(http.StatusBadRequest, map[string]string{"error": msg})
}

func renderPlain(o models.DeliveryOutcome) BoundaryResponse {
	switch o.Status {
	case models.OutcomeDelivered:
		return BoundaryResponse{Status: http.StatusOK, ContentType: contentTypePlain, Body: []byte("sent")}
	case models.OutcomeSuppressed:
		return BoundaryResponse{Status: http.StatusOK, ContentType: contentTypePlain, Body: []byte("no notification")}
	}
	return BoundaryResponse{Status: http.StatusInternalServerError, ContentType: contentTypePlain, Body: []byte("failed")}
}

func jsonResponse(status int, v map[string]string) BoundaryResponse {
	body, err := json.Marshal(v)
	if err != nil {
		body = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return BoundaryResponse{Status: status, ContentType: contentTypeJSON, Body: body}
}
