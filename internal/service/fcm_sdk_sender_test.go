package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/JJulme/manito/internal/googleauth"
	"github.com/JJulme/manito/internal/models"
	"github.com/JJulme/manito/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// redirectTransport sends every request to target, keeping path and body.
type redirectTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t redirectTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	out := r.Clone(r.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = t.target.Host
	return t.base.RoundTrip(out)
}

func newSDKSenderFor(t *testing.T, srv *httptest.Server) Sender {
	t.Helper()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	client := &http.Client{Transport: redirectTransport{target: target, base: srv.Client().Transport}}

	s, err := NewFCMSDKSender(context.Background(), &googleauth.Credentials{ProjectID: "manito"}, fixedTokens{}, zap.NewNop(),
		option.WithHTTPClient(client))
	require.NoError(t, err)
	return s
}

func TestFCMSDKSender_LocalizedPayload(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"projects/manito/messages/0:7"}`))
	}))
	defer srv.Close()

	s := newSDKSenderFor(t, srv)
	for _, variant := range []notifications.Variant{notifications.VariantFriendRequest, notifications.VariantMissionPropose} {
		payload := notifications.Build(variant, notifications.VariantData{SenderID: "u1", SenderName: "민수"})

		receipt, err := s.Send(context.Background(), "device-token", payload)
		require.NoError(t, err, variant.Type())
		assert.Equal(t, http.StatusOK, receipt.StatusCode)
		assert.JSONEq(t, `{"name":"projects/manito/messages/0:7"}`, string(receipt.Body))

		assert.Equal(t, "/v1/projects/manito/messages:send", gotPath)
		msg := gotBody["message"].(map[string]any)
		assert.Equal(t, "device-token", msg["token"])
		android := msg["android"].(map[string]any)["notification"].(map[string]any)
		assert.Equal(t, "ic_notification", android["icon"])
		assert.NotContains(t, android, "image")
	}
}

func TestFCMSDKSender_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"The registration token is not a valid FCM registration token","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	_, err := newSDKSenderFor(t, srv).Send(context.Background(), "bad",
		notifications.Build(notifications.VariantMissionPropose, notifications.VariantData{SenderID: "u1"}))

	assert.ErrorIs(t, err, models.ErrGatewayRejected)
	var gwErr *models.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Contains(t, string(gwErr.Body), "not a valid FCM registration token")
}

func TestFCMSDKSender_InvalidMessageSkipsGateway(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	// no token, topic or condition
	_, err := newSDKSenderFor(t, srv).Send(context.Background(), "",
		notifications.Build(notifications.VariantComment, notifications.VariantData{SenderName: "a", Comment: "b"}))

	assert.ErrorIs(t, err, models.ErrMessageInvalid)
	assert.NotErrorIs(t, err, models.ErrGatewayRejected)
	assert.Equal(t, "message_invalid", models.ErrorKind(err))
	assert.Zero(t, calls.Load())
}

func TestImageURL(t *testing.T) {
	assert.Empty(t, imageURL("ic_notification_large"))
	assert.Empty(t, imageURL(""))
	assert.Equal(t, "https://cdn.example.com/a.png", imageURL("https://cdn.example.com/a.png"))
}
