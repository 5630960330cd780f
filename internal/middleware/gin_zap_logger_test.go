package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newEngine(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinZapLogger(log))
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.POST("/events", func(c *gin.Context) { c.String(http.StatusBadRequest, "bad") })
	return r
}

func TestGinZapLogger_LogsWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newEngine(zap.New(core))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events?x=1", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "/events?x=1", fields["path"])
		assert.EqualValues(t, http.StatusBadRequest, fields["status"])
	}
}

func TestGinZapLogger_GeneratesRequestID(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	r := newEngine(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/events", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestGinZapLogger_SkipsHealth(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newEngine(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, logs.All())
	assert.Empty(t, w.Header().Get(RequestIDHeader))
}
