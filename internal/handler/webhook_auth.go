package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// WebhookVerifier checks the HS256 bearer token the database attaches to webhook calls.
type WebhookVerifier struct {
	secret []byte
	logger *zap.Logger
}

func NewWebhookVerifier(secret string, logger *zap.Logger) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, errors.New("webhook JWT secret cannot be empty")
	}
	return &WebhookVerifier{
		secret: []byte(secret),
		logger: logger.Named("WebhookVerifier"),
	}, nil
}

func (v *WebhookVerifier) Verify(tokenString string) error {
	_, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err
}

// Middleware rejects requests without a valid "Authorization: Bearer" token.
func (v *WebhookVerifier) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			v.logger.Warn("Missing or malformed Authorization header", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if err := v.Verify(parts[1]); err != nil {
			v.logger.Warn("Webhook token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}
