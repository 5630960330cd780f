package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JJulme/manito/internal/metrics"
	"github.com/JJulme/manito/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	grantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime  = time.Hour
	maxErrorBody       = 64 << 10
)

// TokenProvider hands out gateway access tokens for a service account.
type TokenProvider interface {
	// RequestToken starts obtaining a token and returns immediately.
	RequestToken(ctx context.Context, cred *Credentials) *TokenFuture
}

// GetAccessToken requests a token and waits for it.
func GetAccessToken(ctx context.Context, p TokenProvider, cred *Credentials) (models.AccessToken, error) {
	return p.RequestToken(ctx, cred).Await(ctx)
}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// JWTProvider exchanges a signed service-account assertion for a bearer token.
// Every call performs a fresh exchange.
type JWTProvider struct {
	client   HTTPClient
	tokenURI string // overrides the credential's token_uri when set
	logger   *zap.Logger
	now      func() time.Time
}

func NewJWTProvider(client HTTPClient, tokenURI string, logger *zap.Logger) *JWTProvider {
	return &JWTProvider{
		client:   client,
		tokenURI: tokenURI,
		logger:   logger.Named("jwt_token_provider"),
		now:      time.Now,
	}
}

var _ TokenProvider = (*JWTProvider)(nil)

func (p *JWTProvider) RequestToken(ctx context.Context, cred *Credentials) *TokenFuture {
	f := newTokenFuture()
	go func() {
		token, err := p.exchange(ctx, cred)
		if err != nil {
			metrics.TokenExchangesTotal.WithLabelValues("error").Inc()
		} else {
			metrics.TokenExchangesTotal.WithLabelValues("ok").Inc()
		}
		f.complete(token, err)
	}()
	return f
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (p *JWTProvider) exchange(ctx context.Context, cred *Credentials) (models.AccessToken, error) {
	if cred == nil {
		return models.AccessToken{}, &models.AuthExchangeError{Cause: errors.New("no credentials configured")}
	}
	tokenURI := p.tokenURI
	if tokenURI == "" {
		tokenURI = cred.TokenURI
	}
	log := p.logger.With(zap.String("client_email", cred.ClientEmail), zap.String("token_uri", tokenURI))

	now := p.now()
	assertion, err := SignAssertion(cred, tokenURI, now)
	if err != nil {
		log.Error("Failed to sign assertion", zap.Error(err))
		return models.AccessToken{}, &models.AuthExchangeError{Cause: err}
	}

	form := url.Values{}
	form.Set("grant_type", grantTypeJWTBearer)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return models.AccessToken{}, &models.AuthExchangeError{Cause: fmt.Errorf("failed to build token request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		log.Error("Token endpoint unreachable", zap.Error(err), zap.Duration("duration", duration))
		return models.AccessToken{}, &models.AuthExchangeError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return models.AccessToken{}, &models.AuthExchangeError{StatusCode: resp.StatusCode, Cause: fmt.Errorf("failed to read token response: %w", err)}
	}
	log.Debug("Token endpoint responded", zap.Int("status_code", resp.StatusCode), zap.Duration("duration", duration))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error("Token endpoint rejected assertion", zap.Int("status_code", resp.StatusCode), zap.ByteString("body", body))
		return models.AccessToken{}, &models.AuthExchangeError{StatusCode: resp.StatusCode, Body: body}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return models.AccessToken{}, &models.AuthExchangeError{StatusCode: resp.StatusCode, Cause: fmt.Errorf("failed to decode token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return models.AccessToken{}, &models.AuthExchangeError{StatusCode: resp.StatusCode, Cause: errors.New("token response has no access_token")}
	}

	expiresIn := time.Duration(tr.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = assertionLifetime
	}
	log.Info("Access token obtained", zap.Duration("expires_in", expiresIn))
	return models.AccessToken{
		Value:     tr.AccessToken,
		Scopes:    []string{ScopeFirebaseMessaging},
		ExpiresAt: now.Add(expiresIn),
	}, nil
}

// SignAssertion builds the RS256 JWT presented to the token endpoint.
func SignAssertion(cred *Credentials, audience string, now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cred.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	claims := jwt.MapClaims{
		"iss":   cred.ClientEmail,
		"scope": ScopeFirebaseMessaging,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if cred.PrivateKeyID != "" {
		token.Header["kid"] = cred.PrivateKeyID
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}
