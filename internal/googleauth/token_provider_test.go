package googleauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JJulme/manito/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCredentials(t *testing.T) (*Credentials, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	return &Credentials{
		Type:         "service_account",
		ProjectID:    "manito-test",
		PrivateKeyID: "key-1",
		PrivateKey:   string(pemKey),
		ClientEmail:  "relay@manito-test.iam.gserviceaccount.com",
		TokenURI:     DefaultTokenURI,
	}, key
}

func TestJWTProvider_Exchange(t *testing.T) {
	cred, key := testCredentials(t)

	var gotClaims jwt.MapClaims
	var gotKid interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, grantTypeJWTBearer, r.PostForm.Get("grant_type"))

		parsed, err := jwt.Parse(r.PostForm.Get("assertion"), func(tok *jwt.Token) (interface{}, error) {
			gotKid = tok.Header["kid"]
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotClaims = parsed.Claims.(jwt.MapClaims)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.token","expires_in":3599,"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	p := NewJWTProvider(srv.Client(), srv.URL, zap.NewNop())
	start := time.Now()

	token, err := GetAccessToken(context.Background(), p, cred)
	require.NoError(t, err)

	assert.Equal(t, "ya29.token", token.Value)
	assert.Equal(t, []string{ScopeFirebaseMessaging}, token.Scopes)
	assert.WithinDuration(t, start.Add(3599*time.Second), token.ExpiresAt, 5*time.Second)

	assert.Equal(t, cred.ClientEmail, gotClaims["iss"])
	assert.Equal(t, ScopeFirebaseMessaging, gotClaims["scope"])
	assert.Equal(t, srv.URL, gotClaims["aud"])
	assert.Equal(t, "key-1", gotKid)
}

func TestJWTProvider_Rejected(t *testing.T) {
	cred, _ := testCredentials(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid JWT Signature."}`))
	}))
	defer srv.Close()

	p := NewJWTProvider(srv.Client(), srv.URL, zap.NewNop())
	_, err := GetAccessToken(context.Background(), p, cred)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrAuthExchangeFailed)
	var exErr *models.AuthExchangeError
	require.True(t, errors.As(err, &exErr))
	assert.Equal(t, http.StatusBadRequest, exErr.StatusCode)
	assert.Contains(t, string(exErr.Body), "invalid_grant")
}

func TestJWTProvider_Unreachable(t *testing.T) {
	cred, _ := testCredentials(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewJWTProvider(&http.Client{Timeout: time.Second}, url, zap.NewNop())
	_, err := GetAccessToken(context.Background(), p, cred)
	assert.ErrorIs(t, err, models.ErrAuthExchangeFailed)
}

func TestJWTProvider_BadKey(t *testing.T) {
	cred, _ := testCredentials(t)
	cred.PrivateKey = "not a pem"

	p := NewJWTProvider(http.DefaultClient, "http://127.0.0.1:0", zap.NewNop())
	_, err := GetAccessToken(context.Background(), p, cred)
	assert.ErrorIs(t, err, models.ErrAuthExchangeFailed)
}

func TestTokenFuture_AwaitHonoursContext(t *testing.T) {
	f := newTokenFuture()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	f.complete(models.AccessToken{Value: "late"}, nil)
	token, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", token.Value)
}

func TestParseCredentials(t *testing.T) {
	cred, err := ParseCredentials([]byte(`{"type":"service_account","project_id":"p","private_key":"k","client_email":"e@p"}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenURI, cred.TokenURI)

	_, err = ParseCredentials([]byte(`{"type":"service_account","project_id":"p"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_email")
	assert.Contains(t, err.Error(), "private_key")

	_, err = ParseCredentials([]byte(`{"type":"authorized_user","project_id":"p","private_key":"k","client_email":"e"}`))
	assert.Error(t, err)

	_, err = ParseCredentials([]byte(`not json`))
	assert.Error(t, err)
}

func TestTokenSource(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	p := staticProvider{token: models.AccessToken{Value: "abc", ExpiresAt: expiry}}

	ts := NewTokenSource(context.Background(), p, &Credentials{ClientEmail: "e"})
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, expiry, tok.Expiry)

	failing := NewTokenSource(context.Background(), staticProvider{err: models.ErrAuthExchangeFailed}, nil)
	_, err = failing.Token()
	assert.ErrorIs(t, err, models.ErrAuthExchangeFailed)
}

type staticProvider struct {
	token models.AccessToken
	err   error
}

func (p staticProvider) RequestToken(context.Context, *Credentials) *TokenFuture {
	return ResolvedFuture(p.token, p.err)
}
