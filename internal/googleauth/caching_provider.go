package googleauth

import (
	"context"
	"sync"
	"time"

	"github.com/JJulme/manito/internal/metrics"
	"github.com/JJulme/manito/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenStore keeps access tokens keyed by credential identity.
type TokenStore interface {
	Get(ctx context.Context, key string) (token models.AccessToken, ok bool, err error)
	Set(ctx context.Context, key string, token models.AccessToken) error
}

// CachingProvider reuses tokens until they are within skew of expiry.
// At most one exchange per credential is in flight at a time.
type CachingProvider struct {
	next   TokenProvider
	store  TokenStore
	skew   time.Duration
	group  singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

func NewCachingProvider(next TokenProvider, store TokenStore, skew time.Duration, logger *zap.Logger) *CachingProvider {
	return &CachingProvider{
		next:   next,
		store:  store,
		skew:   skew,
		logger: logger.Named("caching_token_provider"),
		now:    time.Now,
	}
}

var _ TokenProvider = (*CachingProvider)(nil)

func (c *CachingProvider) RequestToken(ctx context.Context, cred *Credentials) *TokenFuture {
	if cred == nil {
		return c.next.RequestToken(ctx, cred)
	}
	if token, ok := c.lookup(ctx, cred.ClientEmail); ok {
		return ResolvedFuture(token, nil)
	}

	f := newTokenFuture()
	go func() {
		token, err := c.refresh(ctx, cred)
		f.complete(token, err)
	}()
	return f
}

func (c *CachingProvider) lookup(ctx context.Context, key string) (models.AccessToken, bool) {
	token, ok, err := c.store.Get(ctx, key)
	if err != nil {
		metrics.TokenCacheLookupsTotal.WithLabelValues("error").Inc()
		c.logger.Warn("Token cache lookup failed", zap.String("key", key), zap.Error(err))
		return models.AccessToken{}, false
	}
	if !ok || !token.Valid(c.now(), c.skew) {
		metrics.TokenCacheLookupsTotal.WithLabelValues("miss").Inc()
		return models.AccessToken{}, false
	}
	metrics.TokenCacheLookupsTotal.WithLabelValues("hit").Inc()
	return token, true
}

func (c *CachingProvider) refresh(ctx context.Context, cred *Credentials) (models.AccessToken, error) {
	key := cred.ClientEmail
	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// another flight may have stored a token while we waited
		if token, ok := c.lookup(ctx, key); ok {
			return token, nil
		}
		// detached so one caller's cancellation does not fail the others sharing this flight
		token, err := GetAccessToken(context.WithoutCancel(ctx), c.next, cred)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, key, token); err != nil {
			c.logger.Warn("Failed to store access token", zap.String("key", key), zap.Error(err))
		}
		return token, nil
	})
	if err != nil {
		return models.AccessToken{}, err
	}
	c.logger.Debug("Access token refreshed", zap.String("key", key), zap.Bool("shared", shared))
	return v.(models.AccessToken), nil
}

// MemoryTokenStore is a process-local TokenStore.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]models.AccessToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]models.AccessToken)}
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) (models.AccessToken, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[key]
	return token, ok, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, key string, token models.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}
