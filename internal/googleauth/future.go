package googleauth

import (
	"context"

	"github.com/JJulme/manito/internal/models"
)

// TokenFuture is the pending result of an access token request.
// It is completed exactly once; Await may be called any number of times.
type TokenFuture struct {
	done  chan struct{}
	token models.AccessToken
	err   error
}

func newTokenFuture() *TokenFuture {
	return &TokenFuture{done: make(chan struct{})}
}

// ResolvedFuture returns a future that is already complete.
func ResolvedFuture(token models.AccessToken, err error) *TokenFuture {
	f := newTokenFuture()
	f.complete(token, err)
	return f
}

func (f *TokenFuture) complete(token models.AccessToken, err error) {
	f.token = token
	f.err = err
	close(f.done)
}

// Await blocks until the token is ready or ctx ends.
func (f *TokenFuture) Await(ctx context.Context) (models.AccessToken, error) {
	select {
	case <-f.done:
		return f.token, f.err
	case <-ctx.Done():
		return models.AccessToken{}, ctx.Err()
	}
}
