package googleauth

import (
	"context"

	"golang.org/x/oauth2"
)

// NewTokenSource adapts a TokenProvider to oauth2.TokenSource for Google client libraries.
func NewTokenSource(ctx context.Context, p TokenProvider, cred *Credentials) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: p, cred: cred}
}

type providerTokenSource struct {
	ctx      context.Context
	provider TokenProvider
	cred     *Credentials
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	token, err := GetAccessToken(s.ctx, s.provider, s.cred)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		Expiry:      token.ExpiresAt,
	}, nil
}
