package models

import "time"

// AccessToken is a short-lived bearer token for the push gateway.
type AccessToken struct {
	Value     string    `json:"value"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token is usable at now with at least skew left.
func (t AccessToken) Valid(now time.Time, skew time.Duration) bool {
	if t.Value == "" {
		return false
	}
	return now.Add(skew).Before(t.ExpiresAt)
}
