// Package session holds the authenticated session: the bearer token and the
// profile derived from it, persisted through a small storage port.
package session

import "time"

// TokenKey is the durable-storage key holding the bearer token.
const TokenKey = "token"

// Profile identifies the signed-in user.
type Profile struct {
	Email     string
	ExpiresAt time.Time // zero when the token carries no expiry
}

// Expired reports whether the token's own expiry has passed. The server is
// still the authority; this only drives hints in the UI.
func (p *Profile) Expired(now time.Time) bool {
	return p != nil && !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

// Session is a point-in-time copy of the session state.
type Session struct {
	Token string
	User  *Profile
}
