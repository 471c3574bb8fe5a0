package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// ProfileFromToken decodes the profile carried in a JWT bearer token without
// verifying its signature. It returns nil when token is not a JWT or names
// no subject.
func ProfileFromToken(token string) *Profile {
	if token == "" {
		return nil
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.Subject == "" {
		return nil
	}

	p := &Profile{Email: claims.Subject}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p
}
