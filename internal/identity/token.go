package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ppluzka/pricehistory/internal/domain"
)

// sessionClaims are the store-issued JWT claims we care about.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// ParseSessionClaims decodes the store-issued access token WITHOUT verifying
// its signature. Use it only to recover display attributes (subject, email,
// expiry) from a token already held in the cookie jar. Security decisions go
// through Client.GetUser, which validates the token against the store.
func ParseSessionClaims(accessToken string) (*domain.Session, error) {
	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	session := &domain.Session{
		AccessToken: accessToken,
		UserID:      claims.Subject,
		Email:       claims.Email,
		Verified:    claims.EmailVerified,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
