package domain

import "time"

// User is the account subject as reported by the credential store.
type User struct {
	ID       string
	Email    string
	Verified bool
}

// Session is the explicit session object returned by the credential store on
// sign-in. The HTTP layer persists it into the cookie jar; nothing in this
// service mutates transport state implicitly.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	Email        string
	Verified     bool
	ExpiresAt    time.Time
}

// Expired reports whether the session's access token has passed its expiry.
// A zero ExpiresAt means the store did not report one and the token is
// treated as live until the store says otherwise.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
