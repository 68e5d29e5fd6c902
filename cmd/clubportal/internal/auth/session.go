package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "clubportal.session"

	// SessionDuration is the default session lifetime.
	SessionDuration = 12 * time.Hour
)

// Session is the typed view of the caller's session, built once per request
// or connection by the Resolver.
type Session struct {
	// Subject is the opaque identity provider subject. Empty when anonymous.
	Subject string
	Role    Role
	// ClubID is the club affiliation for leaders, if any.
	ClubID string
	// Token is the raw bearer credential backing the session.
	Token     string
	ExpiresAt time.Time
}

// AnonymousSession returns the unauthenticated session.
func AnonymousSession() Session {
	return Session{Role: RoleAnonymous}
}

// Authenticated reports whether the session belongs to a signed-in subject.
func (s Session) Authenticated() bool {
	return s.Subject != "" && s.Role != RoleAnonymous
}

// Credential returns the bearer credential, or "" when there is none.
func (s Session) Credential() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Token
}

// Expired reports whether the session expiry has passed at now.
// A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HashToken returns the SHA256 hex digest of a session token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
