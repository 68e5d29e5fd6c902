package auth

import "net/http"

// Keys read from a session medium.
const (
	KeyRole      = "role"
	KeyClubID    = "club_id"
	KeySubject   = "sub"
	KeyToken     = "token"
	KeyExpiresAt = "expires_at"
)

// Medium is a read-only key/value view of persisted session state.
type Medium interface {
	Get(key string) (string, bool)
}

// MapMedium is an in-memory Medium.
type MapMedium map[string]string

// Get implements Medium.
func (m MapMedium) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// CookieMedium exposes the session cookie of a request as a Medium.
// Only KeyToken is ever present; everything else comes from verifying it.
type CookieMedium struct {
	Request    *http.Request
	CookieName string
}

// Get implements Medium.
func (c CookieMedium) Get(key string) (string, bool) {
	if key != KeyToken || c.Request == nil {
		return "", false
	}
	name := c.CookieName
	if name == "" {
		name = SessionCookieName
	}
	cookie, err := c.Request.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
