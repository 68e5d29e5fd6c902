package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return req
}

func TestResolver_ResolveRequest(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	resolver := NewResolver(ResolverOptions{Secret: testSecret, Now: func() time.Time { return now }})

	token, err := IssueSessionToken(testSecret, Session{Subject: "lead", Role: RoleClubLeader, ClubID: "c-7"}, now, time.Hour)
	require.NoError(t, err)

	session := resolver.ResolveRequest(newTestRequest(t, token))
	assert.Equal(t, RoleClubLeader, session.Role)
	assert.Equal(t, "lead", session.Subject)
	assert.Equal(t, "c-7", session.ClubID)
	assert.Equal(t, token, session.Credential())

	// Second resolution is served from the verified cache and must agree.
	assert.Equal(t, session, resolver.ResolveRequest(newTestRequest(t, token)))
}

func TestResolver_DegradesToAnonymous(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	resolver := NewResolver(ResolverOptions{Secret: testSecret, Now: func() time.Time { return now }})

	tests := []struct {
		name   string
		medium Medium
	}{
		{"nil medium", nil},
		{"empty medium", MapMedium{}},
		{"garbage token", MapMedium{KeyToken: "xyz"}},
		{"unsigned role value", MapMedium{KeyRole: "super-admin", KeySubject: "intruder"}},
		{"no cookie", CookieMedium{Request: newTestRequest(t, "")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := resolver.Resolve(tt.medium)
			assert.Equal(t, AnonymousSession(), session)
			assert.False(t, session.Authenticated())
			assert.Empty(t, session.Credential())
		})
	}
}

func TestResolver_CachedSessionExpires(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	clock := now
	resolver := NewResolver(ResolverOptions{Secret: testSecret, Now: func() time.Time { return clock }})

	token, err := IssueSessionToken(testSecret, Session{Subject: "u", Role: RoleMember}, now, time.Minute)
	require.NoError(t, err)

	assert.Equal(t, RoleMember, resolver.Resolve(MapMedium{KeyToken: token}).Role)

	clock = now.Add(2 * time.Minute)
	assert.Equal(t, RoleAnonymous, resolver.Resolve(MapMedium{KeyToken: token}).Role)
}

func TestResolver_FallbackRole(t *testing.T) {
	member := NewResolver(ResolverOptions{Secret: testSecret, FallbackRole: RoleMember})
	assert.Equal(t, RoleMember, member.Resolve(MapMedium{}).Role)

	// Privileged fallbacks are never honoured.
	for _, role := range []Role{RoleClubLeader, RoleCoLeader, RoleSuperAdmin, "bogus"} {
		r := NewResolver(ResolverOptions{Secret: testSecret, FallbackRole: role})
		assert.Equal(t, RoleAnonymous, r.Resolve(MapMedium{}).Role, "fallback %s", role)
	}
}

func TestResolver_ClientMode(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	resolver := NewResolver(ResolverOptions{Now: func() time.Time { return now }})
	require.True(t, resolver.ClientMode())

	session := resolver.Resolve(MapMedium{
		KeyRole:      "co-leader",
		KeySubject:   "u-2",
		KeyClubID:    "c-3",
		KeyToken:     "tok",
		KeyExpiresAt: "1800000600",
	})
	assert.Equal(t, RoleCoLeader, session.Role)
	assert.Equal(t, "c-3", session.ClubID)
	assert.Equal(t, "tok", session.Credential())

	assert.Equal(t, RoleAnonymous, resolver.Resolve(MapMedium{KeyRole: "co-leader", KeySubject: "u", KeyExpiresAt: "1799999999"}).Role)
	assert.Equal(t, RoleAnonymous, resolver.Resolve(MapMedium{KeyRole: "co-leader", KeySubject: "u", KeyExpiresAt: "soon"}).Role)
	assert.Equal(t, RoleAnonymous, resolver.Resolve(MapMedium{KeyRole: "co-leader"}).Role)
	assert.Equal(t, RoleAnonymous, resolver.Resolve(MapMedium{KeyRole: "wizard", KeySubject: "u"}).Role)
}
