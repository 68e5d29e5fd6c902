package auth

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultResolverCacheSize = 1024
	defaultResolverCacheTTL  = 5 * time.Minute
)

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Secret verifies signed session tokens. When empty the resolver runs in
	// client mode and trusts the values mirrored in the medium.
	Secret []byte
	// CookieName overrides SessionCookieName for ResolveRequest.
	CookieName string
	// FallbackRole is returned for absent or unusable session state.
	// Privileged roles are ignored and replaced by RoleAnonymous.
	FallbackRole Role
	CacheSize    int
	CacheTTL     time.Duration
	Now          func() time.Time
}

// Resolver derives a Session from persisted session state. It never fails:
// anything it cannot trust resolves to the fallback session.
type Resolver struct {
	secret     []byte
	cookieName string
	fallback   Role
	now        func() time.Time
	verified   *expirable.LRU[string, Session]
}

// NewResolver builds a Resolver from options, applying defaults.
func NewResolver(opts ResolverOptions) *Resolver {
	fallback, ok := ParseRole(string(opts.FallbackRole))
	if opts.FallbackRole == "" {
		fallback, ok = RoleAnonymous, true
	}
	if !ok || fallback.Privileged() {
		log.Printf("ignoring fallback role %q, using %s", opts.FallbackRole, RoleAnonymous)
		fallback = RoleAnonymous
	}

	size := opts.CacheSize
	if size <= 0 {
		size = defaultResolverCacheSize
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultResolverCacheTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = SessionCookieName
	}

	return &Resolver{
		secret:     append([]byte(nil), opts.Secret...),
		cookieName: cookieName,
		fallback:   fallback,
		now:        now,
		verified:   expirable.NewLRU[string, Session](size, nil, ttl),
	}
}

// Fallback returns the session used when nothing trustworthy is stored.
func (r *Resolver) Fallback() Session {
	return Session{Role: r.fallback}
}

// CookieName is the cookie ResolveRequest reads.
func (r *Resolver) CookieName() string {
	return r.cookieName
}

// ClientMode reports whether the resolver trusts mirrored values instead of
// verifying tokens.
func (r *Resolver) ClientMode() bool {
	return len(r.secret) == 0
}

// ResolveRequest resolves the session carried by the request's session cookie.
func (r *Resolver) ResolveRequest(req *http.Request) Session {
	return r.Resolve(CookieMedium{Request: req, CookieName: r.cookieName})
}

// Resolve reads the medium and returns the session it describes.
func (r *Resolver) Resolve(m Medium) Session {
	if m == nil {
		return r.Fallback()
	}
	if r.ClientMode() {
		return r.resolveMirrored(m)
	}

	token, ok := m.Get(KeyToken)
	if !ok || token == "" {
		return r.Fallback()
	}
	return r.resolveToken(token)
}

func (r *Resolver) resolveToken(token string) Session {
	now := r.now()
	key := HashToken(token)

	if cached, ok := r.verified.Get(key); ok {
		if !cached.Expired(now) {
			return cached
		}
		r.verified.Remove(key)
		return r.Fallback()
	}

	session, err := VerifySessionToken(r.secret, token, now)
	if err != nil {
		log.Printf("session token rejected: %v", err)
		return r.Fallback()
	}
	r.verified.Add(key, session)
	return session
}

func (r *Resolver) resolveMirrored(m Medium) Session {
	raw, ok := m.Get(KeyRole)
	if !ok {
		return r.Fallback()
	}
	role, ok := ParseRole(raw)
	if !ok {
		return r.Fallback()
	}

	session := Session{Role: role}
	session.Subject, _ = m.Get(KeySubject)
	session.ClubID, _ = m.Get(KeyClubID)
	session.Token, _ = m.Get(KeyToken)

	if rawExp, ok := m.Get(KeyExpiresAt); ok && rawExp != "" {
		unix, err := strconv.ParseInt(rawExp, 10, 64)
		if err != nil {
			return r.Fallback()
		}
		session.ExpiresAt = time.Unix(unix, 0)
	}
	if session.Expired(r.now()) {
		return r.Fallback()
	}
	if role != RoleAnonymous && session.Subject == "" {
		return r.Fallback()
	}
	return session
}
