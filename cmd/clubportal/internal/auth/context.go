package auth

import "context"

type sessionContextKey struct{}

// SetSessionContext stores the resolved session on the context for downstream consumers.
func SetSessionContext(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext returns the resolved session, or the anonymous session
// if none was stored.
func SessionFromContext(ctx context.Context) Session {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	if !ok {
		return AnonymousSession()
	}
	return session
}
