package middleware

import (
	"net/http"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
)

// NewSessionMiddleware resolves the session cookie once per request and stores
// the typed session on the request context. Resolution never fails; requests
// without a usable cookie carry the resolver's fallback session.
func NewSessionMiddleware(resolver *auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := resolver.ResolveRequest(r)
			ctx := auth.SetSessionContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
