package middleware

import (
	"log"
	"net/http"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/gate"
	"github.com/easymake/clubportal/cmd/clubportal/internal/telemetry"
)

// GateDependencies provides the collaborators needed for route authorization.
type GateDependencies struct {
	Gate    *gate.Gate
	Metrics *telemetry.PortalMetrics
	Debug   bool
}

// NewGateMiddleware enforces gate verdicts as hard redirects. It must run after
// NewSessionMiddleware; requests without a stored session are treated as
// anonymous.
func NewGateMiddleware(deps GateDependencies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPreflight(r) {
				next.ServeHTTP(w, r)
				return
			}

			session := auth.SessionFromContext(r.Context())
			verdict := deps.Gate.Decide(r.URL.Path, session.Role)
			deps.Metrics.RecordVerdict(r.Context(), verdictLabel(verdict), session.Role.String())

			if verdict.IsAllowed() {
				next.ServeHTTP(w, r)
				return
			}

			if deps.Debug {
				log.Printf("gate redirect: path=%s role=%s location=%s", r.URL.Path, session.Role, verdict.Location)
			}
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, verdict.Location, http.StatusFound)
		})
	}
}

func verdictLabel(v gate.Verdict) string {
	if v.IsAllowed() {
		return "allow"
	}
	return "redirect"
}

// isPreflight reports whether r is a CORS preflight. A bare OPTIONS request is
// gated like any other method.
func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}
