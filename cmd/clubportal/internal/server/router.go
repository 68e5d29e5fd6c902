package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/gate"
	portalmiddleware "github.com/easymake/clubportal/cmd/clubportal/internal/middleware"
	"github.com/easymake/clubportal/cmd/clubportal/internal/telemetry"
)

// RouterOptions controls the construction of the portal HTTP router.
// Resolver and Gate are required; everything else has a default.
type RouterOptions struct {
	Resolver      *auth.Resolver
	Gate          *gate.Gate
	Metrics       *telemetry.PortalMetrics
	CORSOptions   *cors.Options
	HealthHandler http.HandlerFunc
	Debug         bool
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the development CORS policy for the portal
// frontend.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles a chi.Router with the baseline middleware, the session
// resolver and the route gate in front of every handler.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	// The gate must see every request before any page handler does.
	r.Use(portalmiddleware.NewSessionMiddleware(opts.Resolver))
	r.Use(portalmiddleware.NewGateMiddleware(portalmiddleware.GateDependencies{
		Gate:    opts.Gate,
		Metrics: opts.Metrics,
		Debug:   opts.Debug,
	}))

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = HandleHealth(opts.Gate.Paths())
	}
	r.Get("/health", healthHandler)

	r.Get("/api/session", HandleSession())
	r.Post("/auth/logout", HandleLogout(opts.Resolver.CookieName()))

	MountPages(r, opts.Gate.Paths())

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}

// NewH2CHandler wraps the router with an h2c server for HTTP/2 over cleartext.
func NewH2CHandler(opts RouterOptions) http.Handler {
	return h2c.NewHandler(NewRouter(opts), &http2.Server{})
}
