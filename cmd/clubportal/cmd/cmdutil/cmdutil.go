package cmdutil

import (
	"context"
	"fmt"
	"log"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/config"
	"github.com/easymake/clubportal/cmd/clubportal/internal/gate"
	"github.com/easymake/clubportal/cmd/clubportal/internal/localstore"
	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
	"github.com/easymake/clubportal/cmd/clubportal/internal/notify/httpstore"
	"github.com/easymake/clubportal/cmd/clubportal/internal/notify/wspush"
	"github.com/easymake/clubportal/cmd/clubportal/internal/telemetry"
)

// NewResolver builds the session resolver for cfg. With a session secret it
// verifies tokens; without one it trusts the locally mirrored values.
func NewResolver(cfg *config.Config) (*auth.Resolver, error) {
	fallback, err := cfg.FallbackRole()
	if err != nil {
		return nil, err
	}
	return auth.NewResolver(auth.ResolverOptions{
		Secret:       []byte(cfg.Session.Secret),
		CookieName:   cfg.Session.CookieName,
		FallbackRole: fallback,
	}), nil
}

// NewGate builds the route gate for cfg.
func NewGate(cfg *config.Config) (*gate.Gate, error) {
	g, err := gate.New(cfg.Gate.Paths())
	if err != nil {
		return nil, fmt.Errorf("configure route gate: %w", err)
	}
	return g, nil
}

// LocalSession resolves the session mirrored into local storage. Local storage
// holds no signing key, so the resolver runs in client mode.
func LocalSession(ctx context.Context, cfg *config.Config) (auth.Session, error) {
	fallback, err := cfg.FallbackRole()
	if err != nil {
		return auth.Session{}, err
	}

	store, err := localstore.Open(ctx, cfg.LocalStorageDSN)
	if err != nil {
		return auth.Session{}, fmt.Errorf("open local storage: %w", err)
	}
	defer store.Close()

	medium, err := store.Snapshot(ctx)
	if err != nil {
		return auth.Session{}, err
	}

	resolver := auth.NewResolver(auth.ResolverOptions{FallbackRole: fallback})
	return resolver.Resolve(medium), nil
}

// EngineOptions controls NewEngine.
type EngineOptions struct {
	// Live opens the push subscription in addition to the initial load.
	Live     bool
	OnChange func(notify.Snapshot)
}

// NewEngine wires a notification engine to the remote store and, when
// requested, the push feed, authenticated with the session's credential.
func NewEngine(cfg *config.Config, session auth.Session, opts EngineOptions) (*notify.Engine, error) {
	credential := session.Credential()

	store, err := httpstore.New(cfg.Notifications.APIBaseURL, credential)
	if err != nil {
		return nil, err
	}

	var push notify.PushChannel
	if opts.Live {
		client, err := wspush.New(cfg.Notifications.PushURL)
		if err != nil {
			return nil, err
		}
		push = client
	}

	metrics, err := telemetry.NewPortalMetrics()
	if err != nil {
		log.Printf("notification metrics disabled: %v", err)
	}

	return notify.NewEngine(notify.Options{
		Store:       store,
		Push:        push,
		Credential:  credential,
		BatchPolicy: cfg.BatchPolicy(),
		OnChange:    opts.OnChange,
		Metrics:     metrics,
	})
}
