package config

import "context"

type contextKey string

const configKey contextKey = "clubportal-config"

// InjectConfig adds cfg to the command context. The root command calls it in
// PersistentPreRunE so every subcommand shares the one loaded configuration.
func InjectConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves the configuration injected by InjectConfig.
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok && cfg != nil
}

// MustFromContext retrieves the configuration or panics. Only command RunE
// functions, which always run after the root hook, should use it.
func MustFromContext(ctx context.Context) *Config {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("clubportal: config not found in context")
	}
	return cfg
}
