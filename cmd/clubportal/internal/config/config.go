package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
	"github.com/easymake/clubportal/cmd/clubportal/internal/gate"
	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

// ErrPrivilegedFallback is returned when the fallback role would grant admin
// console access to sessions that carry no role at all.
var ErrPrivilegedFallback = errors.New("fallback role must not be privileged")

// Config holds the application configuration
type Config struct {
	// Server bind address (host:port)
	ServerAddr string `yaml:"server_addr"`

	// Enable debug logging
	Debug bool `yaml:"debug"`

	Session       SessionConfig      `yaml:"session"`
	Gate          GateConfig         `yaml:"gate"`
	Notifications NotificationConfig `yaml:"notifications"`

	// LocalStorageDSN locates the CLI's persisted key/value store
	LocalStorageDSN string `yaml:"local_storage_dsn"`

	// Allowed CORS origins for the portal frontend
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// SessionConfig controls how session cookies are minted and resolved.
type SessionConfig struct {
	// Secret signs and verifies session tokens. The server refuses to start
	// without one; CLI commands that only read local storage do not need it.
	Secret     string        `yaml:"secret"`
	TTL        time.Duration `yaml:"ttl"`
	CookieName string        `yaml:"cookie_name"`

	// FallbackRole is used when no usable session is stored. It defaults to
	// anonymous and may never be a leader role.
	FallbackRole string `yaml:"fallback_role"`
}

// GateConfig is the file and environment form of the route gate paths.
type GateConfig struct {
	AdminPrefix   string `yaml:"admin_prefix"`
	SignIn        string `yaml:"sign_in"`
	AdminHome     string `yaml:"admin_home"`
	SystemPrefix  string `yaml:"system_prefix"`
	ClubPrefix    string `yaml:"club_prefix"`
	NotAuthorized string `yaml:"not_authorized"`
}

func gateConfigFrom(p gate.Paths) GateConfig {
	return GateConfig{
		AdminPrefix:   p.AdminPrefix,
		SignIn:        p.SignIn,
		AdminHome:     p.AdminHome,
		SystemPrefix:  p.SystemPrefix,
		ClubPrefix:    p.ClubPrefix,
		NotAuthorized: p.NotAuthorized,
	}
}

// Paths converts the configured values into gate paths.
func (g GateConfig) Paths() gate.Paths {
	return gate.Paths{
		AdminPrefix:   g.AdminPrefix,
		SignIn:        g.SignIn,
		AdminHome:     g.AdminHome,
		SystemPrefix:  g.SystemPrefix,
		ClubPrefix:    g.ClubPrefix,
		NotAuthorized: g.NotAuthorized,
	}
}

// NotificationConfig locates the remote notification store and push feed.
type NotificationConfig struct {
	APIBaseURL  string `yaml:"api_base_url"`
	PushURL     string `yaml:"push_url"`
	BatchPolicy string `yaml:"batch_policy"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerAddr: "localhost:8080",
		Session: SessionConfig{
			TTL:          auth.SessionDuration,
			CookieName:   auth.SessionCookieName,
			FallbackRole: string(auth.RoleAnonymous),
		},
		Gate: gateConfigFrom(gate.DefaultPaths()),
		Notifications: NotificationConfig{
			APIBaseURL:  "http://localhost:8080",
			PushURL:     "ws://localhost:8080/ws/notifications",
			BatchPolicy: string(notify.BatchAllOrNothing),
		},
		LocalStorageDSN: defaultLocalStorageDSN(),
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
	}
}

// Load reads configuration from an optional YAML file (CLUBPORTAL_CONFIG)
// and then from environment variables, which take precedence.
func Load() (*Config, error) {
	return LoadFile(getEnv("CLUBPORTAL_CONFIG", ""))
}

// LoadFile is Load with an explicit config file path. An empty path skips the
// file.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.ServerAddr = getEnv("CLUBPORTAL_SERVER_ADDR", cfg.ServerAddr)
	cfg.Debug = getEnvBool("CLUBPORTAL_DEBUG", cfg.Debug)
	cfg.LocalStorageDSN = getEnv("CLUBPORTAL_LOCAL_STORAGE_DSN", cfg.LocalStorageDSN)
	cfg.AllowedOrigins = getEnvList("CLUBPORTAL_ALLOWED_ORIGINS", cfg.AllowedOrigins)

	cfg.Session.Secret = getEnv("CLUBPORTAL_SESSION_SECRET", cfg.Session.Secret)
	cfg.Session.TTL = getEnvDuration("CLUBPORTAL_SESSION_TTL", cfg.Session.TTL)
	cfg.Session.CookieName = getEnv("CLUBPORTAL_SESSION_COOKIE", cfg.Session.CookieName)
	cfg.Session.FallbackRole = getEnv("CLUBPORTAL_FALLBACK_ROLE", cfg.Session.FallbackRole)

	cfg.Gate.AdminPrefix = getEnv("CLUBPORTAL_ADMIN_PREFIX", cfg.Gate.AdminPrefix)
	cfg.Gate.SignIn = getEnv("CLUBPORTAL_SIGN_IN_PATH", cfg.Gate.SignIn)
	cfg.Gate.AdminHome = getEnv("CLUBPORTAL_ADMIN_HOME_PATH", cfg.Gate.AdminHome)
	cfg.Gate.SystemPrefix = getEnv("CLUBPORTAL_SYSTEM_PREFIX", cfg.Gate.SystemPrefix)
	cfg.Gate.ClubPrefix = getEnv("CLUBPORTAL_CLUB_PREFIX", cfg.Gate.ClubPrefix)
	cfg.Gate.NotAuthorized = getEnv("CLUBPORTAL_NOT_AUTHORIZED_PATH", cfg.Gate.NotAuthorized)

	cfg.Notifications.APIBaseURL = getEnv("CLUBPORTAL_NOTIFICATIONS_API_URL", cfg.Notifications.APIBaseURL)
	cfg.Notifications.PushURL = getEnv("CLUBPORTAL_NOTIFICATIONS_PUSH_URL", cfg.Notifications.PushURL)
	cfg.Notifications.BatchPolicy = getEnv("CLUBPORTAL_BATCH_POLICY", cfg.Notifications.BatchPolicy)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that would make the portal
// unsafe or unusable.
func (c *Config) Validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("CLUBPORTAL_SERVER_ADDR is required")
	}

	if _, err := c.FallbackRole(); err != nil {
		return err
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		return fmt.Errorf("CLUBPORTAL_SESSION_SECRET must be at least 32 bytes")
	}

	if err := c.Gate.Paths().Validate(); err != nil {
		return fmt.Errorf("invalid gate paths: %w", err)
	}

	if _, err := notify.ParseBatchPolicy(c.Notifications.BatchPolicy); err != nil {
		return err
	}
	return nil
}

// FallbackRole parses the configured fallback role.
func (c *Config) FallbackRole() (auth.Role, error) {
	raw := c.Session.FallbackRole
	if strings.TrimSpace(raw) == "" {
		return auth.RoleAnonymous, nil
	}
	role, ok := auth.ParseRole(raw)
	if !ok {
		return "", fmt.Errorf("unknown fallback role %q", raw)
	}
	if role.Privileged() {
		return "", fmt.Errorf("%w: %s", ErrPrivilegedFallback, role)
	}
	return role, nil
}

// BatchPolicy returns the parsed mark-all-read policy.
func (c *Config) BatchPolicy() notify.BatchPolicy {
	policy, err := notify.ParseBatchPolicy(c.Notifications.BatchPolicy)
	if err != nil {
		return notify.BatchAllOrNothing
	}
	return policy
}

// RequireSecret reports an error when no session secret is configured.
func (c *Config) RequireSecret() error {
	if c.Session.Secret == "" {
		return fmt.Errorf("CLUBPORTAL_SESSION_SECRET is required")
	}
	return nil
}

func defaultLocalStorageDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "clubportal.db"
	}
	return dir + string(os.PathSeparator) + "clubportal" + string(os.PathSeparator) + "local.db"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
