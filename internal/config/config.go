package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// AuthMode selects whether protected routes require a bearer token.
type AuthMode string

const (
	AuthEnforcing AuthMode = "enforcing"
	AuthDisabled  AuthMode = "disabled"
)

// ConfigurationError reports a setting the process cannot start without.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	DatabasePath   string
	AppEnv         string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []netip.Prefix

	AuthMode    AuthMode
	TokenSecret string
	TokenTTL    time.Duration
	BcryptCost  int

	RedisURL        string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	EventRetention     time.Duration
	EventPruneSchedule string
	StatsInterval      time.Duration

	SeedName     string
	SeedEmail    string
	SeedRegion   string
	SeedPassword string
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasSeedContributor reports whether a bootstrap contributor is configured.
func (c *Config) HasSeedContributor() bool {
	return c.SeedEmail != "" && c.SeedPassword != ""
}

// Load reads an optional .env file and then the environment. A missing
// TOKEN_SECRET while auth is enforced is a *ConfigurationError.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "3000"))
	if err != nil {
		return nil, &ConfigurationError{Key: "PORT", Reason: err.Error()}
	}

	mode := AuthEnforcing
	if strings.EqualFold(strings.TrimSpace(os.Getenv("USE_AUTH")), "false") {
		mode = AuthDisabled
	}

	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" && mode == AuthEnforcing {
		return nil, &ConfigurationError{Key: "TOKEN_SECRET", Reason: "must be set when authentication is enforced"}
	}

	ttl, err := getDuration("TOKEN_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, &ConfigurationError{Key: "TOKEN_TTL", Reason: "must be positive"}
	}

	cost, err := getInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, &ConfigurationError{Key: "BCRYPT_COST", Reason: fmt.Sprintf("must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)}
	}

	rateLimit, err := getInt("LOGIN_RATE_LIMIT", 10)
	if err != nil {
		return nil, err
	}
	rateWindow, err := getDuration("LOGIN_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	retention, err := getDuration("EVENT_RETENTION", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	statsInterval, err := getDuration("STATS_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, err
	}
	proxies, err := getPrefixes("TRUSTED_PROXIES")
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:         port,
		DatabasePath:       getEnv("DATABASE_PATH", "./glossary.db"),
		AppEnv:             strings.ToLower(getEnv("APP_ENV", "development")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		TrustedProxies:     proxies,
		AuthMode:           mode,
		TokenSecret:        secret,
		TokenTTL:           ttl,
		BcryptCost:         cost,
		RedisURL:           os.Getenv("REDIS_URL"),
		LoginRateLimit:     rateLimit,
		LoginRateWindow:    rateWindow,
		EventRetention:     retention,
		EventPruneSchedule: getEnv("EVENT_PRUNE_SCHEDULE", "@daily"),
		StatsInterval:      statsInterval,
		SeedName:           getEnv("SEED_CONTRIBUTOR_NAME", "admin"),
		SeedEmail:          os.Getenv("SEED_CONTRIBUTOR_EMAIL"),
		SeedRegion:         getEnv("SEED_CONTRIBUTOR_REGION", ""),
		SeedPassword:       os.Getenv("SEED_CONTRIBUTOR_PASSWORD"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid integer %q", v)}
	}
	return n, nil
}

// getDuration accepts Go durations ("90s", "1h") or a bare number of seconds.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid duration %q", v)}
	}
	return d, nil
}

// getPrefixes parses a comma separated list of CIDRs or bare addresses.
// A bare address becomes a single-host prefix.
func getPrefixes(key string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range splitList(os.Getenv(key)) {
		if prefix, err := netip.ParsePrefix(item); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, &ConfigurationError{Key: key, Reason: fmt.Sprintf("invalid address or CIDR %q", item)}
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
