// Package config loads and validates deployment configuration, adapted
// from pkg/config/config.go's env-var-driven Load/Validate/
// ValidateForDevelopment shape onto the fields spec.md §6 enumerates.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all deployment configuration for the ledger service.
type Config struct {
	DatabaseURL         string
	DatabaseMaxConns    int
	DatabaseMinConns    int
	DatabaseMaxIdleTime time.Duration
	DatabaseMaxLifetime time.Duration

	// RequireSession is the single deployment-time boolean spec.md §4.4/§9
	// names: missing session tokens are rejected when true (production),
	// accepted unauthenticated when false (development). No other code
	// path branches on this flag.
	RequireSession bool

	// SerialisableRetries bounds the ledger store's retry loop on
	// serialization conflicts (spec.md §4.5/§5), default 3.
	SerialisableRetries int

	ServerRPID     string
	ServerRPOrigin string

	// KVCachePath is the on-disk path for the GoLevelDB-backed read-mostly
	// cache the pact registry / session snapshots use (see
	// internal/kvcache); empty keeps the cache in memory only.
	KVCachePath string
}

// Load reads configuration from the process environment, following the
// getEnv/getEnvInt/getEnvBool/getEnvDuration helper pattern of
// pkg/config/config.go.
func Load() (*Config, error) {
	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:    getEnvInt("DATABASE_MAX_CONNS", 20),
		DatabaseMinConns:    getEnvInt("DATABASE_MIN_CONNS", 2),
		DatabaseMaxIdleTime: getEnvDuration("DATABASE_MAX_IDLE_TIME", 5*time.Minute),
		DatabaseMaxLifetime: getEnvDuration("DATABASE_MAX_LIFETIME", time.Hour),
		RequireSession:      getEnvBool("REQUIRE_SESSION", true),
		SerialisableRetries: getEnvInt("SERIALISABLE_RETRIES", 3),
		ServerRPID:          getEnv("SERVER_RP_ID", ""),
		ServerRPOrigin:      getEnv("SERVER_RP_ORIGIN", ""),
		KVCachePath:         getEnv("KV_CACHE_PATH", ""),
	}, nil
}

// Validate performs strict validation suitable for production, following
// the teacher's collect-all-errors-then-join shape.
func (c *Config) Validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required but not set")
	} else {
		if strings.Contains(c.DatabaseURL, "sslmode=disable") {
			errs = append(errs, "DATABASE_URL must not disable sslmode in production")
		}
		weak := []string{"development", "password", "change-me", "changeme", "default", "test"}
		lower := strings.ToLower(c.DatabaseURL)
		for _, w := range weak {
			if strings.Contains(lower, w) {
				errs = append(errs, "DATABASE_URL appears to contain default/weak credentials")
				break
			}
		}
	}

	if !c.RequireSession {
		errs = append(errs, "REQUIRE_SESSION must be true in production")
	}

	if c.SerialisableRetries < 0 {
		errs = append(errs, "SERIALISABLE_RETRIES must be >= 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ValidateForDevelopment performs relaxed validation for local
// development. WARNING: do not use in production — use Validate instead.
func (c *Config) ValidateForDevelopment() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("development configuration validation failed:\n  - DATABASE_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
