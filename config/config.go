// Package config loads the gateway configuration from environment
// variables, optionally seeded from a .env file in development.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings for the gateway.
type Config struct {
	Service   ServiceConfig
	Backend   BackendConfig
	Guard     GuardConfig
	Logging   LoggingConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Shutdown  ShutdownConfig
}

type ServiceConfig struct {
	Name    string
	Version string
	Env     string // development | production | test
	Port    string
}

type BackendConfig struct {
	// APIURL is the auth backend base URL (PUBLIC_API_URL).
	APIURL string
	// FrontendURL is the public origin of this frontend, used to build
	// absolute redirect targets.
	FrontendURL string
	// UpstreamURL is the page-rendering upstream requests are proxied to.
	UpstreamURL string
	// RequestTimeout caps each call to the auth backend.
	RequestTimeout time.Duration
}

type GuardConfig struct {
	CacheTTL        time.Duration
	CacheMaxEntries int
}

type LoggingConfig struct {
	Level string
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type ShutdownConfig struct {
	Timeout             time.Duration
	ReadinessDrainDelay time.Duration
}

// Load reads configuration from environment variables with defaults that
// let the gateway boot in development.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		Service: ServiceConfig{
			Name:    getString("SERVICE_NAME", "auth-gateway"),
			Version: getString("SERVICE_VERSION", "dev"),
			Env:     getString("PUBLIC_ENV", "development"),
			Port:    getString("PORT", "3000"),
		},
		Backend: BackendConfig{
			APIURL:         getString("PUBLIC_API_URL", "http://localhost:8080"),
			FrontendURL:    getString("PUBLIC_FRONTEND_URL", "http://localhost:3000"),
			UpstreamURL:    getString("UPSTREAM_URL", "http://localhost:5173"),
			RequestTimeout: getDuration("BACKEND_REQUEST_TIMEOUT", 5*time.Second),
		},
		Guard: GuardConfig{
			CacheTTL:        getDuration("SESSION_CACHE_TTL", 30*time.Second),
			CacheMaxEntries: getInt("SESSION_CACHE_MAX_ENTRIES", 100),
		},
		Logging: LoggingConfig{
			Level: getString("LOG_LEVEL", "info"),
		},
		Tracing: TracingConfig{
			Enabled:    getBool("TRACING_ENABLED", false),
			Endpoint:   getString("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getBool("PROFILING_ENABLED", false),
			Endpoint: getString("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		Shutdown: ShutdownConfig{
			Timeout:             getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			ReadinessDrainDelay: getDuration("READINESS_DRAIN_DELAY", 0),
		},
	}
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	switch c.Service.Env {
	case "development", "production", "test":
	default:
		return fmt.Errorf("PUBLIC_ENV must be development, production or test, got %q", c.Service.Env)
	}
	for name, raw := range map[string]string{
		"PUBLIC_API_URL":      c.Backend.APIURL,
		"PUBLIC_FRONTEND_URL": c.Backend.FrontendURL,
		"UPSTREAM_URL":        c.Backend.UpstreamURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.Guard.CacheMaxEntries <= 0 {
		return fmt.Errorf("SESSION_CACHE_MAX_ENTRIES must be positive, got %d", c.Guard.CacheMaxEntries)
	}
	return nil
}

// IsDevelopment reports whether the gateway runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Service.Env == "development"
}

// GetShutdownTimeoutDuration returns the graceful-shutdown timeout.
func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return c.Shutdown.Timeout
}

// GetReadinessDrainDelayDuration returns how long to keep serving after
// readiness starts failing, so load balancers stop routing first.
func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return c.Shutdown.ReadinessDrainDelay
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
