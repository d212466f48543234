package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration, loaded from an optional YAML file and
// overridable per-field through environment variables.
type Config struct {
	// APIBaseURL is the public backend origin.
	APIBaseURL string `yaml:"apiBaseURL"`
	// InternalBaseURL, when set, is used instead of APIBaseURL for
	// processes running next to the backend (no public ingress hop).
	InternalBaseURL string `yaml:"internalBaseURL"`

	TimeoutMS int `yaml:"timeoutMs"`
	Retries   int `yaml:"retries"`
	BackoffMS int `yaml:"backoffMs"`

	// SessionStorePath locates the local SQLite session store.
	SessionStorePath string `yaml:"sessionStorePath"`
}

func Default() Config {
	return Config{
		APIBaseURL:       "https://api.stopusing.kr",
		TimeoutMS:        10000,
		Retries:          3,
		BackoffMS:        300,
		SessionStorePath: "./stopusing.db",
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOPUSING_API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("STOPUSING_INTERNAL_BASE_URL"); v != "" {
		c.InternalBaseURL = v
	}
	if v := os.Getenv("STOPUSING_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TimeoutMS = n
		}
	}
	if v := os.Getenv("STOPUSING_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retries = n
		}
	}
	if v := os.Getenv("STOPUSING_BACKOFF_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BackoffMS = n
		}
	}
	if v := os.Getenv("STOPUSING_SESSION_STORE"); v != "" {
		c.SessionStorePath = v
	}
}

// BaseURL resolves the origin requests go to. Internal deployments (e.g.
// server-side rendering next to the backend) set STOPUSING_INTERNAL=true to
// take the internal origin; everything else uses the public one.
func (c Config) BaseURL() string {
	if c.InternalBaseURL != "" && os.Getenv("STOPUSING_INTERNAL") == "true" {
		return c.InternalBaseURL
	}
	return c.APIBaseURL
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c Config) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}
