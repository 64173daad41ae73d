package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/darmiel/cpd/internal/core"
)

type Config struct {
	Sites []SiteConfig `yaml:"sites"`
	Admin AdminConfig  `yaml:"admin"`
	Audit AuditConfig  `yaml:"audit"`
}

// SiteConfig binds a verifier to a site.
type SiteConfig struct {
	// Site is the key prefix of the site, e.g. "ok".
	Site string `yaml:"site"`

	// Accept is an optional boolean expression evaluated against a verified identity.
	// Identities for which it evaluates to false are rejected.
	// For example, `len(external_id) <= 32`.
	Accept string `yaml:"accept"`

	Config map[string]any `yaml:",inline"` // Capture remaining fields, e.g. secret, secret_env
}

// Code returns the parsed site code.
func (s SiteConfig) Code() (core.SiteCode, error) {
	if s.Site == "" {
		return 0, fmt.Errorf("missing 'site'")
	}
	var code core.SiteCode
	if err := code.UnmarshalText([]byte(s.Site)); err != nil {
		return 0, err
	}
	return code, nil
}

// AdminConfig holds configuration for the admin endpoints.
// The admin endpoints are disabled if no signing key is configured.
type AdminConfig struct {
	// SigningKey is the HMAC key admin JWTs are signed with.
	SigningKey string `yaml:"signing_key"`

	// SigningKeyEnv names an environment variable holding the signing key.
	SigningKeyEnv string `yaml:"signing_key_env"`
}

// Key returns the resolved signing key, preferring the environment variable.
func (a AdminConfig) Key() []byte {
	if a.SigningKeyEnv != "" {
		if v := os.Getenv(a.SigningKeyEnv); v != "" {
			return []byte(v)
		}
	}
	if a.SigningKey == "" {
		return nil
	}
	return []byte(a.SigningKey)
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

func (a AuditConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	switch a.Type {
	case "memory", "":
		return nil
	case "file":
		if a.Path == "" {
			return fmt.Errorf("audit type 'file' requires a path")
		}
		return nil
	default:
		return fmt.Errorf("unknown audit type '%s'", a.Type)
	}
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	seen := make(map[core.SiteCode]struct{})
	for idx, s := range c.Sites {
		code, err := s.Code()
		if err != nil {
			return fmt.Errorf("site at index %d: %w", idx, err)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("site '%s' at index %d is configured more than once", code.Prefix(), idx)
		}
		seen[code] = struct{}{}
	}
	if err := c.Audit.Validate(); err != nil {
		return fmt.Errorf("validating audit config: %w", err)
	}
	return nil
}
