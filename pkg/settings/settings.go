// Package settings loads the sasectl configuration file and resolves the
// API credential.
package settings

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netops-tools/sasectl/pkg/sase"
)

// EnvBaseURL overrides base_url from the settings file.
const EnvBaseURL = "SASE_BASE_URL"

// Settings holds persistent user preferences
type Settings struct {
	// BaseURL is the configuration API host, e.g. the QA or production tenant
	BaseURL string `yaml:"base_url,omitempty"`

	// Scope is the managed-object category sent with every request
	Scope string `yaml:"scope,omitempty"`

	// Timeout bounds each API request (e.g. "30s")
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the client User-Agent header
	UserAgent string `yaml:"user_agent,omitempty"`

	// AuditLog is the JSON-lines file recording every API write
	AuditLog string `yaml:"audit_log,omitempty"`

	// LogFormat is "text" (default) or "json"
	LogFormat string `yaml:"log_format,omitempty"`
}

// Dir returns the per-user configuration directory
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sasectl"
	}
	return filepath.Join(home, ".sasectl")
}

// DefaultPath returns the default path for the settings file
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}

	return s, nil
}

// ApplyEnv overrides file values with environment variables
func (s *Settings) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return filepath.Join(Dir(), "audit.log")
}

// ClientConfig merges the settings over sase.DefaultConfig.
func (s *Settings) ClientConfig(token string) sase.Config {
	cfg := sase.DefaultConfig()
	cfg.Token = token
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if s.Scope != "" {
		cfg.Scope = s.Scope
	}
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	if s.UserAgent != "" {
		cfg.UserAgent = s.UserAgent
	}
	return cfg
}
