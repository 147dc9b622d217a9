package settings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/netops-tools/sasectl/pkg/sase"
	"github.com/netops-tools/sasectl/pkg/util"
)

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `base_url: https://api.sase.example.com
scope: Remote Networks
timeout: 45s
audit_log: /var/log/sasectl/audit.log
log_format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if s.BaseURL != "https://api.sase.example.com" {
		t.Errorf("BaseURL = %q", s.BaseURL)
	}
	if s.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", s.Timeout)
	}
	if s.GetAuditLog() != "/var/log/sasectl/audit.log" {
		t.Errorf("GetAuditLog() = %q", s.GetAuditLog())
	}
	if s.LogFormat != "json" {
		t.Errorf("LogFormat = %q", s.LogFormat)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	s, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() on missing file should not fail: %v", err)
	}
	if *s != (Settings{}) {
		t.Errorf("Expected empty settings, got %+v", s)
	}
	if !strings.HasSuffix(s.GetAuditLog(), filepath.Join(".sasectl", "audit.log")) {
		t.Errorf("GetAuditLog() default = %q", s.GetAuditLog())
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: [not, a, duration]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() should fail on invalid YAML types")
	}
}

func TestApplyEnv(t *testing.T) {
	s := &Settings{BaseURL: "https://from-file"}
	s.ApplyEnv(func(string) string { return "" })
	if s.BaseURL != "https://from-file" {
		t.Errorf("empty env should not override, got %q", s.BaseURL)
	}

	s.ApplyEnv(func(k string) string {
		if k == EnvBaseURL {
			return "https://from-env"
		}
		return ""
	})
	if s.BaseURL != "https://from-env" {
		t.Errorf("BaseURL = %q, want env override", s.BaseURL)
	}
}

func TestClientConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := (&Settings{}).ClientConfig("tok")
		want := sase.DefaultConfig()
		want.Token = "tok"
		if cfg != want {
			t.Errorf("ClientConfig() = %+v, want %+v", cfg, want)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		s := &Settings{
			BaseURL:   "https://prod",
			Scope:     "Service Connections",
			Timeout:   5 * time.Second,
			UserAgent: "ops/2",
		}
		cfg := s.ClientConfig("tok")
		if cfg.BaseURL != "https://prod" || cfg.Scope != "Service Connections" ||
			cfg.Timeout != 5*time.Second || cfg.UserAgent != "ops/2" {
			t.Errorf("ClientConfig() = %+v", cfg)
		}
	})
}

func TestResolveToken(t *testing.T) {
	env := func(val string) func(string) string {
		return func(k string) string {
			if k == TokenEnv {
				return val
			}
			return ""
		}
	}

	t.Run("from env", func(t *testing.T) {
		tok, err := ResolveToken(env(" abc \n"), nil)
		if err != nil || tok != "abc" {
			t.Errorf("ResolveToken() = (%q, %v), want abc", tok, err)
		}
	})

	t.Run("missing without prompt", func(t *testing.T) {
		_, err := ResolveToken(env(""), nil)
		if !errors.Is(err, util.ErrMissingToken) {
			t.Errorf("error = %v, want ErrMissingToken", err)
		}
		if !strings.Contains(err.Error(), TokenEnv) {
			t.Errorf("error should name %s: %v", TokenEnv, err)
		}
	})

	t.Run("prompted", func(t *testing.T) {
		var asked string
		tok, err := ResolveToken(env(""), func(label string) (string, error) {
			asked = label
			return "typed", nil
		})
		if err != nil || tok != "typed" {
			t.Errorf("ResolveToken() = (%q, %v), want typed", tok, err)
		}
		if asked == "" {
			t.Error("prompt should receive a label")
		}
	})

	t.Run("prompt empty", func(t *testing.T) {
		_, err := ResolveToken(env(""), func(string) (string, error) { return "  ", nil })
		if !errors.Is(err, util.ErrMissingToken) {
			t.Errorf("error = %v, want ErrMissingToken", err)
		}
	})

	t.Run("prompt error", func(t *testing.T) {
		boom := errors.New("eof")
		_, err := ResolveToken(env(""), func(string) (string, error) { return "", boom })
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want wrapped prompt error", err)
		}
	})
}

func TestTerminalPrompt_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if TerminalPrompt(f, os.Stdout) != nil {
		t.Error("TerminalPrompt should return nil for a regular file")
	}
}
