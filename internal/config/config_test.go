package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Mode: "release"},
			Database: DatabaseConfig{Driver: "postgres"},
			JWT:      JWTConfig{Secret: strings.Repeat("x", 32)},
			Session:  SessionConfig{MaxQuestions: 100},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"short secret in release", func(c *Config) { c.JWT.Secret = "short" }, true},
		{"short secret in debug", func(c *Config) { c.Server.Mode = "debug"; c.JWT.Secret = "short" }, false},
		{"sqlite", func(c *Config) { c.Database.Driver = "sqlite" }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"no questions per session", func(c *Config) { c.Session.MaxQuestions = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRateWindow(t *testing.T) {
	c := &Config{}
	if c.RateWindow() != time.Minute {
		t.Fatalf("expected one minute default, got %v", c.RateWindow())
	}
	c.RateLimit.WindowMinutes = 5
	if c.RateWindow() != 5*time.Minute {
		t.Fatalf("expected five minutes, got %v", c.RateWindow())
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	content := `
server:
  mode: debug
database:
  driver: sqlite
  dbname: ` + filepath.Join(dir, "kreuzen.db") + `
jwt:
  secret: load-config-secret
  expire_hours: 2
storage:
  type: local
  local_path: ` + uploads + `
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.JWT.ExpireTime != 2*time.Hour {
		t.Fatalf("expected 2h token lifetime, got %v", cfg.JWT.ExpireTime)
	}
	if cfg.Session.MaxQuestions != 500 || cfg.Server.Port != "8080" {
		t.Fatalf("defaults not applied: %+v", cfg.Session)
	}
	if _, err := os.Stat(uploads); err != nil {
		t.Fatalf("expected upload dir to be created: %v", err)
	}
}
