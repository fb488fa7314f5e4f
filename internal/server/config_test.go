package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Session.TTLSeconds != 3600 {
		t.Errorf("session ttl default = %d, want 3600", cfg.Session.TTLSeconds)
	}
	if cfg.Game.RulesPreset != "vegas_strip" || cfg.Game.InitialBankroll != 1000 {
		t.Errorf("unexpected game defaults: %+v", cfg.Game)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hcl")
	content := `
server {
  host = "0.0.0.0"
  port = 9090
  debug = true
}

session {
  ttl_seconds = 7200
}

redis {
  host = "cache.internal"
  port = 6380
  db   = 2
}

cors {
  origins = ["https://app.example.com"]
}

rate_limit {
  enabled             = true
  requests_per_minute = 60
}

game {
  rules_preset     = "single_deck"
  initial_bankroll = 500
}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 || !cfg.Server.Debug {
		t.Errorf("server settings not loaded: %+v", cfg.Server)
	}
	if cfg.Session.TTLSeconds != 7200 {
		t.Errorf("ttl = %d, want 7200", cfg.Session.TTLSeconds)
	}
	if cfg.Redis.Host != "cache.internal" || cfg.Redis.Port != 6380 || cfg.Redis.DB != 2 {
		t.Errorf("redis settings not loaded: %+v", cfg.Redis)
	}
	if len(cfg.CORS.Origins) != 1 || cfg.CORS.Origins[0] != "https://app.example.com" {
		t.Errorf("cors origins not loaded: %+v", cfg.CORS)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerMinute != 60 {
		t.Errorf("rate limit not loaded: %+v", cfg.RateLimit)
	}
	if cfg.Game.RulesPreset != "single_deck" || cfg.Game.InitialBankroll != 500 {
		t.Errorf("game settings not loaded: %+v", cfg.Game)
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	t.Setenv("HOST", "envhost")
	t.Setenv("PORT", "7001")
	t.Setenv("DEBUG", "true")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("SESSION_TTL", "1800")
	t.Setenv("REDIS_HOST", "redis-env")
	t.Setenv("REDIS_PORT", "6390")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("RATE_LIMIT_ENABLED", "1")
	t.Setenv("RATE_LIMIT_RPM", "30")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Server.Host != "envhost" || cfg.Server.Port != 7001 || !cfg.Server.Debug {
		t.Errorf("server env overlay failed: %+v", cfg.Server)
	}
	if cfg.Session.SecretKey != "env-secret" || cfg.Session.TTLSeconds != 1800 {
		t.Errorf("session env overlay failed: %+v", cfg.Session)
	}
	if cfg.Redis.Host != "redis-env" || cfg.Redis.Port != 6390 || cfg.Redis.DB != 3 || cfg.Redis.Password != "hunter2" {
		t.Errorf("redis env overlay failed: %+v", cfg.Redis)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.CORS.Origins) != 2 || cfg.CORS.Origins[0] != want[0] || cfg.CORS.Origins[1] != want[1] {
		t.Errorf("cors env overlay failed: %+v", cfg.CORS.Origins)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("rate limit env overlay failed: %+v", cfg.RateLimit)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad ttl", func(c *Config) { c.Session.TTLSeconds = -1 }, true},
		{"rate limit without rpm", func(c *Config) { c.RateLimit.Enabled = true; c.RateLimit.RequestsPerMinute = 0 }, true},
		{"bad bankroll", func(c *Config) { c.Game.InitialBankroll = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
