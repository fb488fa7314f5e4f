package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration. It is loaded from an HCL
// file, then overlaid with environment variables: environment wins over
// file, file wins over defaults.
type Config struct {
	Server    ServerSettings    `hcl:"server,block"`
	Session   SessionSettings   `hcl:"session,block"`
	Redis     RedisSettings     `hcl:"redis,block"`
	CORS      CORSSettings      `hcl:"cors,block"`
	RateLimit RateLimitSettings `hcl:"rate_limit,block"`
	Game      GameSettings      `hcl:"game,block"`
}

// ServerSettings contains listener-level configuration
type ServerSettings struct {
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	Debug    bool   `hcl:"debug,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// SessionSettings controls session tokens and persistence
type SessionSettings struct {
	TTLSeconds int    `hcl:"ttl_seconds,optional"`
	SecretKey  string `hcl:"secret_key,optional"`
}

// RedisSettings configures the remote session store backend
type RedisSettings struct {
	Host     string `hcl:"host,optional"`
	Port     int    `hcl:"port,optional"`
	DB       int    `hcl:"db,optional"`
	Password string `hcl:"password,optional"`
}

// CORSSettings lists permitted origins
type CORSSettings struct {
	Origins []string `hcl:"origins,optional"`
}

// RateLimitSettings configures per-client request limiting
type RateLimitSettings struct {
	Enabled           bool `hcl:"enabled,optional"`
	RequestsPerMinute int  `hcl:"requests_per_minute,optional"`
}

// GameSettings selects the table rules and starting bankroll
type GameSettings struct {
	RulesPreset     string `hcl:"rules_preset,optional"`
	InitialBankroll int64  `hcl:"initial_bankroll,optional"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Host:     "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Session: SessionSettings{
			TTLSeconds: 3600,
		},
		Redis: RedisSettings{
			Port: 6379,
		},
		CORS: CORSSettings{
			Origins: []string{"*"},
		},
		RateLimit: RateLimitSettings{
			RequestsPerMinute: 120,
		},
		Game: GameSettings{
			RulesPreset:     "vegas_strip",
			InitialBankroll: 1000,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// defaults; a malformed file is an error.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("server: parse config: %s", diags.Error())
	}

	var loaded Config
	diags = gohcl.DecodeBody(file.Body, nil, &loaded)
	if diags.HasErrors() {
		return nil, fmt.Errorf("server: decode config: %s", diags.Error())
	}

	mergeConfig(config, &loaded)
	return config, nil
}

// mergeConfig copies set fields from loaded over the defaults in dst
func mergeConfig(dst, loaded *Config) {
	if loaded.Server.Host != "" {
		dst.Server.Host = loaded.Server.Host
	}
	if loaded.Server.Port != 0 {
		dst.Server.Port = loaded.Server.Port
	}
	if loaded.Server.Debug {
		dst.Server.Debug = true
	}
	if loaded.Server.LogLevel != "" {
		dst.Server.LogLevel = loaded.Server.LogLevel
	}
	if loaded.Session.TTLSeconds != 0 {
		dst.Session.TTLSeconds = loaded.Session.TTLSeconds
	}
	if loaded.Session.SecretKey != "" {
		dst.Session.SecretKey = loaded.Session.SecretKey
	}
	if loaded.Redis.Host != "" {
		dst.Redis.Host = loaded.Redis.Host
	}
	if loaded.Redis.Port != 0 {
		dst.Redis.Port = loaded.Redis.Port
	}
	if loaded.Redis.DB != 0 {
		dst.Redis.DB = loaded.Redis.DB
	}
	if loaded.Redis.Password != "" {
		dst.Redis.Password = loaded.Redis.Password
	}
	if len(loaded.CORS.Origins) > 0 {
		dst.CORS.Origins = loaded.CORS.Origins
	}
	if loaded.RateLimit.Enabled {
		dst.RateLimit.Enabled = true
	}
	if loaded.RateLimit.RequestsPerMinute != 0 {
		dst.RateLimit.RequestsPerMinute = loaded.RateLimit.RequestsPerMinute
	}
	if loaded.Game.RulesPreset != "" {
		dst.Game.RulesPreset = loaded.Game.RulesPreset
	}
	if loaded.Game.InitialBankroll != 0 {
		dst.Game.InitialBankroll = loaded.Game.InitialBankroll
	}
}

// ApplyEnv overlays environment variables on top of the loaded config
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Server.Debug = envBool(v)
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.Session.SecretKey = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			c.Session.TTLSeconds = ttl
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Redis.Port = port
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		c.CORS.Origins = c.CORS.Origins[:0]
		for _, origin := range origins {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				c.CORS.Origins = append(c.CORS.Origins, trimmed)
			}
		}
	}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		c.RateLimit.Enabled = envBool(v)
	}
	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		if rpm, err := strconv.Atoi(v); err == nil {
			c.RateLimit.RequestsPerMinute = rpm
		}
	}
}

func envBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	if c.Session.TTLSeconds <= 0 {
		return fmt.Errorf("server: session ttl must be positive, got %d", c.Session.TTLSeconds)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("server: rate limit rpm must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.Game.InitialBankroll <= 0 {
		return fmt.Errorf("server: initial bankroll must be positive, got %d", c.Game.InitialBankroll)
	}
	return nil
}

// Addr returns the listen address host:port
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SessionTTL returns the session lifetime as a duration
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLSeconds) * time.Second
}
