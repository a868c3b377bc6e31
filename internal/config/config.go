// Package config provides configuration management for StageLink.
//
// Configuration is read once at startup from ~/.stagelink/stagelink.json
// (or the path in STAGELINK_CONFIG) merged with STAGELINK_* environment
// variables, and the resulting Config is passed to each component at
// construction. Nothing re-reads configuration at request time.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config matches the structure of stagelink.json.
type Config struct {
	Bridge   BridgeConfig   `json:"bridge" mapstructure:"bridge"`
	Upstream UpstreamConfig `json:"upstream" mapstructure:"upstream"`
	Grant    GrantConfig    `json:"grant" mapstructure:"grant"`
}

// BridgeConfig configures the HTTP bridge itself.
type BridgeConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`

	// Token is the static bearer token required on /v1/command. Empty
	// means an open bridge: every command request is relayed without
	// authentication. That is a deliberate default for trusted-network
	// deployments, not an oversight; set a token anywhere else.
	Token string `json:"token" mapstructure:"token"`

	// AllowedOrigins is a comma-separated CORS origin list. "*" allows all.
	AllowedOrigins string `json:"allowedOrigins" mapstructure:"allowedOrigins"`

	RateLimit RateLimitConfig `json:"rateLimit" mapstructure:"rateLimit"`
}

// RateLimitConfig configures optional per-IP rate limiting.
type RateLimitConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	RPS     int  `json:"rps" mapstructure:"rps"`
	Burst   int  `json:"burst" mapstructure:"burst"`
}

// UpstreamConfig names the engine's control and health endpoints.
type UpstreamConfig struct {
	CommandURL           string `json:"commandUrl" mapstructure:"commandUrl"`
	HealthURL            string `json:"healthUrl" mapstructure:"healthUrl"`
	TimeoutSeconds       int    `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
	HealthTimeoutSeconds int    `json:"healthTimeoutSeconds" mapstructure:"healthTimeoutSeconds"`
	WatchdogSchedule     string `json:"watchdogSchedule" mapstructure:"watchdogSchedule"`
}

// GrantConfig carries the session-grant signing configuration.
type GrantConfig struct {
	ServerURL        string `json:"serverUrl" mapstructure:"serverUrl"`
	APIKey           string `json:"apiKey" mapstructure:"apiKey"`
	APISecret        string `json:"apiSecret" mapstructure:"apiSecret"`
	TTLSeconds       int    `json:"ttlSeconds" mapstructure:"ttlSeconds"`
	ClockSkewSeconds int    `json:"clockSkewSeconds" mapstructure:"clockSkewSeconds"`
}

// Origins splits the configured CORS origin list.
func (b BridgeConfig) Origins() []string {
	raw := strings.TrimSpace(b.AllowedOrigins)
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Timeout returns the bounded outbound relay timeout.
func (u UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// HealthTimeout returns the bounded health probe timeout.
func (u UpstreamConfig) HealthTimeout() time.Duration {
	if u.HealthTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(u.HealthTimeoutSeconds) * time.Second
}

// TTL returns the configured grant lifetime, or zero when unset so the
// minter's default applies.
func (g GrantConfig) TTL() time.Duration {
	if g.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(g.TTLSeconds) * time.Second
}

// ClockSkew returns the configured not-before allowance, or zero when unset.
func (g GrantConfig) ClockSkew() time.Duration {
	if g.ClockSkewSeconds <= 0 {
		return 0
	}
	return time.Duration(g.ClockSkewSeconds) * time.Second
}

// ConfigPath returns the config file location.
func ConfigPath() string {
	if p := os.Getenv("STAGELINK_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "stagelink.json"
	}
	return filepath.Join(home, ".stagelink", "stagelink.json")
}

// Load reads the configuration from file and environment variables.
// A missing config file is not an error; defaults plus environment apply.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STAGELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	expandEnvVars(&cfg)
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bridge.host", "127.0.0.1")
	v.SetDefault("bridge.port", 18890)
	v.SetDefault("bridge.token", "")
	v.SetDefault("bridge.allowedOrigins", "*")
	v.SetDefault("bridge.rateLimit.enabled", false)
	v.SetDefault("bridge.rateLimit.rps", 10)
	v.SetDefault("bridge.rateLimit.burst", 20)

	v.SetDefault("upstream.commandUrl", "")
	v.SetDefault("upstream.healthUrl", "")
	v.SetDefault("upstream.timeoutSeconds", 15)
	v.SetDefault("upstream.healthTimeoutSeconds", 20)
	v.SetDefault("upstream.watchdogSchedule", "@every 30s")

	v.SetDefault("grant.serverUrl", "")
	v.SetDefault("grant.apiKey", "")
	v.SetDefault("grant.apiSecret", "")
	v.SetDefault("grant.ttlSeconds", 900)
	v.SetDefault("grant.clockSkewSeconds", 10)
}

// expandEnvVars expands ${VAR} references in secret-bearing fields so the
// config file can point at the environment instead of embedding secrets.
func expandEnvVars(cfg *Config) {
	cfg.Bridge.Token = os.ExpandEnv(cfg.Bridge.Token)
	cfg.Grant.APIKey = os.ExpandEnv(cfg.Grant.APIKey)
	cfg.Grant.APISecret = os.ExpandEnv(cfg.Grant.APISecret)
}
