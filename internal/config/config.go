// Package config loads server settings from flags, RPG_PARTY_* environment
// variables and an optional YAML file through viper.
package config

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/KirkDiggler/rpg-party/internal/errors"
)

// EnvPrefix prefixes every environment variable, e.g. RPG_PARTY_REDIS_ADDR
const EnvPrefix = "RPG_PARTY"

// Narrative and voice providers
const (
	ProviderScripted    = "scripted"
	ProviderOpenAI      = "openai"
	ProviderPlaceholder = "placeholder"
	ProviderNone        = "none"
)

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Voice     VoiceConfig     `mapstructure:"voice"`
	Resolver  ResolverConfig  `mapstructure:"resolver"`
	Companion CompanionConfig `mapstructure:"companion"`
	Audio     AudioConfig     `mapstructure:"audio"`
	Roster    RosterConfig    `mapstructure:"roster"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	HTTPAddr        string        `mapstructure:"http_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// OriginPatterns lists extra hosts allowed to open the websocket feed
	OriginPatterns []string `mapstructure:"origin_patterns"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig selects the storage backend. Repositories are kept in memory
// when neither Addr nor MasterName is set.
type RedisConfig struct {
	Addr          string   `mapstructure:"addr"`
	MasterName    string   `mapstructure:"master_name"`
	SentinelAddrs []string `mapstructure:"sentinel_addrs"`
	Password      string   `mapstructure:"password"`
	DB            int      `mapstructure:"db"`
	UseTLS        bool     `mapstructure:"use_tls"`
}

// Enabled reports whether a Redis backend is configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != "" || c.MasterName != ""
}

type NarrativeConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type VoiceConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
}

type ResolverConfig struct {
	CallTimeout   time.Duration `mapstructure:"call_timeout"`
	HistoryWindow int           `mapstructure:"history_window"`
	Parallel      bool          `mapstructure:"parallel"`
}

type CompanionConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Delay   time.Duration `mapstructure:"delay"`
	Workers int           `mapstructure:"workers"`
}

type AudioConfig struct {
	MaxClipDuration time.Duration `mapstructure:"max_clip_duration"`
}

type RosterConfig struct {
	// Path to a roster YAML file. Empty uses the built-in roster.
	Path string `mapstructure:"path"`
}

type TelemetryConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 50051)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("narrative.provider", ProviderScripted)
	v.SetDefault("narrative.model", "gpt-4o-mini")
	v.SetDefault("narrative.max_tokens", 200)
	v.SetDefault("narrative.temperature", 0.8)
	v.SetDefault("voice.provider", ProviderNone)
	v.SetDefault("voice.model", "tts-1")
	v.SetDefault("resolver.call_timeout", 20*time.Second)
	v.SetDefault("resolver.history_window", 10)
	v.SetDefault("companion.enabled", true)
	v.SetDefault("companion.delay", 1500*time.Millisecond)
	v.SetDefault("companion.workers", 4)
	v.SetDefault("audio.max_clip_duration", 2*time.Minute)
	v.SetDefault("telemetry.sample_ratio", 1.0)

	// Keys without a useful default are still registered so that
	// AutomaticEnv values reach Unmarshal.
	v.SetDefault("server.origin_patterns", []string{})
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.master_name", "")
	v.SetDefault("redis.sentinel_addrs", []string{})
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.use_tls", false)
	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.base_url", "")
	v.SetDefault("voice.api_key", "")
	v.SetDefault("voice.base_url", "")
	v.SetDefault("resolver.parallel", false)
	v.SetDefault("roster.path", "")
	v.SetDefault("telemetry.endpoint", "")
}

// New returns a viper instance reading RPG_PARTY_* variables with defaults set
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the optional config file and decodes v into a validated Config
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", file)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		vb.Fieldf("server.port", "must be between 1 and 65535, got %d", c.Server.Port)
	}
	errors.ValidateRequired("server.http_addr", c.Server.HTTPAddr, vb)
	errors.ValidateEnum("log.level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "error"}, vb)
	errors.ValidateEnum("log.format", c.Log.Format, []string{"text", "json"}, vb)

	errors.ValidateEnum("narrative.provider", c.Narrative.Provider, []string{ProviderScripted, ProviderOpenAI}, vb)
	if c.Narrative.Provider == ProviderOpenAI {
		errors.ValidateRequired("narrative.api_key", c.Narrative.APIKey, vb)
	}
	errors.ValidateEnum("voice.provider", c.Voice.Provider, []string{ProviderNone, ProviderPlaceholder, ProviderOpenAI}, vb)
	if c.Voice.Provider == ProviderOpenAI {
		errors.ValidateRequired("voice.api_key", c.Voice.APIKey, vb)
	}

	errors.ValidatePositiveDuration("resolver.call_timeout", c.Resolver.CallTimeout, vb)
	if c.Resolver.HistoryWindow < 0 {
		vb.InvalidField("resolver.history_window", "cannot be negative")
	}
	if c.Companion.Workers < 0 {
		vb.InvalidField("companion.workers", "cannot be negative")
	}
	if c.Redis.MasterName != "" && len(c.Redis.SentinelAddrs) == 0 {
		vb.InvalidField("redis.sentinel_addrs", "required with master_name")
	}
	if c.Telemetry.SampleRatio != 0 {
		errors.ValidateUnitInterval("telemetry.sample_ratio", c.Telemetry.SampleRatio, vb)
	}

	return vb.Build()
}

// NewLogger builds the slog logger described by c
func NewLogger(c LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
