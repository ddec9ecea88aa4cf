package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// App holds the runtime configuration loaded from config.yaml and environment variables.
type App struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Latency    LatencyConfig    `mapstructure:"latency"`
	Presence   PresenceConfig   `mapstructure:"presence"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Advice     AdviceConfig     `mapstructure:"advice"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Chat       ChatConfig       `mapstructure:"chat"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AuthConfig struct {
	SharedPassword string        `mapstructure:"shared_password"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	JWTSigningKey  string        `mapstructure:"jwt_signing_key"`
	AccessTTL      time.Duration `mapstructure:"access_ttl"`
	RefreshTTL     time.Duration `mapstructure:"refresh_ttl"`
}

// LatencyConfig is the artificial delay of each pseudo-async portal call.
type LatencyConfig struct {
	Login          time.Duration `mapstructure:"login"`
	ChangePassword time.Duration `mapstructure:"change_password"`
	AddLog         time.Duration `mapstructure:"add_log"`
	AddArtwork     time.Duration `mapstructure:"add_artwork"`
}

type PresenceConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// QueueConfig selects the event queue. Backend is "memory" or "redis".
type QueueConfig struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
	Size    int    `mapstructure:"size"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

// AdviceConfig configures the Gemini client. An empty APIKey disables generation.
type AdviceConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

// Enabled reports whether uploads can be signed.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Pretty  bool   `mapstructure:"pretty"`
	NoColor bool   `mapstructure:"no_color"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ChatConfig drives the polling chat client.
type ChatConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	MessagePoll    time.Duration `mapstructure:"message_poll"`
	ContactPoll    time.Duration `mapstructure:"contact_poll"`
	MatchWindow    time.Duration `mapstructure:"match_window"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Load returns application config with defaults, overridden by an optional
// config.yaml in ./config or . and then by environment variables (SERVER_ADDRESS, REDIS_ADDR, ...).
func Load() (App, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return App{}, fmt.Errorf("read config: %w", err)
		}
	}
	return unmarshal(v)
}

// legacyEnv maps config keys to the environment names they are read from, the
// section-prefixed name first and the short name used by older deployments second.
var legacyEnv = map[string][]string{
	"env":                   {"APP_ENV", "ENV"},
	"auth.jwt_issuer":       {"AUTH_JWT_ISSUER", "JWT_ISSUER"},
	"auth.jwt_signing_key":  {"AUTH_JWT_SIGNING_KEY", "JWT_SIGNING_KEY"},
	"auth.access_ttl":       {"AUTH_ACCESS_TTL", "ACCESS_TTL"},
	"auth.refresh_ttl":      {"AUTH_REFRESH_TTL", "REFRESH_TTL"},
	"rate_limit.per_minute": {"RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_PER_MIN"},
}

func unmarshal(v *viper.Viper) (App, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	var cfg App
	if err := v.Unmarshal(&cfg); err != nil {
		return App{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if port := os.Getenv("HTTP_PORT"); port != "" && os.Getenv("SERVER_ADDRESS") == "" {
		cfg.Server.Address = ":" + port
	}
	if err := cfg.validate(); err != nil {
		return App{}, err
	}
	return cfg, nil
}

func (c App) validate() error {
	switch c.Queue.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("queue.backend must be memory or redis, got %q", c.Queue.Backend)
	}
	if c.Auth.JWTSigningKey == "" {
		return errors.New("auth.jwt_signing_key is required")
	}
	if c.Presence.Enabled && c.Presence.Interval <= 0 {
		return errors.New("presence.interval must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.address", ":8081")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("auth.shared_password", "1234")
	v.SetDefault("auth.jwt_issuer", "kasharts-studio")
	v.SetDefault("auth.jwt_signing_key", "dev-signing-secret-change")
	v.SetDefault("auth.access_ttl", "15m")
	v.SetDefault("auth.refresh_ttl", "24h")

	v.SetDefault("latency.login", "800ms")
	v.SetDefault("latency.change_password", "800ms")
	v.SetDefault("latency.add_log", "500ms")
	v.SetDefault("latency.add_artwork", "500ms")

	v.SetDefault("presence.enabled", true)
	v.SetDefault("presence.interval", "5s")

	v.SetDefault("queue.backend", "memory")
	v.SetDefault("queue.key", "studio:events")
	v.SetDefault("queue.size", 256)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.per_minute", 120)
	v.SetDefault("rate_limit.burst", 0)

	v.SetDefault("advice.api_key", "")
	v.SetDefault("advice.model", "gemini-1.5-flash")
	v.SetDefault("advice.timeout", "20s")

	v.SetDefault("cloudinary.cloud_name", "")
	v.SetDefault("cloudinary.api_key", "")
	v.SetDefault("cloudinary.api_secret", "")
	v.SetDefault("cloudinary.folder", "kasharts")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
	v.SetDefault("logging.no_color", false)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("chat.base_url", "http://localhost:8081")
	v.SetDefault("chat.message_poll", "1s")
	v.SetDefault("chat.contact_poll", "3s")
	v.SetDefault("chat.match_window", "10s")
	v.SetDefault("chat.request_timeout", "5s")
}
