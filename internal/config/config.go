package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Response styles for the boundary response of a route.
const (
	ResponseStyleJSON  = "json"
	ResponseStylePlain = "plain"
)

// Gateway drivers.
const (
	FCMDriverHTTP = "http"
	FCMDriverSDK  = "sdk"
)

// Token cache drivers.
const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"development"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	FCM       FCMConfig       `yaml:"fcm"`
	Auth      AuthConfig      `yaml:"auth"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Responses ResponsesConfig `yaml:"responses"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
	MaxConns int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"10"`
}

type FCMConfig struct {
	CredentialsPath string        `yaml:"credentials_path" env:"FCM_CREDENTIALS_PATH"` // service account JSON; stub sender when empty
	Driver          string        `yaml:"driver" env:"FCM_DRIVER" env-default:"http"`
	Endpoint        string        `yaml:"endpoint" env:"FCM_ENDPOINT" env-default:"https://fcm.googleapis.com"`
	TokenURI        string        `yaml:"token_uri" env:"FCM_TOKEN_URI"` // overrides the credential's token_uri
	Timeout         time.Duration `yaml:"timeout" env:"FCM_TIMEOUT" env-default:"10s"`
}

type AuthConfig struct {
	Cache TokenCacheConfig `yaml:"cache"`
}

// TokenCacheConfig controls reuse of gateway access tokens between events.
type TokenCacheConfig struct {
	Enabled       bool          `yaml:"enabled" env:"TOKEN_CACHE_ENABLED" env-default:"false"`
	Driver        string        `yaml:"driver" env:"TOKEN_CACHE_DRIVER" env-default:"memory"`
	Skew          time.Duration `yaml:"skew" env:"TOKEN_CACHE_SKEW" env-default:"1m"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
}

type RabbitMQConfig struct {
	URI         string `yaml:"uri" env:"RABBITMQ_URI"` // queue intake disabled when empty
	Queue       string `yaml:"queue" env:"RABBITMQ_QUEUE" env-default:"db_change_events"`
	Concurrency int    `yaml:"concurrency" env:"RABBITMQ_CONCURRENCY" env-default:"4"`
}

type WebhookConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"WEBHOOK_JWT_SECRET"` // verification disabled when empty
}

// ResponsesConfig selects the boundary response convention per route.
type ResponsesConfig struct {
	CommentStyle        string `yaml:"comment_style" env:"RESPONSE_STYLE_COMMENT" env-default:"json"`
	FriendRequestStyle  string `yaml:"friend_request_style" env:"RESPONSE_STYLE_FRIEND_REQUEST" env-default:"json"`
	MissionProposeStyle string `yaml:"mission_propose_style" env:"RESPONSE_STYLE_MISSION_PROPOSE" env-default:"json"`
	MissionsUpdateStyle string `yaml:"missions_update_style" env:"RESPONSE_STYLE_MISSIONS_UPDATE" env-default:"plain"`
	EventsStyle         string `yaml:"events_style" env:"RESPONSE_STYLE_EVENTS" env-default:"json"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`

	// RedactTokens masks push and access tokens in log entries.
	RedactTokens bool `yaml:"redact_tokens" env:"LOG_REDACT_TOKENS" env-default:"true"`
}

// LoadConfig reads .env (if present), then the yaml file at CONFIG_PATH (default config.yml),
// falling back to environment variables alone when the file cannot be read.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Printf("Warning: could not read config file '%s': %v. Reading environment only.", configPath, err)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.FCM.Driver {
	case FCMDriverHTTP, FCMDriverSDK:
	default:
		errs = append(errs, fmt.Errorf("fcm.driver must be %q or %q, got %q", FCMDriverHTTP, FCMDriverSDK, c.FCM.Driver))
	}
	switch c.Auth.Cache.Driver {
	case CacheDriverMemory, CacheDriverRedis:
	default:
		errs = append(errs, fmt.Errorf("auth.cache.driver must be %q or %q, got %q", CacheDriverMemory, CacheDriverRedis, c.Auth.Cache.Driver))
	}
	for name, style := range map[string]string{
		"comment_style":         c.Responses.CommentStyle,
		"friend_request_style":  c.Responses.FriendRequestStyle,
		"mission_propose_style": c.Responses.MissionProposeStyle,
		"missions_update_style": c.Responses.MissionsUpdateStyle,
		"events_style":          c.Responses.EventsStyle,
	} {
		if style != ResponseStyleJSON && style != ResponseStylePlain {
			errs = append(errs, fmt.Errorf("responses.%s must be %q or %q, got %q", name, ResponseStyleJSON, ResponseStylePlain, style))
		}
	}
	if c.RabbitMQ.URI != "" && c.RabbitMQ.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("rabbitmq.concurrency must be positive, got %d", c.RabbitMQ.Concurrency))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
