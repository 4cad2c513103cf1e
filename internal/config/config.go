package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig       `envPrefix:"SERVER_"`
	Log          LogConfig          `envPrefix:"LOG_"`
	Database     DatabaseConfig     `envPrefix:"DATABASE_"`
	Redis        RedisConfig        `envPrefix:"REDIS_"`
	Backend      BackendConfig      `envPrefix:"BACKEND_"`
	App          AppConfig          `envPrefix:"APP_"`
	SendPulse    SendPulseConfig    `envPrefix:"SENDPULSE_"`
	Auth         AuthConfig         `envPrefix:"AUTH_"`
	Crypto       CryptoConfig       `envPrefix:"CRYPTO_"`
	Notification NotificationConfig `envPrefix:"NOTIFICATION_"`
	Kafka        KafkaConfig        `envPrefix:"KAFKA_"`
	AMQP         AMQPConfig         `envPrefix:"AMQP_"`
	RateLimit    RateLimitConfig    `envPrefix:"RATE_LIMIT_"`
	Embedding    EmbeddingConfig    `envPrefix:"EMBEDDING_"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	// CORSOrigins is a regular expression matched against the Origin header of dashboard calls.
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"^https?://(localhost(:\\d+)?|([a-z0-9-]+\\.)*ragzy\\.ai)$"`
	// PprofEnabled mounts /debug/pprof behind the dashboard authentication.
	PprofEnabled bool `env:"PPROF_ENABLED" envDefault:"false"`
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

type DatabaseConfig struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"ragzy"`
}

type RedisConfig struct {
	URL string `env:"URL" envDefault:"redis://localhost:6379/0"`
}

type BackendConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8001"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type AppConfig struct {
	URL string `env:"URL" envDefault:"http://localhost:3000"`
}

type SendPulseConfig struct {
	BaseURL      string `env:"BASE_URL" envDefault:"https://api.sendpulse.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	FromEmail    string `env:"FROM_EMAIL" envDefault:"support@ragzy.ai"`
	FromName     string `env:"FROM_NAME" envDefault:"Ragzy Team"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET,required"`
	Issuer    string        `env:"ISSUER" envDefault:"ragzy"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type CryptoConfig struct {
	// EncryptionKey is a base64 encoded 32 byte key used for connection tokens at rest.
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`
}

type NotificationConfig struct {
	Delay        time.Duration `env:"DELAY" envDefault:"10m"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	BatchSize    int64         `env:"BATCH_SIZE" envDefault:"100"`
	QueueKey     string        `env:"QUEUE_KEY" envDefault:"notifications:pending"`
	RetryBackoff time.Duration `env:"RETRY_BACKOFF" envDefault:"1m"`
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"5"`
}

type KafkaConfig struct {
	Enabled    bool     `env:"ENABLED" envDefault:"false"`
	Brokers    []string `env:"BROKERS" envSeparator:","`
	Topic      string   `env:"TOPIC" envDefault:"backend.chat.events"`
	GroupID    string   `env:"GROUP_ID" envDefault:"ragzy-api"`
	NumWorkers int      `env:"NUM_WORKERS" envDefault:"4"`
}

type AMQPConfig struct {
	URL            string        `env:"URL"`
	Exchange       string        `env:"EXCHANGE" envDefault:"ragzy.events"`
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" envDefault:"1s"`
}

type RateLimitConfig struct {
	Enabled   bool          `env:"ENABLED" envDefault:"true"`
	Requests  int           `env:"REQUESTS" envDefault:"30"`
	Window    time.Duration `env:"WINDOW" envDefault:"1m"`
	Whitelist []string      `env:"WHITELIST" envSeparator:","`
}

type EmbeddingConfig struct {
	Provider string `env:"PROVIDER" envDefault:"voyage"`
	Model    string `env:"MODEL" envDefault:"voyage-3"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	return cfg
}
