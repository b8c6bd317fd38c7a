// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "campus-auth"); required when auth is enabled.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "campus-api"); required when auth is enabled.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "12h", one guard shift).
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SessionStaleAfter is how long a guard session may go without a heartbeat
	// before the sweeper closes it (e.g. "30m"). "0" disables the sweeper.
	SessionStaleAfter string `mapstructure:"SESSION_STALE_AFTER"`
	// SessionSweepInterval is how often the sweeper runs (e.g. "5m").
	SessionSweepInterval string `mapstructure:"SESSION_SWEEP_INTERVAL"`
	// OverdueThreshold is the default dwell time after which a person inside
	// the campus is reported as overdue (e.g. "8h").
	OverdueThreshold string `mapstructure:"OVERDUE_THRESHOLD"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables OTel export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Telemetry (optional). When Kafka brokers are set, applied access events are emitted to Kafka.
	// AccessKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	AccessKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// AccessKafkaTopic is the Kafka topic for access events (default campus-access-events).
	AccessKafkaTopic string `mapstructure:"ACCESS_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the access-event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the access-event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "campus-auth")
	v.SetDefault("JWT_AUDIENCE", "campus-api")
	v.SetDefault("JWT_ACCESS_TTL", "12h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_STALE_AFTER", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "5m")
	v.SetDefault("OVERDUE_THRESHOLD", "8h")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("ACCESS_KAFKA_TOPIC", "campus-access-events")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "campus-access-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 12h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

// StaleAfter parses SessionStaleAfter as a time.Duration. Returns 0 (sweeper
// disabled) when unset, "0", or invalid.
func (c *Config) StaleAfter() time.Duration {
	d, err := time.ParseDuration(c.SessionStaleAfter)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// SweepInterval parses SessionSweepInterval as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.SessionSweepInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// Overdue parses OverdueThreshold as a time.Duration. Returns 8h if unset or invalid.
func (c *Config) Overdue() time.Duration {
	d, err := time.ParseDuration(c.OverdueThreshold)
	if err != nil || d <= 0 {
		return 8 * time.Hour
	}
	return d
}

// AccessKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the access-event feed is enabled (non-empty list) and to create the producer.
func (c *Config) AccessKafkaBrokersList() []string {
	if c == nil || c.AccessKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AccessKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
