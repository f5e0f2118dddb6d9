// Package config loads process configuration from the environment. A .env
// file, when present, is read first and never overrides variables that are
// already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	textlist "homestay/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Server   Server
	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Auth     Auth
	Policy   Policy
	Log      Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"HOMESTAY_ADDR,default=:8080"`
	RequestTimeout  time.Duration `env:"HOMESTAY_REQUEST_TIMEOUT,default=30s"`
	ShutdownTimeout time.Duration `env:"HOMESTAY_SHUTDOWN_TIMEOUT,default=15s"`
	TrustProxy      bool          `env:"HOMESTAY_TRUST_PROXY,default=false"`
}

// Database selects the record store. An empty URL runs on the in-memory
// store.
type Database struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS,default=25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME,default=30m"`
	RunMigrations   bool          `env:"DATABASE_RUN_MIGRATIONS,default=true"`
}

// RedisConfig is optional; when URL is set serials and token revocation use
// Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE,default=10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS,default=2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT,default=5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT,default=3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT,default=3s"`
}

// Kafka enables the outbox relay. Without brokers events are only logged.
type Kafka struct {
	Brokers           string        `env:"KAFKA_BROKERS"`
	Topic             string        `env:"KAFKA_TOPIC,default=homestay.application-events"`
	Partitions        int32         `env:"KAFKA_TOPIC_PARTITIONS,default=3"`
	ReplicationFactor int16         `env:"KAFKA_TOPIC_REPLICATION,default=1"`
	RelayInterval     time.Duration `env:"OUTBOX_RELAY_INTERVAL,default=1s"`
	RelayBatchSize    int           `env:"OUTBOX_RELAY_BATCH_SIZE,default=100"`
}

// Auth configures token validation and the payment callback secret.
type Auth struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`
	JWTIssuer     string `env:"JWT_ISSUER,default=homestay-idp"`
	JWTAudience   string `env:"JWT_AUDIENCE,default=homestay-api"`
	GatewayToken  string `env:"PAYMENT_GATEWAY_TOKEN"`
}

// Policy points at the YAML reference data.
type Policy struct {
	File string `env:"HOMESTAY_POLICY_FILE"`
	// SequenceBackend is "postgres", "redis" or "memory"; empty picks the
	// best backend that is configured.
	SequenceBackend string `env:"HOMESTAY_SEQUENCE_BACKEND"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=json"`
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads envFile (if it exists) and decodes the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if cfg.Auth.JWTSigningKey == "" {
		cfg.Auth.JWTSigningKey = devSigningKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsesDevSigningKey reports whether the built-in development key is active.
func (c *Config) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == devSigningKey
}

func (c *Config) Validate() error {
	switch c.Policy.SequenceBackend {
	case "", "memory":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("HOMESTAY_SEQUENCE_BACKEND=postgres requires DATABASE_URL")
		}
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("HOMESTAY_SEQUENCE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown HOMESTAY_SEQUENCE_BACKEND %q", c.Policy.SequenceBackend)
	}
	if len(c.Kafka.BrokerList()) > 0 && c.Database.URL == "" {
		return errors.New("KAFKA_BROKERS requires DATABASE_URL: the outbox lives in Postgres")
	}
	return nil
}

// BrokerList splits the comma separated KAFKA_BROKERS value.
func (k Kafka) BrokerList() []string {
	return textlist.SplitList(k.Brokers)
}
