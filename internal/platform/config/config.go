package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration for the registry server.
type Server struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Deployer        string        `env:"DEPLOYER,required"`
	JWTSigningKey   string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer       string        `env:"JWT_ISSUER"`
	AdminToken      string        `env:"ADMIN_TOKEN"`
	GenesisFile     string        `env:"GENESIS_FILE"`
	LegacyAreaError bool          `env:"LEGACY_AREA_ERROR"`
	RecordTransfers bool          `env:"RECORD_TRANSFERS"`
	TxTimeout       time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Postgres Postgres `envPrefix:"POSTGRES_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Kafka    Kafka    `envPrefix:"KAFKA_"`
	Audit    Audit    `envPrefix:"AUDIT_"`
}

// Postgres is optional; an empty URL selects the in-memory stores.
type Postgres struct {
	URL string `env:"URL"`
}

// Redis holds connection settings for the block-height sequencer.
type Redis struct {
	URL          string        `env:"URL"`
	Key          string        `env:"KEY" envDefault:"registry:block_height"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

type Kafka struct {
	Brokers     []string `env:"BROKERS" envSeparator:","`
	Topic       string   `env:"TOPIC" envDefault:"registry.audit"`
	Partitions  int32    `env:"PARTITIONS" envDefault:"1"`
	Replication int16    `env:"REPLICATION" envDefault:"1"`
}

type Audit struct {
	Buffer int `env:"BUFFER" envDefault:"256"`
}

// FromEnv builds a Server config from REGISTRY_-prefixed environment variables.
func FromEnv() (Server, error) {
	return parse(env.Options{Prefix: "REGISTRY_"})
}

func parse(opts env.Options) (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (s Server) Validate() error {
	if s.JWTSigningKey == "" {
		return errors.New("jwt signing key is required")
	}
	if s.TxTimeout <= 0 {
		return errors.New("tx timeout must be positive")
	}
	if s.Audit.Buffer < 0 {
		return errors.New("audit buffer must not be negative")
	}
	if len(s.Kafka.Brokers) > 0 && s.Kafka.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	return nil
}
