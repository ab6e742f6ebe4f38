package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	EligibilityHTTP   = "http"
	EligibilityRandom = "random"
	EligibilityAllow  = "allow"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	Postgres      Postgres
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"assembly.db"`

	SweepInterval          time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
	SweepTimeout           time.Duration `env:"SWEEP_TIMEOUT" envDefault:"10s"`
	SessionDefaultDuration time.Duration `env:"SESSION_DEFAULT_DURATION" envDefault:"1m"`

	EligibilityMode      string        `env:"ELIGIBILITY_MODE" envDefault:"random"`
	EligibilityURL       string        `env:"ELIGIBILITY_URL"`
	EligibilityTimeout   time.Duration `env:"ELIGIBILITY_TIMEOUT" envDefault:"3s"`
	EligibilityAbleRatio float64       `env:"ELIGIBILITY_ABLE_RATIO" envDefault:"0.7"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

type Postgres struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	DB       string `env:"POSTGRES_DB"`
}

func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DB)
}

// LoadDotEnv reads .env into the process environment when the file exists.
// Variables already set are not overridden.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads .env, then the environment, and validates the result.
func Load() (Config, error) {
	if err := LoadDotEnv(); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.EligibilityMode {
	case EligibilityHTTP:
		if c.EligibilityURL == "" {
			return errors.New("ELIGIBILITY_URL is required when ELIGIBILITY_MODE=http")
		}
	case EligibilityRandom:
		if c.EligibilityAbleRatio < 0 || c.EligibilityAbleRatio > 1 {
			return fmt.Errorf("ELIGIBILITY_ABLE_RATIO must be within [0, 1], got %v", c.EligibilityAbleRatio)
		}
	case EligibilityAllow:
	default:
		return fmt.Errorf("unknown ELIGIBILITY_MODE %q", c.EligibilityMode)
	}
	if c.SweepInterval <= 0 || c.SweepTimeout <= 0 {
		return errors.New("SWEEP_INTERVAL and SWEEP_TIMEOUT must be positive")
	}
	return nil
}
