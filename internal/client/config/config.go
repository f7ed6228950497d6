package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

const (
	ListModeRemote = "remote"
	ListModeLocal  = "local"

	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"

	EnvPrefix = "GOPHTODO_"
)

// Config holds runtime settings for the client.
type Config struct {
	APIBaseURL         string        `env:"API_BASE_URL, overwrite" validate:"required,url"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT, overwrite" validate:"gt=0"`
	RevalidateInterval time.Duration `env:"REVALIDATE_INTERVAL, overwrite" validate:"gte=0"`
	ListMode           string        `env:"LIST_MODE, overwrite" validate:"oneof=remote local"`
	MetricsAddr        string        `env:"METRICS_ADDR, overwrite" validate:"omitempty,hostname_port"`

	Storage    Storage    `env:", prefix=STORAGE_"`
	Log        Log        `env:", prefix=LOG_"`
	Credential Credential `env:", prefix=CREDENTIAL_"`
}

// Storage selects the key/value backend for the credential and local list.
type Storage struct {
	Driver         string `env:"DRIVER, overwrite" validate:"oneof=memory sqlite postgres redis s3"`
	DSN            string `env:"DSN, overwrite" validate:"required_if=Driver sqlite,required_if=Driver postgres"`
	RedisURL       string `env:"REDIS_URL, overwrite" validate:"required_if=Driver redis"`
	RedisNamespace string `env:"REDIS_NAMESPACE, overwrite"`
	S3             S3     `env:", prefix=S3_"`
}

type S3 struct {
	Bucket    string `json:"bucket" env:"BUCKET, overwrite"`
	Prefix    string `json:"prefix" env:"PREFIX, overwrite"`
	Region    string `json:"region" env:"REGION, overwrite"`
	Endpoint  string `json:"endpoint" env:"ENDPOINT, overwrite" validate:"omitempty,url"`
	AccessKey string `json:"access_key" env:"ACCESS_KEY, overwrite"`
	SecretKey string `json:"secret_key" env:"SECRET_KEY, overwrite"`
}

type Log struct {
	Level  string `env:"LEVEL, overwrite" validate:"oneof=debug info warn error"`
	Format string `env:"FORMAT, overwrite" validate:"oneof=text json pretty zerolog"`
}

// Credential controls whether the bearer credential outlives the process and
// whether it is sealed at rest.
type Credential struct {
	Persist    bool   `env:"PERSIST, overwrite"`
	Passphrase string `env:"PASSPHRASE, overwrite"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:4000"
	c.RequestTimeout = 15 * time.Second
	c.RevalidateInterval = time.Minute
	c.ListMode = ListModeRemote
	c.MetricsAddr = ""

	c.Storage = Storage{Driver: DriverSQLite, DSN: "gophtodo.db", RedisNamespace: "gophtodo"}
	c.Log = Log{Level: "info", Format: "text"}
	c.Credential = Credential{Persist: true}
}

var ErrS3BucketRequired = errors.New("storage.s3.bucket is required for the s3 driver")

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Storage.Driver == DriverS3 && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("invalid config: %w", ErrS3BucketRequired)
	}
	return nil
}

// Load builds a Config from defaults, the JSON file named in args, the
// environment seen through lookup (nil means the process environment) and
// finally the flags in args. args excludes the program name.
func Load(ctx context.Context, args []string, lookup envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(ctx, cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseEnv overlays GOPHTODO_* variables.
func parseEnv(ctx context.Context, cfg *Config, lookup envconfig.Lookuper) error {
	if lookup == nil {
		lookup = envconfig.OsLookuper()
	}
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookup),
	})
	if err != nil {
		return fmt.Errorf("env config: %w", err)
	}
	return nil
}
