package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
	"github.com/dmitrijs2005/gophtodo/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// rely on timex.Duration; pointers tell absent fields from zero values.
type jsonConfig struct {
	APIBaseURL         string          `json:"api_base_url"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	RevalidateInterval *timex.Duration `json:"revalidate_interval"`
	ListMode           string          `json:"list_mode"`
	MetricsAddr        string          `json:"metrics_addr"`

	Storage *struct {
		Driver         string `json:"driver"`
		DSN            string `json:"dsn"`
		RedisURL       string `json:"redis_url"`
		RedisNamespace string `json:"redis_namespace"`
		S3             *S3    `json:"s3"`
	} `json:"storage"`

	Log *struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"log"`

	Credential *struct {
		Persist    *bool  `json:"persist"`
		Passphrase string `json:"passphrase"`
	} `json:"credential"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJSON overlays cfg with the file named by -c/-config/--config. No flag
// means nothing to do.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.ListMode, jc.ListMode)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RevalidateInterval != nil {
		cfg.RevalidateInterval = jc.RevalidateInterval.Duration
	}

	if s := jc.Storage; s != nil {
		setString(&cfg.Storage.Driver, s.Driver)
		setString(&cfg.Storage.DSN, s.DSN)
		setString(&cfg.Storage.RedisURL, s.RedisURL)
		setString(&cfg.Storage.RedisNamespace, s.RedisNamespace)
		if s.S3 != nil {
			cfg.Storage.S3 = *s.S3
		}
	}
	if l := jc.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
		setString(&cfg.Log.Format, l.Format)
	}
	if c := jc.Credential; c != nil {
		if c.Persist != nil {
			cfg.Credential.Persist = *c.Persist
		}
		setString(&cfg.Credential.Passphrase, c.Passphrase)
	}
	return nil
}
