// Package config loads runtime configuration for the gophtodo client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJSON) selected via -c, -config or --config.
//  3. Environment variables prefixed with GOPHTODO_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// The result is checked with (*Config).Validate.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-i int      session re-validation interval (seconds, 0 disables)
//	-t int      per-request timeout (seconds)
//	-s string   storage driver: memory, sqlite, postgres, redis, s3
//	-d string   storage DSN (sqlite file or postgres URL)
//	-l string   log level: debug, info, warn, error
//	-m string   address to serve Prometheus metrics on (empty disables)
//	-mode string  todo list variant: remote or local
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "15s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:4000",
//	  "request_timeout": "15s",
//	  "revalidate_interval": "1m",
//	  "list_mode": "remote",
//	  "storage": {"driver": "sqlite", "dsn": "gophtodo.db"},
//	  "log": {"level": "info", "format": "text"},
//	  "credential": {"persist": true, "passphrase": ""}
//	}
package config
