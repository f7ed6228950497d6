package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-t", "-s", "-d", "-l", "-m", "-mode"}

// parseFlags populates Config fields from command-line flags. args are
// filtered with flagx.FilterArgs first so the -c flag and REPL arguments do
// not trip the parser.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("gophtodo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the remote API")
	revalidate := fs.Int("i", int(cfg.RevalidateInterval.Seconds()), "session re-validation interval (in seconds, 0 disables)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.Storage.Driver, "s", cfg.Storage.Driver, "storage driver")
	fs.StringVar(&cfg.Storage.DSN, "d", cfg.Storage.DSN, "storage DSN")
	fs.StringVar(&cfg.Log.Level, "l", cfg.Log.Level, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.ListMode, "mode", cfg.ListMode, "todo list variant: remote or local")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// only touch durations that were given, so sub-second values from JSON or
	// env survive when the flag is absent
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.RevalidateInterval = time.Duration(*revalidate) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
