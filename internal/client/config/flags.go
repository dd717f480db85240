package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/mediahub/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend base URL
//	-t int      request timeout in seconds
//	-d string   path of the local SQLite database
//	-k string   secret sealing the persisted session
//	-l string   log level
//	-p int      page size
//	-r float    requests per second (0 = unlimited)
//	-b int      request burst
//
// Only the flags listed above are picked out of args, so unrelated
// arguments never make parsing fail.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.Pick(args, "a", "t", "d", "k", "l", "p", "r", "b")

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.StorageSecret, "k", cfg.StorageSecret, "storage secret")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "page size")
	fs.Float64Var(&cfg.RateLimit, "r", cfg.RateLimit, "requests per second")
	fs.IntVar(&cfg.RateBurst, "b", cfg.RateBurst, "request burst")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
