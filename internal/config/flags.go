package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/pwvault/internal/flagx"
)

var knownFlags = flagx.Known{
	"-d":              true,
	"-e":              true,
	"-l":              true,
	"-confirm-repair": false,
}

// parseFlags overlays cfg with the flags in args. Arguments that belong to
// other components are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("pwvault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the vault database")
	fs.StringVar(&cfg.ExportDir, "e", cfg.ExportDir, "default export directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.ConfirmVerifierRepair, "confirm-repair", cfg.ConfirmVerifierRepair,
		"confirm the password before recreating a missing verifier")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
