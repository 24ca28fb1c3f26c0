// Package logger builds the zerolog logger used by the command line.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	// Level is one of trace, debug, info, warn, error or disabled. Empty
	// means info.
	Level string
	// Pretty enables human readable console output.
	Pretty bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger configured by cfg. Unknown levels are an error.
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "godm").
		Logger(), nil
}
