package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls the global zerolog setup.
type Options struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Format is "console" or "json".
	Format string
	// NoColor disables ANSI colors in console output.
	NoColor bool
	// Writer overrides the output destination (defaults to stderr).
	Writer io.Writer
}

// InitDefault sets up a console logger at info level. It is called before
// flags are parsed so that early startup messages look sane; Init replaces
// it once the configuration is known.
func InitDefault() {
	log.Logger = zerolog.New(consoleWriter(os.Stderr, false)).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}

// Init configures the global logger from the given options.
func Init(opts Options) error {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return fmt.Errorf("parsing log level %q: %w", opts.Level, err)
	}

	switch opts.Format {
	case "", "console":
		w = consoleWriter(w, opts.NoColor)
	case "json":
		// zerolog's native output
	default:
		return fmt.Errorf("unknown log format %q", opts.Format)
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return nil
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.Kitchen,
	}
}
