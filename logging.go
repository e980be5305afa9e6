package portalbridge

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the bridge logger. Development mode writes human-readable
// output at debug level; production writes JSON at info level. A non-empty
// level overrides either.
func NewLogger(mode Mode, level string) zerolog.Logger {
	return newLogger(os.Stderr, mode, level)
}

func newLogger(out io.Writer, mode Mode, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if mode == ModeDevelopment {
		lvl = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("component", "portal-bridge").Logger()
}
