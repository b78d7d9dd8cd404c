// Package logging builds the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w. format is "console" for human-readable
// output or "json" for one JSON object per line.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch format {
	case "console", "":
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "2006-01-02 15:04:05",
		}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (want console or json)", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
