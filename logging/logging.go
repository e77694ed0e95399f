// Package logging builds scenario-scoped zerolog loggers. Each scenario
// instance gets its own logger carrying that instance's identity as
// structured fields, rather than writing through one global logger, so
// concurrent campaign replications never interleave unattributed lines.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the base logger a campaign run writes through, at level
// (e.g. "info", "debug"). An empty level defaults to info.
func New(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ForInstance derives a child logger scoped to one scenario instance,
// tagging every subsequent line with its scenario and occurrence index.
func ForInstance(base zerolog.Logger, scenarioID string, occurrence int) zerolog.Logger {
	return base.With().
		Str("scenario_id", scenarioID).
		Int("occurrence", occurrence).
		Logger()
}
