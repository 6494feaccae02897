// Package voteslog provides the process-wide structured logger used by the
// voting core. Logging happens only at orchestration boundaries
// (initialization, a skipped ballot), never inside pure cryptographic
// routines.
package voteslog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Logger returns the shared zerolog.Logger, constructing it on first use.
func Logger() *zerolog.Logger {
	once.Do(func() {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	})
	return &logger
}
