package shared

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a console logger on stderr
func SetupLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// SetupLoggerWithLevel configures a console logger at a named level.
// Unknown level names fall back to info; debug wins over the name.
func SetupLoggerWithLevel(level string, debug bool) *log.Logger {
	logger := SetupLogger(debug)
	if debug {
		return logger
	}
	if parsed, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
	return logger
}
