package logger

import corelogger "github.com/ankit-iitb/sandstorm-simulator/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// Nop mirrors the core no-op logger.
type Nop = corelogger.Nop

// New returns a Logger for the given component. Output format and
// verbosity are picked up from the APP_ENV and LOG_LEVEL variables.
func New(component string) Logger {
	return NewZerologLogger(component)
}
