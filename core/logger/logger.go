// Package logger defines the logging contract used across the simulator.
// Implementations live under infra/logger so core packages carry no
// logging-library dependency.
package logger

// Logger exposes logging methods for common severity levels. Debugw is the
// structured variant used on high-volume paths.
type Logger interface {
	Debugf(format string, args ...any)
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Nop discards all output. It is the default wherever a nil logger would
// otherwise have to be checked.
type Nop struct{}

func (Nop) Debugf(string, ...any)         {}
func (Nop) Debugw(string, map[string]any) {}
func (Nop) Infof(string, ...any)          {}
func (Nop) Warnf(string, ...any)          {}
func (Nop) Errorf(string, ...any)         {}
