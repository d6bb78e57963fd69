// Package monitoring holds the diagnostic logging hook shared by the engine
// and the simulation driver. The core never writes to stdout directly; it
// goes through Logf so tests and the CLI's -quiet mode can mute it.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Tagged returns a log function that prefixes every message with a
// bracketed tag, e.g. "[scout-2] search complete". Drones log through a
// tagged function carrying their name.
func Tagged(tag string) func(format string, v ...interface{}) {
	prefix := "[" + tag + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
