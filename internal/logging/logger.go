// Package logging holds the module's diagnostic logger.
package logging

import (
	"log"
	"sync/atomic"
)

type logFunc func(format string, v ...any)

var current atomic.Pointer[logFunc]

func init() {
	SetLogger(log.Printf)
}

// Logf writes through the installed logger, log.Printf by default. It is safe
// to call while another goroutine runs SetLogger.
func Logf(format string, v ...any) {
	(*current.Load())(format, v...)
}

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		f = func(string, ...any) {}
	}
	fn := logFunc(f)
	current.Store(&fn)
}
