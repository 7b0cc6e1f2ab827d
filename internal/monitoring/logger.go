// Package monitoring holds the process-wide diagnostic logger shared by the
// storage and HTTP layers.
package monitoring

import (
	"io"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf;
// tests mute it with SetLogger(nil).
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// WriterLogger returns a Printf-style logger writing timestamped lines
// with the given prefix to w.
func WriterLogger(w io.Writer, prefix string) func(format string, v ...interface{}) {
	l := log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
	return l.Printf
}
