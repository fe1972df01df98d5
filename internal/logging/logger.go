// Package logging provides the client engine's structured JSON logger,
// a thin wrapper over go-kit/log the way the teacher pack wraps it.
package logging

import (
	"io"

	kitlog "github.com/go-kit/log"
)

// Logger specifies the logging API the engine and its subpackages use.
// Beyond the message itself, callers attach domain context (sequence
// number, status, system_id) as keyvals, alternating key and value.
type Logger interface {
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

var _ Logger = (*logger)(nil)

type logger struct {
	kitLogger kitlog.Logger
}

// New returns a JSON logger writing to out, one line per call.
func New(out io.Writer) Logger {
	l := kitlog.NewJSONLogger(kitlog.NewSyncWriter(out))
	l = kitlog.With(l, "ts", kitlog.DefaultTimestampUTC)
	return &logger{l}
}

func (l *logger) Info(msg string, keyvals ...interface{}) {
	l.log(Info, msg, keyvals...)
}

func (l *logger) Warn(msg string, keyvals ...interface{}) {
	l.log(Warn, msg, keyvals...)
}

func (l *logger) Error(msg string, keyvals ...interface{}) {
	l.log(Error, msg, keyvals...)
}

func (l *logger) log(lvl Level, msg string, keyvals ...interface{}) {
	args := append([]interface{}{"level", lvl.String(), "message", msg}, keyvals...)
	l.kitLogger.Log(args...)
}

// NopLogger discards everything, for tests and hosts that don't want
// engine logs.
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
