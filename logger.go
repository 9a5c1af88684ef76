package adminapi

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured logging surface the client needs.
// Arguments after the message are alternating key/value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(log zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{log: log}
}

// NewDefaultLogger returns a timestamped zerolog logger writing to stderr.
func NewDefaultLogger() *ZerologLogger {
	return &ZerologLogger{log: zerolog.New(os.Stderr).With().Timestamp().Logger()}
}

func (l *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	l.emit(l.log.Debug(), msg, keysAndValues)
}

func (l *ZerologLogger) Info(msg string, keysAndValues ...any) {
	l.emit(l.log.Info(), msg, keysAndValues)
}

func (l *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	l.emit(l.log.Warn(), msg, keysAndValues)
}

func (l *ZerologLogger) Error(msg string, keysAndValues ...any) {
	l.emit(l.log.Error(), msg, keysAndValues)
}

func (l *ZerologLogger) emit(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}
