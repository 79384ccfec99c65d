package common

import (
	"context"
	"encoding/json"
	"log"
)

// OperationLogger is the logging surface handlers see. The concrete
// logger travels in the context so handlers stay free of globals.
type OperationLogger interface {
	Info(message string, metadata map[string]interface{})
	Warn(message string, metadata map[string]interface{})
	Error(message string, metadata map[string]interface{})
}

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger OperationLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from the context, falling back
// to the standard logger so warnings are never silently dropped
func LoggerFromContext(ctx context.Context) OperationLogger {
	if logger, ok := ctx.Value(loggerKey).(OperationLogger); ok {
		return logger
	}
	return &StdLogger{}
}

// StdLogger writes through the standard library logger
type StdLogger struct{}

func (l *StdLogger) Info(message string, metadata map[string]interface{}) {
	l.log("INFO", message, metadata)
}

func (l *StdLogger) Warn(message string, metadata map[string]interface{}) {
	l.log("WARN", message, metadata)
}

func (l *StdLogger) Error(message string, metadata map[string]interface{}) {
	l.log("ERROR", message, metadata)
}

func (l *StdLogger) log(level, message string, metadata map[string]interface{}) {
	if len(metadata) == 0 {
		log.Printf("[%s] %s", level, message)
		return
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("[%s] %s", level, message)
		return
	}
	log.Printf("[%s] %s %s", level, message, encoded)
}

// NopLogger discards everything; used in tests
type NopLogger struct{}

func (l *NopLogger) Info(message string, metadata map[string]interface{}) {}

func (l *NopLogger) Warn(message string, metadata map[string]interface{}) {}

func (l *NopLogger) Error(message string, metadata map[string]interface{}) {}
