package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Global logger instance
var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// InitGlobalLogger initializes the global logger instance.
// format "json" writes JSON lines; anything else writes human-readable console output.
func InitGlobalLogger(level LogLevel, format string, output io.Writer) *Logger {
	if output == nil {
		output = os.Stderr
	}

	var logger *Logger
	if format == "json" {
		logger = NewLogger(level, output)
	} else {
		logger = NewLogger(level, zerolog.ConsoleWriter{Out: output})
	}

	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return logger
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		// Initialize with default settings if not already initialized
		globalLogger = NewLogger(InfoLevel, os.Stderr)
	}
	return globalLogger
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	GetGlobalLogger().logger.Info().Msg(fmt.Sprintf(format, args...))
}

// WithModule creates a logger with module field
func WithModule(module string) *zerolog.Logger {
	return GetGlobalLogger().WithModule(module)
}

// WithError creates a logger with error field
func WithError(err error) *zerolog.Logger {
	logger := GetGlobalLogger().logger.With().Err(err).Logger()
	return &logger
}
