// Package logger provides the process-wide execution log. The engine
// logs healing events, retries, and evidence-capture failures here so
// the emitted report can stay structural.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu           sync.Mutex
	globalLogger *log.Logger
	logFile      *os.File
)

// Init initializes the global logger with the specified log file path.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	globalLogger = log.New(f, "", log.Ltime|log.Lmicroseconds)
	return nil
}

// InitWriter initializes the global logger with an arbitrary writer.
// Used by the CLI for --verbose stderr logging and by tests.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = log.New(w, "", log.Ltime|log.Lmicroseconds)
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = nil
}

func logf(level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if globalLogger != nil {
		globalLogger.Printf("["+level+"] "+format, v...)
	}
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) { logf("DEBUG", format, v...) }

// Info logs an info message.
func Info(format string, v ...interface{}) { logf("INFO", format, v...) }

// Warn logs a warning message.
func Warn(format string, v ...interface{}) { logf("WARN", format, v...) }

// Error logs an error message.
func Error(format string, v ...interface{}) { logf("ERROR", format, v...) }
