// Package observability provides structured logging for the pipeline.
package observability

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"
)

// Logger is the structured logging port used by the check pipeline.
type Logger interface {
	LogDebug(ctx context.Context, message string, fields map[string]any)
	LogInfo(ctx context.Context, message string, fields map[string]any)
	LogWarning(ctx context.Context, message string, fields map[string]any)
	LogError(ctx context.Context, message string, fields map[string]any)
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// ParseLevel maps a config string to a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "warning", "warn":
		return LogLevelWarning
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ParseFormat maps a config string to a LogFormat, defaulting to human.
func ParseFormat(s string) LogFormat {
	if strings.ToLower(s) == "json" {
		return LogFormatJSON
	}
	return LogFormatHuman
}

// DefaultLogger writes leveled logs to the standard logger in either
// human-readable or JSON form.
type DefaultLogger struct {
	level  LogLevel
	format LogFormat
	now    func() time.Time
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat) *DefaultLogger {
	return &DefaultLogger{level: level, format: format, now: time.Now}
}

func (l *DefaultLogger) LogDebug(ctx context.Context, message string, fields map[string]any) {
	l.emit(LogLevelDebug, "debug", message, fields)
}

func (l *DefaultLogger) LogInfo(ctx context.Context, message string, fields map[string]any) {
	l.emit(LogLevelInfo, "info", message, fields)
}

func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]any) {
	l.emit(LogLevelWarning, "warning", message, fields)
}

func (l *DefaultLogger) LogError(ctx context.Context, message string, fields map[string]any) {
	l.emit(LogLevelError, "error", message, fields)
}

func (l *DefaultLogger) emit(level LogLevel, levelName, message string, fields map[string]any) {
	if level < l.level {
		return
	}

	if l.format == LogFormatJSON {
		entry := map[string]any{
			"level":     levelName,
			"timestamp": l.now().Format(time.RFC3339),
			"message":   message,
		}
		for k, v := range fields {
			entry[k] = v
		}
		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("[%s] %s %v", strings.ToUpper(levelName), message, fields)
			return
		}
		log.Print(string(data))
		return
	}

	if len(fields) == 0 {
		log.Printf("[%s] %s", strings.ToUpper(levelName), message)
		return
	}
	log.Printf("[%s] %s (%s)", strings.ToUpper(levelName), message, formatFields(fields))
}

// formatFields renders fields as sorted key=value pairs so human output
// is stable across runs.
func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		data, err := json.Marshal(fields[k])
		if err != nil {
			sb.WriteString("?")
			continue
		}
		sb.WriteString(strings.Trim(string(data), `"`))
	}
	return sb.String()
}

// NopLogger discards all log output. Useful as the default when
// logging is disabled.
type NopLogger struct{}

func (NopLogger) LogDebug(ctx context.Context, message string, fields map[string]any)   {}
func (NopLogger) LogInfo(ctx context.Context, message string, fields map[string]any)    {}
func (NopLogger) LogWarning(ctx context.Context, message string, fields map[string]any) {}
func (NopLogger) LogError(ctx context.Context, message string, fields map[string]any)   {}
