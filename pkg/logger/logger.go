// Package logger provides leveled, component-scoped logging with optional
// structured fields and a JSON file sink.
package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	levelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	currentLevel = INFO
	sink         *os.File
	mu           sync.RWMutex
)

type entry struct {
	Level     string         `json:"level"`
	Timestamp string         `json:"timestamp"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// ParseLevel maps a config string to a level, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// EnableFileLogging mirrors every entry as a JSON line to filePath.
func EnableFileLogging(filePath string) error {
	mu.Lock()
	defer mu.Unlock()

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if sink != nil {
		sink.Close()
	}
	sink = file
	return nil
}

func DisableFileLogging() {
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		sink.Close()
		sink = nil
	}
}

func logMessage(level LogLevel, component, message string, fields map[string]any) {
	mu.RLock()
	min := currentLevel
	file := sink
	mu.RUnlock()

	if level < min {
		return
	}

	e := entry{
		Level:     levelNames[level],
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Component: component,
		Message:   message,
		Fields:    fields,
	}

	if file != nil {
		if data, err := json.Marshal(e); err == nil {
			file.Write(append(data, '\n'))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s]", e.Timestamp, e.Level)
	if component != "" {
		fmt.Fprintf(&b, " %s:", component)
	}
	b.WriteByte(' ')
	b.WriteString(message)
	if len(fields) > 0 {
		b.WriteByte(' ')
		b.WriteString(formatFields(fields))
	}
	log.Println(b.String())

	if level == FATAL {
		os.Exit(1)
	}
}

// formatFields renders fields sorted by key so console lines are stable.
func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func Debug(message string)                    { logMessage(DEBUG, "", message, nil) }
func DebugC(component, message string)        { logMessage(DEBUG, component, message, nil) }
func DebugF(message string, f map[string]any) { logMessage(DEBUG, "", message, f) }
func DebugCF(component, message string, f map[string]any) {
	logMessage(DEBUG, component, message, f)
}

func Info(message string)                    { logMessage(INFO, "", message, nil) }
func InfoC(component, message string)        { logMessage(INFO, component, message, nil) }
func InfoF(message string, f map[string]any) { logMessage(INFO, "", message, f) }
func InfoCF(component, message string, f map[string]any) {
	logMessage(INFO, component, message, f)
}

func Warn(message string)                    { logMessage(WARN, "", message, nil) }
func WarnC(component, message string)        { logMessage(WARN, component, message, nil) }
func WarnF(message string, f map[string]any) { logMessage(WARN, "", message, f) }
func WarnCF(component, message string, f map[string]any) {
	logMessage(WARN, component, message, f)
}

func Error(message string)                    { logMessage(ERROR, "", message, nil) }
func ErrorC(component, message string)        { logMessage(ERROR, component, message, nil) }
func ErrorF(message string, f map[string]any) { logMessage(ERROR, "", message, f) }
func ErrorCF(component, message string, f map[string]any) {
	logMessage(ERROR, component, message, f)
}

func Fatal(message string)             { logMessage(FATAL, "", message, nil) }
func FatalC(component, message string) { logMessage(FATAL, component, message, nil) }
