package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger provides structured JSON logging with credential redaction.
// Both provider APIs authenticate via tokens carried in request bodies,
// so any field that looks like a credential is masked before emission.
type Logger struct {
	level   Level
	mu      sync.Mutex
	redact  bool
}

var defaultLogger = &Logger{level: INFO, redact: true}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(l Level) { defaultLogger.level = l }

// SetRedactCredentials enables or disables credential redaction.
func SetRedactCredentials(r bool) { defaultLogger.redact = r }

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	entry := map[string]interface{}{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}

	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redact {
			val = redactValue(key, val)
		}
		entry[key] = val
	}

	data, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(os.Stderr, string(data))
	l.mu.Unlock()
}

var credentialKeys = []string{"token", "secret", "app_key", "api_key", "password", "cnpj"}

func redactValue(key, val string) string {
	lower := strings.ToLower(key)
	for _, k := range credentialKeys {
		if strings.Contains(lower, k) {
			return Mask(val)
		}
	}
	return val
}

// Mask hides all but the first two characters of a credential.
// "abc123def" → "ab***". Values of 4 chars or fewer are fully masked.
func Mask(s string) string {
	if len(s) <= 4 {
		return "***"
	}
	return s[:2] + "***"
}
