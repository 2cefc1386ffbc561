package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Environment variables recognised by the logger factory.
const (
	EnvLogLevel = "XIPRES_LOG_LEVEL"
	EnvJSONLog  = "XIPRES_JSON_LOG"
	EnvLogPath  = "XIPRES_LOG_PATH"
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = defaultOutput()
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"

	// "json:debug" style levels switch on JSON output as well
	if strings.HasPrefix(level, "json") {
		jsonFormat = true
		level = strings.TrimPrefix(strings.TrimPrefix(level, "json"), ":")
		if level == "" {
			level = "info"
		}
	}

	if !jsonFormat {
		output = NewPrefixWriter("💾 ", output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// GetLogLevel returns the configured log level from environment
func GetLogLevel() string {
	level := os.Getenv(EnvLogLevel)
	if level == "" {
		level = "warn"
	}
	return level
}

// OrNull returns logger, or a null logger when logger is nil.
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}

func defaultOutput() io.Writer {
	if logPath := os.Getenv(EnvLogPath); logPath != "" {
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			return file
		}
	}
	return os.Stderr
}
