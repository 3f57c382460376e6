package config

import (
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Snapshot sources. "ps" shells out to the ps utility; "procfs" reads the
// kernel process table directly.
const (
	SourcePS     = "ps"
	SourceProcfs = "procfs"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; nothing is required, including
// STREAM_URL, whose absence simply yields an empty target in responses.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Streaming destination echoed verbatim in every health response.
	StreamURL string

	// Process snapshot acquisition
	SnapshotSource  string
	SnapshotTimeout time.Duration

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		StreamURL: os.Getenv("STREAM_URL"),

		SnapshotSource:  getEnv("SNAPSHOT_SOURCE", SourcePS),
		SnapshotTimeout: getDuration("SNAPSHOT_TIMEOUT", 5*time.Second),

		LogLevel: getEnv("LOG_LEVEL", LogLevelInfo),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HTTPPort, validation.Required, is.Port),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(1))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(1))),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(1))),
		validation.Field(&c.SnapshotSource, validation.Required, validation.In(SourcePS, SourceProcfs)),
		validation.Field(&c.SnapshotTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.LogLevel, validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)),
	)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
