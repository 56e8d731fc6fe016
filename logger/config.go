package logger

import (
	"go.uber.org/zap/zapcore"
)

// Config selects how log lines are encoded and which are kept.
type Config struct {
	// Format is one of auto, logfmt, json or console.
	Format string        `toml:"format"`
	Level  zapcore.Level `toml:"level"`
}

// NewConfig returns a new instance of Config with defaults.
func NewConfig() Config {
	return Config{
		Format: "auto",
		Level:  zapcore.InfoLevel,
	}
}
