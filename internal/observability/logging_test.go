package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/medops-hub/workorder-service/internal/config"
)

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggerConfig
		level    zapcore.Level
		encoding string
	}{
		{"defaults", config.LoggerConfig{}, zapcore.InfoLevel, "json"},
		{"debug json", config.LoggerConfig{Level: "DEBUG", Format: "json"}, zapcore.DebugLevel, "json"},
		{"console", config.LoggerConfig{Level: "warn", Format: "Console"}, zapcore.WarnLevel, "console"},
		{"bad level", config.LoggerConfig{Level: "loud"}, zapcore.InfoLevel, "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zc := loggerConfig(tt.cfg)
			assert.Equal(t, tt.level, zc.Level.Level())
			assert.Equal(t, tt.encoding, zc.Encoding)
			assert.Equal(t, tt.encoding == "console", zc.Development)
		})
	}
}

func TestNewServiceLogger(t *testing.T) {
	logger, err := NewServiceLogger(config.LoggerConfig{Level: "error"}, config.AppConfig{Name: "workorder-service"})
	assert.NoError(t, err)
	assert.NotNil(t, logger)
}
