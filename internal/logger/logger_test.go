package logger_test

import (
	"testing"

	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		logging   config.LoggingConfig
		env       string
		wantLevel zapcore.Level
	}{
		{"development console", config.LoggingConfig{Level: "debug", Format: "console"}, "development", zapcore.DebugLevel},
		{"production forces json", config.LoggingConfig{Level: "warn", Format: "console"}, "production", zapcore.WarnLevel},
		{"invalid level falls back to info", config.LoggingConfig{Level: "loud", Format: "json"}, "staging", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.NewLogger(&tt.logging, &config.AppConfig{Name: "test", Environment: tt.env})
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}
