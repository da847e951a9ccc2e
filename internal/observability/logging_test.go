package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/grievance-service/internal/config"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := map[string]struct {
		level string
		want  zapcore.Level
	}{
		"debug":         {level: "debug", want: zapcore.DebugLevel},
		"upper case":    {level: "WARN", want: zapcore.WarnLevel},
		"unknown level": {level: "chatty", want: zapcore.InfoLevel},
		"empty":         {level: "", want: zapcore.InfoLevel},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			logger, err := NewLogger(config.LoggerConfig{Level: tc.level, Format: "json"})
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tc.want))
			if tc.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tc.want-1))
			}
		})
	}
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "info", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
