package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name          string
		opts          Options
		expectedError string
		expectedLvl   zapcore.Level
	}{
		{
			name:        "Console info",
			opts:        Options{Service: "artauction", Level: "info"},
			expectedLvl: zapcore.InfoLevel,
		},
		{
			name:        "JSON warn",
			opts:        Options{Service: "closer", Level: "warn", Format: "json"},
			expectedLvl: zapcore.WarnLevel,
		},
		{
			name:        "Debug without service",
			opts:        Options{Level: "debug", Format: "console"},
			expectedLvl: zapcore.DebugLevel,
		},
		{
			name:          "Invalid level",
			opts:          Options{Level: "invalid"},
			expectedError: "unsupported log lvl: invalid",
		},
		{
			name:          "Invalid format",
			opts:          Options{Level: "info", Format: "xml"},
			expectedError: "unsupported log format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.opts)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.True(t, zap.L().Core().Enabled(tt.expectedLvl))
			if tt.expectedLvl > zapcore.DebugLevel {
				assert.False(t, zap.L().Core().Enabled(tt.expectedLvl-1))
			}
		})
	}
}
