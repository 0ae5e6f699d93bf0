package logger_test

import (
	"testing"

	"wisefido-sleep-diary/internal/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for level, want := range cases {
		for _, format := range []string{"json", "console"} {
			l, err := logger.NewLogger(level, format, "wisefido-sleep-diary")
			require.NoError(t, err)
			require.True(t, l.Core().Enabled(want))
			if want > zapcore.DebugLevel {
				require.False(t, l.Core().Enabled(want-1))
			}
		}
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := logger.NewLogger("verbose", "json", "")
	require.Error(t, err)
}
