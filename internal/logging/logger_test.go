package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{" INFO ", LevelInfo},
		{"error", LevelError},
		{"warn", LevelWarn},
		{"", LevelWarn},
		{"verbose", LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")

	logger, err := New(Options{Level: LevelInfo, JSON: true, OutputPaths: []string{out}})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("generated", zap.String("run_id", "r1"), zap.String("file", "user.avsc"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)
	assert.NotContains(t, text, "hidden")
	assert.Contains(t, text, `"msg":"generated"`)
	assert.Contains(t, text, `"run_id":"r1"`)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(text), "\n")+1)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
