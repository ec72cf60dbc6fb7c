package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbu-cost.log")
	prev := Logger
	t.Cleanup(func() { SetLogger(prev) })

	require.NoError(t, Initialize(Config{Level: "debug", Format: "json", Output: path}))
	Named("catalog").Debug("loaded table", zap.String("version", "v1"))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"catalog"`)
	assert.Contains(t, string(data), `"version":"v1"`)
}

func TestInitializeBadLevelFallsBackToInfo(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { SetLogger(prev) })

	require.NoError(t, Initialize(Config{Level: "loud", Format: "console", Output: "stderr"}))
	assert.True(t, Logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Logger.Core().Enabled(zapcore.DebugLevel))
}

func TestSetLoggerWithObserver(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { SetLogger(prev) })

	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))

	Debug("ignored")
	Warn("pricing table served from cache")
	Sugar.Warnf("issues: %d", 2)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "pricing table served from cache", logs.All()[0].Message)
	assert.Equal(t, "issues: 2", logs.All()[1].Message)
}
