package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_LevelIsCaseInsensitive(t *testing.T) {
	l := New()
	path := filepath.Join(t.TempDir(), "client.log")

	require.NoError(t, l.Init("Info", path))
	l.Log.Debug("hidden")
	l.Log.Info("visible", zap.String("k", "v"))
	_ = l.Log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
	assert.NotContains(t, string(data), "hidden")
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	assert.Error(t, l.Init("loud"))
	assert.NotNil(t, l.Log)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	zl := zap.NewExample()
	assert.Same(t, zl, OrNop(zl))
}
