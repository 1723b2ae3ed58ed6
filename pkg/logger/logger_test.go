package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	require.NoError(t, Init(Options{Level: "debug", FilePath: path}))
	Logger().Info("catalog ready")
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"catalog ready"`), line)
	assert.True(t, strings.Contains(line, `"level":"info"`), line)
}

func TestInit_RejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init(Options{Level: "loud"}))
}

func TestLogger_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, Logger())
	assert.NotNil(t, Sugar())
}
