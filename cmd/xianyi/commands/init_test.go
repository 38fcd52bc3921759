package commands

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whxxx2005-coder/xianyi/internal/config"
	"github.com/whxxx2005-coder/xianyi/internal/settings"
)

// useTempWorkdir runs the test inside a fresh directory so the commands'
// relative default paths land there.
func useTempWorkdir(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		os.Chdir(old)
		configPath = config.DefaultFileName
		forceInit = false
	})
	configPath = config.DefaultFileName
	forceInit = false
}

func TestInitCreatesDeviceLayout(t *testing.T) {
	useTempWorkdir(t)

	require.NoError(t, runInit(initCmd, nil))

	assert.FileExists(t, "xianyi.yml")
	assert.DirExists(t, "data")
	assert.DirExists(t, "bundled/assets/images")
	assert.DirExists(t, "bundled/assets/audio")

	// The generated config must load and validate.
	cfg, err := config.Load("xianyi.yml")
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.Device.DataDir)
	assert.False(t, cfg.SyncEnabled())
}

func TestInitRefusesToOverwrite(t *testing.T) {
	useTempWorkdir(t)

	require.NoError(t, runInit(initCmd, nil))
	assert.Error(t, runInit(initCmd, nil))

	forceInit = true
	assert.NoError(t, runInit(initCmd, nil))
}

func TestSyncCodeCommand(t *testing.T) {
	useTempWorkdir(t)
	require.NoError(t, runInit(initCmd, nil))

	// Showing the code before one is set must not fail.
	require.NoError(t, runSyncCode(syncCodeCmd, nil))

	require.NoError(t, runSyncCode(syncCodeCmd, []string{"family-2026"}))

	code, err := settings.NewManager("./data").SyncCode()
	require.NoError(t, err)
	assert.Equal(t, "family-2026", code)
}
