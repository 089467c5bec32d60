package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand("1.2.3", "abc")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "regkg version 1.2.3 (build: abc)")
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := setupLogger("verbose")
	assert.Error(t, err)

	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := setupLogger(level)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regkg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("artifacts:\n  dir: /tmp/out\n"), 0o644))

	logger, err := setupLogger("info")
	require.NoError(t, err)

	cfg, err := loadConfig(path, logger)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.Artifacts.Dir)
	// Unset fields keep their defaults.
	assert.Equal(t, 2, cfg.Expansion.MaxHops)
}

func TestLoadConfigMissingFile(t *testing.T) {
	logger, err := setupLogger("info")
	require.NoError(t, err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), logger)
	assert.Error(t, err)
}
