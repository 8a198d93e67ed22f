package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsondiff/internal/config"
	apperrors "github.com/mcncl/jsondiff/internal/errors"
	"github.com/mcncl/jsondiff/internal/models"
)

// resetCLI restores the package-level CLI state after a test mutates it.
func resetCLI(t *testing.T) {
	t.Helper()
	saved := CLI
	t.Cleanup(func() { CLI = saved })
	CLI.Left = ""
	CLI.Right = ""
	CLI.IgnoreKeyOrder = false
	CLI.IgnoreArrayOrder = false
	CLI.MaxDiffs = models.DefaultMaxDiffs
	CLI.JSON = false
	CLI.Quiet = true
	CLI.Timeout = 0
	CLI.Config = ""
}

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func quietConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Progress.Enabled = false
	return cfg
}

func TestRun_IdenticalDocuments(t *testing.T) {
	resetCLI(t)
	CLI.Left = writeTempJSON(t, "left.json", `{"a": 1, "b": [true, null]}`)
	CLI.Right = writeTempJSON(t, "right.json", `{"a": 1, "b": [true, null]}`)

	identical, err := run(quietConfig())
	require.NoError(t, err)
	assert.True(t, identical)
}

func TestRun_DifferentDocuments(t *testing.T) {
	resetCLI(t)
	CLI.Left = writeTempJSON(t, "left.json", `{"a": 1}`)
	CLI.Right = writeTempJSON(t, "right.json", `{"a": 2}`)

	identical, err := run(quietConfig())
	require.NoError(t, err)
	assert.False(t, identical)
}

func TestRun_KeyOrderDoesNotMatter(t *testing.T) {
	resetCLI(t)
	CLI.Left = writeTempJSON(t, "left.json", `{"a": 1, "b": 2}`)
	CLI.Right = writeTempJSON(t, "right.json", `{"b": 2, "a": 1}`)

	identical, err := run(quietConfig())
	require.NoError(t, err)
	assert.True(t, identical)
}

func TestRun_InvalidJSON(t *testing.T) {
	resetCLI(t)
	CLI.Left = writeTempJSON(t, "left.json", `{"a":}`)
	CLI.Right = writeTempJSON(t, "right.json", `{}`)

	_, err := run(quietConfig())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeOutput, appErr.Type)
}

func TestRun_MissingFile(t *testing.T) {
	resetCLI(t)
	CLI.Left = filepath.Join(t.TempDir(), "absent.json")
	CLI.Right = writeTempJSON(t, "right.json", `{}`)

	_, err := run(quietConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestLoadConfig_CLIOverrides(t *testing.T) {
	resetCLI(t)
	CLI.Config = writeTempJSON(t, ".jsondiff.yml", "compare:\n  max_diffs: 10\noutput:\n  format: text\n")
	CLI.IgnoreArrayOrder = true
	CLI.JSON = true

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Compare.IgnoreArrayOrder)
	assert.Equal(t, uint32(10), cfg.Compare.MaxDiffs, "file value survives when the flag is at its default")
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoadConfig_FlagBeatsFile(t *testing.T) {
	resetCLI(t)
	CLI.Config = writeTempJSON(t, ".jsondiff.yml", "compare:\n  max_diffs: 10\n")
	CLI.MaxDiffs = 3

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), cfg.Compare.MaxDiffs)
}

func TestLoadConfig_BadFile(t *testing.T) {
	resetCLI(t)
	CLI.Config = writeTempJSON(t, ".jsondiff.yml", "output:\n  format: xml\n")

	_, err := loadConfig()
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeConfig, appErr.Type)
}
