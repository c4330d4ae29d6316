package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursorq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: cursor-fast\nmode: acceptEdits\n"), 0o644))

	config, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cursor-fast", config.Model)
	assert.Equal(t, "acceptEdits", config.Mode)
	assert.Empty(t, config.CLIPath)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	config, err := loadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, config)
}

func TestLoadConfigFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursorq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))

	_, err := loadConfigFile(path)
	assert.Error(t, err)
}
