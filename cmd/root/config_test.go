package root

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShowCommand_Empty(t *testing.T) {
	setupHome(t)

	stdout, _, err := execute(t, "config", "show")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "tracking_id")
}

func TestConfigSetGetShow(t *testing.T) {
	setupHome(t)

	stdout, _, err := execute(t, "config", "set", "tracking_id", "UA-12345678-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Set tracking_id")

	_, _, err = execute(t, "config", "set", "app.name", "MyApp")
	require.NoError(t, err)

	stdout, _, err = execute(t, "config", "get", "tracking_id")
	require.NoError(t, err)
	assert.Equal(t, "UA-12345678-1\n", stdout)

	stdout, _, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "version: v1")
	assert.Contains(t, stdout, "tracking_id: UA-12345678-1")
	assert.Contains(t, stdout, "name: MyApp")
}

func TestConfigSet_UnknownKey(t *testing.T) {
	setupHome(t)

	_, stderr, err := execute(t, "config", "set", "colour", "blue")
	require.ErrorContains(t, err, "unknown config key")
	assert.Contains(t, stderr, "tracking_id")
}

func TestConfigPathCommand(t *testing.T) {
	setupHome(t)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	stdout, _, err := execute(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "dokkaebi", "config.yaml")+"\n", stdout)
}
