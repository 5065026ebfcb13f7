package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, filepath.Join(home, ".config", "dokkaebi"), GetConfigDir())
	assert.Equal(t, filepath.Join(home, ".dokkaebi"), GetDataDir())
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		path string
		want string
	}{
		{"~", home},
		{"~/logs/debug.log", filepath.Join(home, "logs", "debug.log")},
		{"/var/log/debug.log", "/var/log/debug.log"},
		{"relative/debug.log", "relative/debug.log"},
		{"~other/debug.log", "~other/debug.log"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandHome(tt.path), tt.path)
	}
}
