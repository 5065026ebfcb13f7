package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// GetConfigDir returns the user's config directory for dokkaebi.
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".dokkaebi-config"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".config", "dokkaebi"))
}

// GetDataDir returns the user's data directory for dokkaebi (logs).
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".dokkaebi"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".dokkaebi"))
}

// ExpandHome replaces a leading "~" with the user's home directory.
// Paths that don't start with "~/" are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
