package utils

import (
	"os"
	"path/filepath"
)

const DataDirEnv = "CARDSHEET_DATA_DIR"

// GetDefaultDataDir returns where offset profiles live: $CARDSHEET_DATA_DIR,
// then the user config dir, then ./data.
func GetDefaultDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return dir
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		// If we can't resolve a config dir, fall back to a local directory
		return "data"
	}
	return filepath.Join(configDir, "cardsheet")
}
