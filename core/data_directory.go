package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the application name used in data directory paths.
const AppName = "PanelConfig"

// unixDataDir is the dot directory used on Linux and macOS.
const unixDataDir = ".panelcfg"

// GetDataDirectory returns the platform-specific data directory, which holds
// the default catalog database and log file.
//
// Paths by platform:
//   - Windows: %APPDATA%/PanelConfig
//   - Linux/macOS: ~/.panelcfg
//
// Does NOT create the directory - callers should use EnsureDataDirectory for that.
func GetDataDirectory() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return AppName
			}
			return filepath.Join(home, "AppData", "Roaming", AppName)
		}
		return filepath.Join(appData, AppName)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return unixDataDir
		}
		return filepath.Join(home, unixDataDir)
	}
}

// GetDataFilePath returns the full path for a file within the data directory.
// Example: GetDataFilePath("catalog.db") -> "/home/user/.panelcfg/catalog.db"
func GetDataFilePath(filename string) string {
	return filepath.Join(GetDataDirectory(), filename)
}

// EnsureDataDirectory creates the data directory if it doesn't exist.
func EnsureDataDirectory() (string, error) {
	dir := GetDataDirectory()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
