package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = ".storechat"

// DataDir returns the base data directory. STORECHAT_HOME overrides the
// default of ~/.storechat.
func DataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("STORECHAT_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to config.toml.
func ConfigPath() (string, error) {
	return dataFile("config.toml")
}

// TokenPath returns the path to the stored bearer credential.
func TokenPath() (string, error) {
	return dataFile("token")
}

// DBPath returns the path to the local transcript database.
func DBPath() (string, error) {
	return dataFile("storechat.db")
}

// UILogPath returns the log file used while the TUI owns the terminal.
func UILogPath() (string, error) {
	return dataFile("ui.log")
}

func dataFile(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
