package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "clnbrd"

// GetClnbrdDir returns the directory holding settings.json.
func GetClnbrdDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(appData, appDirName)
	case "darwin": // MacOS
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", appDirName)
	default: // Linux
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, _ := os.UserHomeDir()
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, appDirName)
	}
}

// Returns directory for state files (database, logs). Only Linux splits it
// from the config directory.
func GetStateDir() string {
	if runtime.GOOS != "linux" {
		return GetClnbrdDir()
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, _ := os.UserHomeDir()
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appDirName)
}

// Returns directory for runtime files such as the instance lock.
func GetRuntimeDir() string {
	if runtime.GOOS == "linux" {
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			return filepath.Join(dir, appDirName)
		}
	}
	return GetStateDir()
}

// Returns directory for logs
func GetLogsDir() string {
	return filepath.Join(GetStateDir(), "logs")
}

// GetDBPath returns the SQLite database path.
func GetDBPath() string {
	return filepath.Join(GetStateDir(), "clnbrd.db")
}

// GetLockPath returns the path of the single-instance lock file.
func GetLockPath() string {
	return filepath.Join(GetRuntimeDir(), "clnbrd.lock")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{GetClnbrdDir(), GetStateDir(), GetLogsDir(), GetRuntimeDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// MigrateOldPaths moves the database and logs out of the config directory
// into the state directory when an older layout is found. It is a no-op
// outside Linux and when the destination already exists.
func MigrateOldPaths() error {
	if runtime.GOOS != "linux" {
		return nil
	}
	oldDir, newDir := GetClnbrdDir(), GetStateDir()
	if oldDir == newDir {
		return nil
	}
	if err := os.MkdirAll(newDir, 0o755); err != nil {
		return err
	}
	for _, name := range []string{"clnbrd.db", "logs"} {
		src := filepath.Join(oldDir, name)
		dst := filepath.Join(newDir, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			return err
		}
	}
	return nil
}
