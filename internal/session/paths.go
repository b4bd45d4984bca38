package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.pigeon.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pigeon")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// TokenPath returns where the session's auth token is persisted.
func TokenPath(name string) string {
	return filepath.Join(Dir(name), "token")
}

// CacheDBPath returns the session's local message cache database.
func CacheDBPath(name string) string {
	return filepath.Join(Dir(name), "cache.db")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the client log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "pigeon.log")
}

// DaemonDir returns the data directory of the mock backend daemon.
func DaemonDir() string {
	return filepath.Join(BaseDir(), "daemon")
}

// DaemonLogPath returns the daemon log file path.
func DaemonLogPath() string {
	return filepath.Join(DaemonDir(), "pigeond.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
