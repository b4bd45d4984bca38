package session

import (
	"os"
	"strings"
)

// SaveToken persists the auth token for a session (0600).
func SaveToken(name, token string) error {
	if err := EnsureDir(name); err != nil {
		return err
	}
	return os.WriteFile(TokenPath(name), []byte(token+"\n"), 0600)
}

// LoadToken reads a previously saved token. Missing file yields "".
func LoadToken(name string) string {
	data, err := os.ReadFile(TokenPath(name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearToken removes the persisted token, if any.
func ClearToken(name string) error {
	err := os.Remove(TokenPath(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
