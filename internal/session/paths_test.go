package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("main")
	want := filepath.Join(home, ".pigeon", "sessions", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestTokenPath(t *testing.T) {
	got := TokenPath("test")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "token")) {
		t.Errorf("TokenPath(test) = %q, want suffix sessions/test/token", got)
	}
}

func TestCacheDBPath(t *testing.T) {
	got := CacheDBPath("test")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "cache.db")) {
		t.Errorf("CacheDBPath(test) = %q, want suffix sessions/test/cache.db", got)
	}
}

func TestEnsureDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := EnsureDir("test"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(Dir("test"))
	if err != nil {
		t.Fatalf("session dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("session dir is not a directory")
	}
	if _, err := os.Stat(LogDir("test")); err != nil {
		t.Errorf("log dir not created: %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := SaveToken("test", "jwt-abc"); err != nil {
		t.Fatal(err)
	}
	if got := LoadToken("test"); got != "jwt-abc" {
		t.Errorf("LoadToken = %q, want jwt-abc", got)
	}

	info, err := os.Stat(TokenPath("test"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token permission = %o, want 0600", perm)
	}

	if err := ClearToken("test"); err != nil {
		t.Fatal(err)
	}
	if got := LoadToken("test"); got != "" {
		t.Errorf("LoadToken after clear = %q, want empty", got)
	}
	// Clearing twice is fine.
	if err := ClearToken("test"); err != nil {
		t.Fatal(err)
	}
}
