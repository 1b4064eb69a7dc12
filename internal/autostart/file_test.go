//go:build !windows

package autostart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	manager, err := New(Entry{
		Name:        "spotify-quick-actions",
		DisplayName: "Spotify Quick Actions",
		Exec:        []string{"/opt/quick actions/quickactions", "--config", "/home/me/config.toml"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return manager
}

func TestManager_EnableDisable(t *testing.T) {
	manager := newTestManager(t)

	if !strings.HasPrefix(manager.Location(), os.Getenv("HOME")) {
		t.Errorf("Entry %s should live under the temporary home", manager.Location())
	}

	enabled, err := manager.IsEnabled()
	if err != nil || enabled {
		t.Fatalf("Expected disabled before Enable, got %v (err %v)", enabled, err)
	}

	if err := manager.Enable(); err != nil {
		t.Fatalf("Enable returned error: %v", err)
	}
	enabled, err = manager.IsEnabled()
	if err != nil || !enabled {
		t.Fatalf("Expected enabled after Enable, got %v (err %v)", enabled, err)
	}

	content, err := os.ReadFile(manager.Location())
	if err != nil {
		t.Fatalf("Reading entry: %v", err)
	}
	if !strings.Contains(string(content), "/home/me/config.toml") {
		t.Errorf("Entry should carry the command arguments:\n%s", content)
	}

	// Enabling twice rewrites the same entry.
	if err := manager.Enable(); err != nil {
		t.Fatalf("Second Enable returned error: %v", err)
	}

	if err := manager.Disable(); err != nil {
		t.Fatalf("Disable returned error: %v", err)
	}
	if _, err := os.Stat(manager.Location()); !os.IsNotExist(err) {
		t.Errorf("Entry file should be removed, stat err = %v", err)
	}
	if err := manager.Disable(); err != nil {
		t.Errorf("Disable should be idempotent, got %v", err)
	}
}

func TestManager_Toggle(t *testing.T) {
	manager := newTestManager(t)

	enabled, err := manager.Toggle()
	if err != nil || !enabled {
		t.Fatalf("First toggle should enable, got %v (err %v)", enabled, err)
	}
	enabled, err = manager.Toggle()
	if err != nil || enabled {
		t.Fatalf("Second toggle should disable, got %v (err %v)", enabled, err)
	}
	if ok, _ := manager.IsEnabled(); ok {
		t.Error("Entry should be disabled after two toggles")
	}
}

func TestManager_EnableFailsOnUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	manager := newTestManager(t)

	parent := filepath.Dir(filepath.Dir(manager.Location()))
	if err := os.MkdirAll(parent, 0o500); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(parent, 0o700) })

	if err := manager.Enable(); err == nil {
		t.Error("Expected Enable to fail in a read-only directory")
	}
}
