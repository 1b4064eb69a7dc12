package autostart

import (
	"errors"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"No name", Entry{Exec: []string{"/usr/bin/quickactions"}}, ErrNoName},
		{"Blank name", Entry{Name: "  ", Exec: []string{"/usr/bin/quickactions"}}, ErrNoName},
		{"No command", Entry{Name: "quickactions"}, ErrNoCommand},
		{"Empty program", Entry{Name: "quickactions", Exec: []string{""}}, ErrNoCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.entry); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_DisplayNameDefaultsToName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	manager, err := New(Entry{Name: "spotify-quick-actions", Exec: []string{"/usr/bin/quickactions"}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if manager.entry.DisplayName != "spotify-quick-actions" {
		t.Errorf("Expected display name to default to the entry name, got %q", manager.entry.DisplayName)
	}
	if manager.Location() == "" {
		t.Error("Location should not be empty")
	}
}
