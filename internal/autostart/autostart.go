// Package autostart registers the application to start when the user logs in.
package autostart

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoName is returned for an entry without a name.
	ErrNoName = errors.New("autostart entry has no name")
	// ErrNoCommand is returned for an entry without a command.
	ErrNoCommand = errors.New("autostart entry has no command")
)

// Entry describes what starts at login.
type Entry struct {
	// Name identifies the entry: the file name or registry value.
	Name string
	// DisplayName is shown by session managers that list login items.
	DisplayName string
	// Exec is the program followed by its arguments.
	Exec []string
}

// Manager enables and disables one login entry for the current user.
// Linux and other Unix desktops use an XDG autostart .desktop file, macOS a
// LaunchAgent plist and Windows the HKCU Run key.
type Manager struct {
	entry    Entry
	location string
}

// New validates entry and resolves its platform location.
func New(entry Entry) (*Manager, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return nil, ErrNoName
	}
	if len(entry.Exec) == 0 || entry.Exec[0] == "" {
		return nil, ErrNoCommand
	}
	if entry.DisplayName == "" {
		entry.DisplayName = entry.Name
	}

	location, err := defaultLocation(entry.Name)
	if err != nil {
		return nil, fmt.Errorf("locating autostart entry: %w", err)
	}
	return &Manager{entry: entry, location: location}, nil
}

// Location names where the entry lives (a file path or a registry value).
func (m *Manager) Location() string {
	return m.location
}

// Toggle flips the entry and returns the new state.
func (m *Manager) Toggle() (bool, error) {
	enabled, err := m.IsEnabled()
	if err != nil {
		return false, err
	}
	if enabled {
		return false, m.Disable()
	}
	return true, m.Enable()
}
