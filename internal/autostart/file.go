//go:build !windows

package autostart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// IsEnabled reports whether the entry file exists.
func (m *Manager) IsEnabled() (bool, error) {
	_, err := os.Stat(m.location)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking autostart entry: %w", err)
	}
}

// Enable writes the entry file, replacing an older one.
func (m *Manager) Enable() error {
	content, err := render(m.entry)
	if err != nil {
		return fmt.Errorf("rendering autostart entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.location), 0o755); err != nil {
		return fmt.Errorf("creating autostart directory: %w", err)
	}
	if err := os.WriteFile(m.location, content, 0o644); err != nil {
		return fmt.Errorf("writing autostart entry: %w", err)
	}
	return nil
}

// Disable removes the entry file. A missing file is not an error.
func (m *Manager) Disable() error {
	if err := os.Remove(m.location); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing autostart entry: %w", err)
	}
	return nil
}
