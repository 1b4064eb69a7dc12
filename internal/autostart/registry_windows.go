package autostart

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

func defaultLocation(name string) (string, error) {
	return `HKCU\` + runKey + `\` + name, nil
}

// IsEnabled reports whether the Run key has a value for the entry.
func (m *Manager) IsEnabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("opening Run key: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(m.entry.Name)
	switch {
	case err == nil:
		return value != "", nil
	case errors.Is(err, registry.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("reading Run value: %w", err)
	}
}

// Enable stores the command line under the Run key.
func (m *Manager) Enable() error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(m.entry.Name, commandLine(m.entry.Exec)); err != nil {
		return fmt.Errorf("writing Run value: %w", err)
	}
	return nil
}

// Disable deletes the Run value. A missing value is not an error.
func (m *Manager) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(m.entry.Name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("deleting Run value: %w", err)
	}
	return nil
}

func commandLine(exec []string) string {
	args := make([]string, 0, len(exec))
	for _, arg := range exec {
		args = append(args, syscall.EscapeArg(arg))
	}
	return strings.Join(args, " ")
}
