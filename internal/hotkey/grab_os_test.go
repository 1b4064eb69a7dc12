//go:build !nohotkey && (linux || darwin || windows) && (cgo || windows)

package hotkey

import "testing"

func TestPlatformModifiersComplete(t *testing.T) {
	for _, mod := range []Modifier{ModCtrl, ModAlt, ModShift, ModSuper} {
		if _, ok := platformModifiers[mod]; !ok {
			t.Errorf("Modifier %s has no platform mapping", mod)
		}
	}
	if got := toPlatform([]Modifier{ModCtrl, ModAlt}); len(got) != 2 {
		t.Errorf("Expected 2 platform modifiers, got %d", len(got))
	}
}

func TestPlatformKeysComplete(t *testing.T) {
	for key := range keys {
		if _, ok := platformKeys[key]; !ok {
			t.Errorf("Key %s has no platform mapping", key)
		}
	}
	if len(platformKeys) != len(keys) {
		t.Errorf("Expected %d platform keys, got %d", len(keys), len(platformKeys))
	}
}
