// Package hotkey registers the global keyboard shortcuts that trigger actions.
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Modifier is a platform-independent modifier key.
type Modifier int

const (
	ModCtrl Modifier = iota
	ModAlt
	ModShift
	ModSuper
)

func (m Modifier) String() string {
	switch m {
	case ModCtrl:
		return "Ctrl"
	case ModAlt:
		return "Alt"
	case ModShift:
		return "Shift"
	case ModSuper:
		return "Super"
	default:
		return fmt.Sprintf("Modifier(%d)", int(m))
	}
}

var (
	// ErrEmptyBinding is returned for a blank shortcut.
	ErrEmptyBinding = errors.New("empty hotkey")
	// ErrUnknownKey is returned when a part is neither a modifier nor a supported key.
	ErrUnknownKey = errors.New("unknown key")
	// ErrMultipleKeys is returned when a shortcut names more than one non-modifier key.
	ErrMultipleKeys = errors.New("hotkey has more than one key")
	// ErrNoKey is returned when a shortcut has only modifiers.
	ErrNoKey = errors.New("hotkey has no key")
	// ErrNoModifier is returned for a letter or digit without any modifier.
	ErrNoModifier = errors.New("hotkey needs at least one modifier")
)

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"win":     ModSuper,
	"meta":    ModSuper,
}

// Binding is a parsed shortcut such as Ctrl+Alt+L.
type Binding struct {
	Modifiers []Modifier
	Key       string
}

// Parse reads a shortcut like "Ctrl+Alt+L". Parts are case-insensitive;
// keys are A-Z, 0-9 and F1-F12.
func Parse(combo string) (Binding, error) {
	if strings.TrimSpace(combo) == "" {
		return Binding{}, ErrEmptyBinding
	}

	var binding Binding
	seen := make(map[Modifier]bool)

	for _, part := range strings.Split(combo, "+") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			return Binding{}, fmt.Errorf("%w in %q", ErrUnknownKey, combo)
		}

		if mod, ok := modifierAliases[name]; ok {
			if !seen[mod] {
				seen[mod] = true
				binding.Modifiers = append(binding.Modifiers, mod)
			}
			continue
		}

		key := strings.ToUpper(name)
		if !isSupportedKey(key) {
			return Binding{}, fmt.Errorf("%w %q in %q", ErrUnknownKey, part, combo)
		}
		if binding.Key != "" {
			return Binding{}, fmt.Errorf("%w: %q", ErrMultipleKeys, combo)
		}
		binding.Key = key
	}

	if binding.Key == "" {
		return Binding{}, fmt.Errorf("%w: %q", ErrNoKey, combo)
	}
	if len(binding.Modifiers) == 0 && !isFunctionKey(binding.Key) {
		return Binding{}, fmt.Errorf("%w: %q", ErrNoModifier, combo)
	}

	sort.Slice(binding.Modifiers, func(i, j int) bool {
		return binding.Modifiers[i] < binding.Modifiers[j]
	})
	return binding, nil
}

// String renders the canonical form, e.g. "Ctrl+Alt+L".
func (b Binding) String() string {
	parts := make([]string, 0, len(b.Modifiers)+1)
	for _, mod := range b.Modifiers {
		parts = append(parts, mod.String())
	}
	return strings.Join(append(parts, b.Key), "+")
}

func isSupportedKey(key string) bool {
	_, ok := keys[key]
	return ok
}

func isFunctionKey(key string) bool {
	return len(key) > 1 && key[0] == 'F'
}
