//go:build !nohotkey && (linux || darwin || windows) && (cgo || windows)

package hotkey

import "golang.design/x/hotkey"

var platformKeys = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"F1": hotkey.KeyF1, "F2": hotkey.KeyF2, "F3": hotkey.KeyF3, "F4": hotkey.KeyF4,
	"F5": hotkey.KeyF5, "F6": hotkey.KeyF6, "F7": hotkey.KeyF7, "F8": hotkey.KeyF8,
	"F9": hotkey.KeyF9, "F10": hotkey.KeyF10, "F11": hotkey.KeyF11, "F12": hotkey.KeyF12,
}

// grabOS registers binding with the window system. Keydowns are forwarded
// until release is called.
func grabOS(binding Binding) (<-chan struct{}, func() error, error) {
	hk := hotkey.New(toPlatform(binding.Modifiers), platformKeys[binding.Key])
	if err := hk.Register(); err != nil {
		return nil, nil, err
	}

	keydowns := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(keydowns)
		events := hk.Keydown()
		for {
			select {
			case <-done:
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case keydowns <- struct{}{}:
				case <-done:
					return
				}
			}
		}
	}()

	release := func() error {
		close(done)
		return hk.Unregister()
	}
	return keydowns, release, nil
}

func toPlatform(modifiers []Modifier) []hotkey.Modifier {
	mods := make([]hotkey.Modifier, 0, len(modifiers))
	for _, mod := range modifiers {
		mods = append(mods, platformModifiers[mod])
	}
	return mods
}
