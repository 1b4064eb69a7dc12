//go:build !nohotkey && cgo

package hotkey

import "golang.design/x/hotkey"

// X11 maps Alt to Mod1 and Super to Mod4 on common layouts.
var platformModifiers = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModAlt:   hotkey.Mod1,
	ModShift: hotkey.ModShift,
	ModSuper: hotkey.Mod4,
}
