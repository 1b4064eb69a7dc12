//go:build !nohotkey && cgo

package hotkey

import "golang.design/x/hotkey"

var platformModifiers = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModAlt:   hotkey.ModOption,
	ModShift: hotkey.ModShift,
	ModSuper: hotkey.ModCmd,
}
