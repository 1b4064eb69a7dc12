package hotkey

import "strconv"

// keys is the set of bindable key names: A-Z, 0-9 and F1-F12.
var keys = supportedKeys()

func supportedKeys() map[string]struct{} {
	set := make(map[string]struct{}, 26+10+12)
	for c := 'A'; c <= 'Z'; c++ {
		set[string(c)] = struct{}{}
	}
	for c := '0'; c <= '9'; c++ {
		set[string(c)] = struct{}{}
	}
	for n := 1; n <= 12; n++ {
		set["F"+strconv.Itoa(n)] = struct{}{}
	}
	return set
}
