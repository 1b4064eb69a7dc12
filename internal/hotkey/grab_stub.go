//go:build nohotkey || !(linux || darwin || windows) || (!cgo && !windows)

package hotkey

// grabOS is used by builds without a window-system hotkey backend, such as
// `-tags nohotkey` or CGO_ENABLED=0 on Linux and macOS.
func grabOS(Binding) (<-chan struct{}, func() error, error) {
	return nil, nil, ErrUnavailable
}
