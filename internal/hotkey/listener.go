package hotkey

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quickactions/internal/core"
)

var (
	// ErrDuplicateBinding is returned when two actions share a shortcut.
	ErrDuplicateBinding = errors.New("hotkey already bound")
	// ErrUnavailable is returned by Run when the binary has no hotkey backend.
	ErrUnavailable = errors.New("global hotkeys not supported by this build")
)

// grabFunc registers one shortcut. The returned channel receives a value per
// key press; release unregisters the shortcut and stops the channel.
type grabFunc func(Binding) (keydowns <-chan struct{}, release func() error, err error)

type registration struct {
	binding Binding
	kind    core.ActionKind
}

// Listener forwards presses of the bound shortcuts as hotkey triggers.
type Listener struct {
	logger        *zap.Logger
	registrations []registration
	grab          grabFunc
}

func NewListener(logger *zap.Logger) *Listener {
	return &Listener{logger: logger, grab: grabOS}
}

// Bind maps the shortcut combination to an action.
func (l *Listener) Bind(combo string, kind core.ActionKind) error {
	binding, err := Parse(combo)
	if err != nil {
		return err
	}
	for _, existing := range l.registrations {
		if existing.binding.String() == binding.String() {
			return fmt.Errorf("%w: %s is used for %s", ErrDuplicateBinding, binding, existing.kind)
		}
	}
	l.registrations = append(l.registrations, registration{binding: binding, kind: kind})
	return nil
}

// Bindings returns the bound shortcuts in canonical form.
func (l *Listener) Bindings() map[string]core.ActionKind {
	bindings := make(map[string]core.ActionKind, len(l.registrations))
	for _, reg := range l.registrations {
		bindings[reg.binding.String()] = reg.kind
	}
	return bindings
}

// Run registers every binding with the OS and calls handle for each key press
// until ctx is canceled. A shortcut another application already grabbed fails
// the whole registration.
func (l *Listener) Run(ctx context.Context, handle func(core.Trigger)) error {
	if len(l.registrations) == 0 {
		l.logger.Info("No hotkeys bound")
		<-ctx.Done()
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var releases []func() error
	defer func() {
		for _, release := range releases {
			if err := release(); err != nil {
				l.logger.Debug("Failed to unregister hotkey", zap.Error(err))
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, reg := range l.registrations {
		keydowns, release, err := l.grab(reg.binding)
		if err != nil {
			return fmt.Errorf("registering hotkey %s: %w", reg.binding, err)
		}
		releases = append(releases, release)

		l.logger.Info("Hotkey registered",
			zap.String("hotkey", reg.binding.String()),
			zap.Stringer("action", reg.kind))

		trigger := core.Trigger{Kind: reg.kind, Source: core.SourceHotkey}
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case _, ok := <-keydowns:
					if !ok {
						return nil
					}
					handle(trigger)
				}
			}
		})
	}

	return g.Wait()
}
