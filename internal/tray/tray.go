// Package tray shows the system tray menu with the current track and the
// like/remove actions.
package tray

import (
	"context"
	"sync"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"quickactions/internal/core"
	"quickactions/internal/i18n"
	"quickactions/pkg/text"
)

// MaxLabelLength keeps the track menu entry narrow.
const MaxLabelLength = 48

// Actions are invoked from menu clicks. Nil actions are ignored.
type Actions struct {
	OnTrigger          func(trigger core.Trigger)
	OnShowCurrentTrack func()
	OnSignIn           func()
	OnQuit             func()
	// Autostart adds a "Start at login" checkbox when set.
	Autostart Autostart
}

// Autostart is the login entry toggled from the menu.
type Autostart interface {
	IsEnabled() (bool, error)
	Toggle() (bool, error)
}

// Tray implements core.StatusView. State set before the menu exists is kept
// and rendered once the tray is ready.
type Tray struct {
	localizer *i18n.Localizer
	logger    *zap.Logger

	mutex        sync.Mutex
	ready        bool
	track        *core.TrackRef
	outcome      *core.ActionOutcome
	authRequired bool

	menuTrack     *systray.MenuItem
	menuLike      *systray.MenuItem
	menuUnlike    *systray.MenuItem
	menuShow      *systray.MenuItem
	menuSignIn    *systray.MenuItem
	menuAutostart *systray.MenuItem
	menuQuit      *systray.MenuItem
}

func New(localizer *i18n.Localizer, logger *zap.Logger) *Tray {
	return &Tray{
		localizer: localizer,
		logger:    logger,
	}
}

func (t *Tray) SetCurrentTrack(track *core.TrackRef) {
	t.mutex.Lock()
	if track == nil {
		t.track = nil
	} else {
		copied := *track
		t.track = &copied
	}
	t.mutex.Unlock()
	t.render()
}

func (t *Tray) SetLastOutcome(outcome core.ActionOutcome) {
	t.mutex.Lock()
	t.outcome = &outcome
	t.mutex.Unlock()
	t.render()
}

func (t *Tray) SetAuthRequired(required bool) {
	t.mutex.Lock()
	t.authRequired = required
	t.mutex.Unlock()
	t.render()
}

// Run shows the tray and blocks until ctx is canceled or Quit is clicked.
// It must be called from the main goroutine.
func (t *Tray) Run(ctx context.Context, actions Actions) {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()

	systray.Run(func() { t.onReady(ctx, actions) }, func() {
		t.mutex.Lock()
		t.ready = false
		t.mutex.Unlock()
		t.logger.Info("Tray closed")
	})
}

func (t *Tray) onReady(ctx context.Context, actions Actions) {
	l := t.localizer

	systray.SetIcon(Icon())
	systray.SetTitle(l.T("tray.title"))
	systray.SetTooltip(l.T("tray.tooltip"))

	t.mutex.Lock()
	t.menuTrack = systray.AddMenuItem(l.T("tray.no_track"), "")
	t.menuTrack.Disable()
	systray.AddSeparator()
	t.menuLike = systray.AddMenuItem(l.T("tray.like"), "")
	t.menuUnlike = systray.AddMenuItem(l.T("tray.unlike"), "")
	t.menuShow = systray.AddMenuItem(l.T("tray.show"), "")
	systray.AddSeparator()
	t.menuSignIn = systray.AddMenuItem(l.T("tray.sign_in"), "")
	if actions.Autostart != nil {
		t.menuAutostart = systray.AddMenuItemCheckbox(l.T("tray.autostart"), "",
			autostartEnabled(actions.Autostart, t.logger))
	}
	t.menuQuit = systray.AddMenuItem(l.T("tray.quit"), "")
	t.ready = true
	t.mutex.Unlock()

	t.render()
	t.logger.Info("Tray ready")

	go t.loop(ctx, actions)
}

func (t *Tray) loop(ctx context.Context, actions Actions) {
	var autostartClicked chan struct{}
	if t.menuAutostart != nil {
		autostartClicked = t.menuAutostart.ClickedCh
	}

	for {
		select {
		case <-t.menuLike.ClickedCh:
			if actions.OnTrigger != nil {
				actions.OnTrigger(core.Trigger{Kind: core.ActionLike, Source: core.SourceTray})
			}
		case <-t.menuUnlike.ClickedCh:
			if actions.OnTrigger != nil {
				actions.OnTrigger(core.Trigger{Kind: core.ActionUnlike, Source: core.SourceTray})
			}
		case <-t.menuShow.ClickedCh:
			if actions.OnShowCurrentTrack != nil {
				go actions.OnShowCurrentTrack()
			}
		case <-t.menuSignIn.ClickedCh:
			if actions.OnSignIn != nil {
				go actions.OnSignIn()
			}
		case <-autostartClicked:
			if toggleAutostart(actions.Autostart, t.logger) {
				t.menuAutostart.Check()
			} else {
				t.menuAutostart.Uncheck()
			}
		case <-t.menuQuit.ClickedCh:
			if actions.OnQuit != nil {
				actions.OnQuit()
			}
			systray.Quit()
			return
		case <-ctx.Done():
			return
		}
	}
}

func (t *Tray) render() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.ready {
		return
	}

	t.menuTrack.SetTitle(trackLabel(t.localizer, t.track, t.authRequired))
	systray.SetTooltip(tooltip(t.localizer, t.outcome))

	if t.authRequired {
		t.menuSignIn.Enable()
	} else {
		t.menuSignIn.Disable()
	}
	if t.track == nil {
		t.menuLike.Disable()
		t.menuUnlike.Disable()
	} else {
		t.menuLike.Enable()
		t.menuUnlike.Enable()
	}
}

func autostartEnabled(autostart Autostart, logger *zap.Logger) bool {
	enabled, err := autostart.IsEnabled()
	if err != nil {
		logger.Warn("Failed to read autostart state", zap.Error(err))
		return false
	}
	return enabled
}

// toggleAutostart flips the login entry and returns the state the checkbox
// should show. On failure that is the state actually on disk.
func toggleAutostart(autostart Autostart, logger *zap.Logger) bool {
	enabled, err := autostart.Toggle()
	if err != nil {
		logger.Error("Failed to toggle autostart", zap.Error(err))
		return autostartEnabled(autostart, logger)
	}
	logger.Info("Autostart toggled", zap.Bool("enabled", enabled))
	return enabled
}

func trackLabel(l *i18n.Localizer, track *core.TrackRef, authRequired bool) string {
	switch {
	case authRequired:
		return l.T("tray.auth_required")
	case track == nil:
		return l.T("tray.no_track")
	default:
		return text.Truncate(l.T("tray.track", track.DisplayName), MaxLabelLength)
	}
}

func tooltip(l *i18n.Localizer, outcome *core.ActionOutcome) string {
	if outcome == nil {
		return l.T("tray.tooltip")
	}
	return l.T("tray.tooltip_outcome", outcomeLabel(l, *outcome))
}

func outcomeLabel(l *i18n.Localizer, outcome core.ActionOutcome) string {
	return l.T("tray.outcome."+outcome.Status.String(), outcome.Kind.String())
}
