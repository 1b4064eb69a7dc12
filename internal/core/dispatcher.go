package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quickactions/internal/i18n"
)

const reauthFlightKey = "reauthorize"

// Dispatcher turns triggers into verified actions on the current track.
type Dispatcher struct {
	config    *Config
	api       MusicAPI
	verifier  ActionPerformer
	notifier  Notifier
	view      StatusView
	reauth    Reauthenticator
	gate      TriggerGate
	history   LikeHistory
	metrics   MetricsRecorder
	logger    *zap.Logger
	localizer *i18n.Localizer

	// In-flight actions keyed by kind and track id
	flights     map[string]*flight
	flightMutex sync.Mutex

	reauthGroup singleflight.Group

	currentTrack *TrackRef
	lastOutcome  *ActionOutcome
	authRequired bool
	stateMutex   sync.RWMutex
}

// flight is one running verification that identical triggers join.
type flight struct {
	done    chan struct{}
	outcome ActionOutcome
	err     error
	joined  int
}

// DispatcherOption wires an optional collaborator into the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithStatusView updates view with the current track and outcomes.
func WithStatusView(view StatusView) DispatcherOption {
	return func(d *Dispatcher) {
		d.view = view
	}
}

// WithReauthenticator runs reauth when the credential is no longer usable.
func WithReauthenticator(reauth Reauthenticator) DispatcherOption {
	return func(d *Dispatcher) {
		d.reauth = reauth
	}
}

// WithTriggerGate debounces triggers through gate.
func WithTriggerGate(gate TriggerGate) DispatcherOption {
	return func(d *Dispatcher) {
		d.gate = gate
	}
}

// WithHistory records verified like states in history.
func WithHistory(history LikeHistory) DispatcherOption {
	return func(d *Dispatcher) {
		d.history = history
	}
}

// WithMetrics reports triggers and outcomes to metrics.
func WithMetrics(metrics MetricsRecorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = metrics
	}
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(
	config *Config,
	api MusicAPI,
	verifier ActionPerformer,
	notifier Notifier,
	logger *zap.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		config:    config,
		api:       api,
		verifier:  verifier,
		notifier:  notifier,
		logger:    logger,
		localizer: i18n.NewLocalizer(config.App.Language),
		flights:   make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start runs the now-playing monitor until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) error {
	interval := time.Duration(d.config.App.NowPlayingIntervalSecs) * time.Second
	if interval <= 0 {
		d.logger.Info("Now-playing monitor disabled")
		<-ctx.Done()
		return nil
	}

	d.logger.Info("Starting now-playing monitor", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.refreshNowPlaying(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping now-playing monitor")
			return nil
		case <-ticker.C:
			d.refreshNowPlaying(ctx)
		}
	}
}

func (d *Dispatcher) refreshNowPlaying(ctx context.Context) {
	if d.isAuthRequired() {
		return
	}

	track, err := d.api.CurrentTrack(ctx)
	if err != nil {
		if errors.Is(err, ErrAuthenticationRequired) {
			d.setAuthRequired(true)
			return
		}
		d.logger.Debug("Failed to poll current track", zap.Error(err))
		return
	}
	d.setCurrentTrack(track)
}

// HandleTrigger accepts a trigger without blocking. Debounced triggers are
// dropped; accepted ones run Execute in their own goroutine.
func (d *Dispatcher) HandleTrigger(ctx context.Context, trigger Trigger) {
	key := string(trigger.Source) + ":" + trigger.Kind.String()
	if d.gate != nil && !d.gate.Allow(key) {
		d.logger.Debug("Trigger debounced", zap.String("key", key))
		d.recordTrigger(trigger, "debounced")
		return
	}

	d.logger.Info("Trigger received",
		zap.String("source", string(trigger.Source)),
		zap.Stringer("kind", trigger.Kind))
	d.recordTrigger(trigger, "accepted")

	go func() {
		if _, err := d.Execute(ctx, trigger.Kind); err != nil && !errors.Is(err, ErrNothingPlaying) {
			d.logger.Debug("Trigger finished without outcome", zap.Error(err))
		}
	}()
}

// Execute acts on the currently playing track.
func (d *Dispatcher) Execute(ctx context.Context, kind ActionKind) (ActionOutcome, error) {
	track, err := d.api.CurrentTrack(ctx)
	if err != nil {
		if errors.Is(err, ErrAuthenticationRequired) {
			d.handleAuthRequired(ctx)
			return ActionOutcome{}, err
		}
		if ctx.Err() != nil {
			return ActionOutcome{}, ctx.Err()
		}
		d.logger.Warn("Failed to get current track", zap.Error(err))
		d.notify(ctx, Notification{
			Title: d.localizer.T("notify.title.error"),
			Body:  d.localizer.T("error.current_track", err.Error()),
		})
		return ActionOutcome{}, fmt.Errorf("getting current track: %w", err)
	}

	if track == nil {
		d.logger.Info("Nothing playing", zap.Stringer("kind", kind))
		d.setCurrentTrack(nil)
		d.notify(ctx, Notification{
			Title: d.localizer.T("notify.title.nothing_playing"),
			Body:  d.localizer.T("notify.body.nothing_playing"),
		})
		return ActionOutcome{}, ErrNothingPlaying
	}

	d.setCurrentTrack(track)
	return d.ExecuteTrack(ctx, kind, *track)
}

// ExecuteTrack acts on an explicit track. Identical in-flight requests are
// joined: the joiner receives the leader's outcome and only the leader reports it.
func (d *Dispatcher) ExecuteTrack(ctx context.Context, kind ActionKind, track TrackRef) (ActionOutcome, error) {
	outcome, leader, err := d.runFlight(ctx, kind, track)
	if err != nil {
		switch {
		case errors.Is(err, ErrAuthenticationRequired):
			if leader {
				d.handleAuthRequired(ctx)
			}
		case ctx.Err() != nil:
			d.logger.Info("Action abandoned", zap.Stringer("kind", kind), zap.String("trackID", track.ID))
		default:
			d.logger.Error("Action aborted", zap.Stringer("kind", kind), zap.Error(err))
		}
		return ActionOutcome{}, err
	}

	if leader {
		d.report(ctx, outcome)
	}
	return outcome, nil
}

func flightKey(kind ActionKind, trackID string) string {
	return kind.String() + ":" + trackID
}

func (d *Dispatcher) runFlight(ctx context.Context, kind ActionKind, track TrackRef) (ActionOutcome, bool, error) {
	key := flightKey(kind, track.ID)

	d.flightMutex.Lock()
	if f, ok := d.flights[key]; ok {
		f.joined++
		d.flightMutex.Unlock()

		d.logger.Info("Joining in-flight action", zap.String("key", key))
		select {
		case <-f.done:
			return f.outcome, false, f.err
		case <-ctx.Done():
			return ActionOutcome{}, false, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	d.flights[key] = f
	inFlight := len(d.flights)
	d.flightMutex.Unlock()
	d.setInFlight(inFlight)

	f.outcome, f.err = d.verifier.Perform(ctx, kind, track)

	d.flightMutex.Lock()
	delete(d.flights, key)
	inFlight = len(d.flights)
	joined := f.joined
	d.flightMutex.Unlock()
	close(f.done)
	d.setInFlight(inFlight)

	if joined > 0 {
		d.logger.Info("In-flight action shared", zap.String("key", key), zap.Int("joined", joined))
	}

	return f.outcome, true, f.err
}

func (d *Dispatcher) inFlightCount() int {
	d.flightMutex.Lock()
	defer d.flightMutex.Unlock()
	return len(d.flights)
}

// handleAuthRequired tells the user to sign in and runs at most one
// interactive authorization at a time.
func (d *Dispatcher) handleAuthRequired(ctx context.Context) {
	d.setAuthRequired(true)
	d.logger.Warn("Spotify authorization required")
	d.notify(ctx, Notification{
		Title:  d.localizer.T("notify.title.auth_required"),
		Body:   d.localizer.T("notify.body.auth_required"),
		Urgent: true,
	})

	if d.reauth == nil {
		return
	}

	leader := false
	_, err, _ := d.reauthGroup.Do(reauthFlightKey, func() (interface{}, error) {
		leader = true
		return nil, d.reauth.Authorize(ctx)
	})
	if !leader {
		return
	}
	if err != nil {
		d.logger.Error("Reauthorization failed", zap.Error(err))
		d.notify(ctx, Notification{
			Title:  d.localizer.T("notify.title.auth_failed"),
			Body:   d.localizer.T("error.auth_failed", err.Error()),
			Urgent: true,
		})
		return
	}

	d.logger.Info("Reauthorized with Spotify")
	d.setAuthRequired(false)
	d.notify(ctx, Notification{
		Title: d.localizer.T("notify.title.auth_done"),
		Body:  d.localizer.T("notify.body.auth_done"),
	})
}

// Reauthorize runs the interactive flow on demand (tray "Sign in").
func (d *Dispatcher) Reauthorize(ctx context.Context) {
	d.handleAuthRequired(ctx)
}

// ShowCurrentTrack notifies the currently playing track and its known liked state.
func (d *Dispatcher) ShowCurrentTrack(ctx context.Context) (*TrackRef, error) {
	track, err := d.api.CurrentTrack(ctx)
	if err != nil {
		if errors.Is(err, ErrAuthenticationRequired) {
			d.handleAuthRequired(ctx)
		}
		return nil, err
	}

	d.setCurrentTrack(track)
	if track == nil {
		d.notify(ctx, Notification{
			Title: d.localizer.T("notify.title.nothing_playing"),
			Body:  d.localizer.T("notify.body.nothing_playing"),
		})
		return nil, nil
	}

	d.notify(ctx, d.nowPlayingNotification(*track))
	return track, nil
}

// Snapshot returns the dispatcher's current status.
func (d *Dispatcher) Snapshot() Status {
	d.stateMutex.RLock()
	status := Status{AuthRequired: d.authRequired}
	if d.currentTrack != nil {
		track := *d.currentTrack
		status.CurrentTrack = &track
	}
	if d.lastOutcome != nil {
		outcome := *d.lastOutcome
		status.LastOutcome = &outcome
	}
	d.stateMutex.RUnlock()

	status.ActionsInFlight = d.inFlightCount()
	if d.history != nil {
		status.HistorySize = d.history.Size()
	}
	return status
}

func (d *Dispatcher) setCurrentTrack(track *TrackRef) {
	d.stateMutex.Lock()
	changed := !sameTrack(d.currentTrack, track)
	if track != nil {
		copied := *track
		d.currentTrack = &copied
	} else {
		d.currentTrack = nil
	}
	d.stateMutex.Unlock()

	if changed && d.view != nil {
		d.view.SetCurrentTrack(track)
	}
	if d.isAuthRequired() {
		d.setAuthRequired(false)
	}
}

func sameTrack(a, b *TrackRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func (d *Dispatcher) setAuthRequired(required bool) {
	d.stateMutex.Lock()
	changed := d.authRequired != required
	d.authRequired = required
	d.stateMutex.Unlock()

	if changed && d.view != nil {
		d.view.SetAuthRequired(required)
	}
}

func (d *Dispatcher) isAuthRequired() bool {
	d.stateMutex.RLock()
	defer d.stateMutex.RUnlock()
	return d.authRequired
}

func (d *Dispatcher) setLastOutcome(outcome ActionOutcome) {
	d.stateMutex.Lock()
	d.lastOutcome = &outcome
	d.stateMutex.Unlock()

	if d.view != nil {
		d.view.SetLastOutcome(outcome)
	}
}

func (d *Dispatcher) notify(ctx context.Context, notification Notification) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, notification); err != nil {
		d.logger.Warn("Failed to show notification", zap.Error(err))
	}
}

func (d *Dispatcher) recordTrigger(trigger Trigger, status string) {
	if d.metrics != nil {
		d.metrics.RecordTrigger(string(trigger.Source), trigger.Kind.String(), status)
	}
}

func (d *Dispatcher) setInFlight(n int) {
	if d.metrics != nil {
		d.metrics.SetActionsInFlight(n)
	}
}
