package core

import (
	"context"
	"sync"
	"time"
)

type pollResult struct {
	liked bool
	err   error
}

// mockMusicAPI scripts write errors and poll results. The last entry of each
// script repeats once the script is exhausted.
type mockMusicAPI struct {
	mu sync.Mutex

	current    *TrackRef
	currentErr error

	writeErrs []error
	polls     []pollResult

	likeCalls   int
	unlikeCalls int
	pollCalls   int
	polledIDs   []string

	// writeGate, when set, blocks every write until it is closed.
	writeGate chan struct{}
	// writeStarted receives once per write before it blocks on writeGate.
	writeStarted chan struct{}
}

func (m *mockMusicAPI) CurrentTrack(_ context.Context) (*TrackRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	if m.current == nil {
		return nil, nil
	}
	track := *m.current
	return &track, nil
}

func (m *mockMusicAPI) LikeTrack(ctx context.Context, _ string) error {
	m.mu.Lock()
	m.likeCalls++
	m.mu.Unlock()
	return m.write(ctx)
}

func (m *mockMusicAPI) UnlikeTrack(ctx context.Context, _ string) error {
	m.mu.Lock()
	m.unlikeCalls++
	m.mu.Unlock()
	return m.write(ctx)
}

func (m *mockMusicAPI) write(ctx context.Context) error {
	if m.writeStarted != nil {
		m.writeStarted <- struct{}{}
	}
	if m.writeGate != nil {
		select {
		case <-m.writeGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writeErrs) == 0 {
		return nil
	}
	calls := m.likeCalls + m.unlikeCalls
	return m.writeErrs[min(calls, len(m.writeErrs))-1]
}

func (m *mockMusicAPI) IsTrackLiked(_ context.Context, trackID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollCalls++
	m.polledIDs = append(m.polledIDs, trackID)
	if len(m.polls) == 0 {
		return false, nil
	}
	result := m.polls[min(m.pollCalls, len(m.polls))-1]
	return result.liked, result.err
}

func (m *mockMusicAPI) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likeCalls + m.unlikeCalls
}

// recordingSleeper records requested delays and returns immediately.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

type mockNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (n *mockNotifier) Notify(_ context.Context, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
	return nil
}

func (n *mockNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notifications...)
}

type mockStatusView struct {
	mu           sync.Mutex
	track        *TrackRef
	outcomes     []ActionOutcome
	authRequired bool
	trackUpdates int
}

func (v *mockStatusView) SetCurrentTrack(track *TrackRef) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.track = track
	v.trackUpdates++
}

func (v *mockStatusView) SetLastOutcome(outcome ActionOutcome) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.outcomes = append(v.outcomes, outcome)
}

func (v *mockStatusView) SetAuthRequired(required bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.authRequired = required
}

type mockReauthenticator struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{}
}

func (r *mockReauthenticator) Authorize(ctx context.Context) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return r.err
}

func (r *mockReauthenticator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type mockGate struct {
	mu      sync.Mutex
	allowed map[string]int
	limit   int
}

func (g *mockGate) Allow(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.allowed == nil {
		g.allowed = make(map[string]int)
	}
	if g.allowed[key] >= g.limit {
		return false
	}
	g.allowed[key]++
	return true
}

type mockHistory struct {
	mu     sync.Mutex
	states map[string]bool
}

func (h *mockHistory) Record(trackID string, liked bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.states == nil {
		h.states = make(map[string]bool)
	}
	h.states[trackID] = liked
}

func (h *mockHistory) Lookup(trackID string) (bool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	liked, ok := h.states[trackID]
	return liked, ok
}

func (h *mockHistory) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.states)
}

type mockMetrics struct {
	mu       sync.Mutex
	triggers map[string]int
	outcomes map[string]int
}

func (m *mockMetrics) RecordTrigger(source, kind, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.triggers == nil {
		m.triggers = make(map[string]int)
	}
	m.triggers[source+"/"+kind+"/"+status]++
}

func (m *mockMetrics) RecordOutcome(kind, outcome string, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[kind+"/"+outcome]++
}

func (m *mockMetrics) SetActionsInFlight(int) {}

func (m *mockMetrics) outcomeCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[key]
}

func (m *mockMetrics) triggerCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.triggers[key]
}

// joinedCount returns how many callers joined the in-flight action for key.
func (d *Dispatcher) joinedCount(kind ActionKind, trackID string) int {
	d.flightMutex.Lock()
	defer d.flightMutex.Unlock()
	if f, ok := d.flights[flightKey(kind, trackID)]; ok {
		return f.joined
	}
	return 0
}
