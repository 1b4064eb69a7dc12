package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ActionKind is the library mutation a trigger asks for.
type ActionKind int

const (
	// ActionLike adds the track to the user's library.
	ActionLike ActionKind = iota
	// ActionUnlike removes the track from the user's library.
	ActionUnlike
)

func (k ActionKind) String() string {
	switch k {
	case ActionLike:
		return "like"
	case ActionUnlike:
		return "unlike"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Expected returns the liked state the library must show once the action took effect.
func (k ActionKind) Expected() bool {
	return k == ActionLike
}

// ParseActionKind accepts "like", "save" and "unlike", "remove".
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "save":
		return ActionLike, nil
	case "unlike", "remove":
		return ActionUnlike, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// TrackRef identifies the track a trigger acts on. It is fetched fresh per trigger.
type TrackRef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	DisplayName string `json:"displayName"`
}

// LikeState is the last liked state observed by a verification poll.
type LikeState int

const (
	// LikeStateUnknown means no poll succeeded.
	LikeStateUnknown LikeState = iota
	// LikeStateLiked means the track was in the library.
	LikeStateLiked
	// LikeStateNotLiked means the track was not in the library.
	LikeStateNotLiked
)

func likeStateOf(liked bool) LikeState {
	if liked {
		return LikeStateLiked
	}
	return LikeStateNotLiked
}

func (s LikeState) String() string {
	switch s {
	case LikeStateLiked:
		return "liked"
	case LikeStateNotLiked:
		return "not_liked"
	default:
		return "unknown"
	}
}

// OutcomeStatus classifies how a verified action ended.
type OutcomeStatus int

const (
	// OutcomeVerified means a poll observed the expected state.
	OutcomeVerified OutcomeStatus = iota
	// OutcomeFailed means the last write failed and the state never matched.
	OutcomeFailed
	// OutcomeGaveUp means the writes succeeded but no poll observed the expected state.
	OutcomeGaveUp
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeVerified:
		return "verified"
	case OutcomeFailed:
		return "failed"
	case OutcomeGaveUp:
		return "gave_up"
	default:
		return fmt.Sprintf("OutcomeStatus(%d)", int(s))
	}
}

// MarshalText renders the status by name in JSON snapshots.
func (s OutcomeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText renders the kind by name in JSON snapshots.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MarshalText renders the state by name in JSON snapshots.
func (s LikeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ReasonWriteFailed is the outcome reason when every write attempt failed.
const ReasonWriteFailed = "write-failed"

// ActionRequest is owned by a single verification run.
type ActionRequest struct {
	ID      string
	Kind    ActionKind
	Track   TrackRef
	Attempt int
}

// ActionOutcome is the verified result of one action.
type ActionOutcome struct {
	Status       OutcomeStatus `json:"status"`
	Kind         ActionKind    `json:"kind"`
	Track        TrackRef      `json:"track"`
	Reason       string        `json:"reason,omitempty"`
	LastObserved LikeState     `json:"lastObserved"`
	Attempts     int           `json:"attempts"`
	Elapsed      time.Duration `json:"elapsed"`
	FinishedAt   time.Time     `json:"finishedAt"`
}

// TriggerSource names where a trigger came from.
type TriggerSource string

const (
	// SourceHotkey is a global keyboard shortcut.
	SourceHotkey TriggerSource = "hotkey"
	// SourceTray is a tray menu click.
	SourceTray TriggerSource = "tray"
	// SourceCLI is a one-shot command line invocation.
	SourceCLI TriggerSource = "cli"
)

// Trigger is a user request to act on the current track.
type Trigger struct {
	Kind   ActionKind
	Source TriggerSource
}

// Status is a point-in-time view of the dispatcher.
type Status struct {
	CurrentTrack    *TrackRef      `json:"currentTrack,omitempty"`
	LastOutcome     *ActionOutcome `json:"lastOutcome,omitempty"`
	AuthRequired    bool           `json:"authRequired"`
	ActionsInFlight int            `json:"actionsInFlight"`
	HistorySize     int            `json:"historySize"`
}

// Notification is a short toast shown to the user.
type Notification struct {
	Title  string
	Body   string
	Urgent bool
}

// MusicAPI is the remote library capability used by the verifier and dispatcher.
type MusicAPI interface {
	// CurrentTrack returns nil without error when nothing is playing.
	CurrentTrack(ctx context.Context) (*TrackRef, error)
	LikeTrack(ctx context.Context, trackID string) error
	UnlikeTrack(ctx context.Context, trackID string) error
	IsTrackLiked(ctx context.Context, trackID string) (bool, error)
}

// ActionPerformer runs the write-then-verify loop for one track.
type ActionPerformer interface {
	Perform(ctx context.Context, kind ActionKind, track TrackRef) (ActionOutcome, error)
}

// Notifier delivers toast notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// StatusView is updated with the current track and the latest outcome (the tray).
type StatusView interface {
	SetCurrentTrack(track *TrackRef)
	SetLastOutcome(outcome ActionOutcome)
	SetAuthRequired(required bool)
}

// Reauthenticator runs the interactive authorization flow.
type Reauthenticator interface {
	Authorize(ctx context.Context) error
}

// TriggerGate debounces repeated triggers per key.
type TriggerGate interface {
	Allow(key string) bool
}

// LikeHistory remembers the last verified liked state per track for display.
type LikeHistory interface {
	Record(trackID string, liked bool)
	Lookup(trackID string) (liked, known bool)
	Size() int
}

// MetricsRecorder receives dispatcher and verifier measurements.
type MetricsRecorder interface {
	RecordTrigger(source, kind, status string)
	RecordOutcome(kind, outcome string, attempts int, elapsed time.Duration)
	SetActionsInFlight(n int)
}
