package core

import (
	"context"

	"go.uber.org/zap"
)

// report presents a finished outcome: notification, tray status, history and metrics.
func (d *Dispatcher) report(ctx context.Context, outcome ActionOutcome) {
	d.setLastOutcome(outcome)

	if outcome.Status == OutcomeVerified && d.history != nil {
		d.history.Record(outcome.Track.ID, outcome.Kind.Expected())
	}

	if d.metrics != nil {
		d.metrics.RecordOutcome(outcome.Kind.String(), outcome.Status.String(), outcome.Attempts, outcome.Elapsed)
	}

	d.logger.Info("Action finished",
		zap.Stringer("kind", outcome.Kind),
		zap.Stringer("status", outcome.Status),
		zap.String("trackID", outcome.Track.ID),
		zap.Int("attempts", outcome.Attempts),
		zap.Duration("elapsed", outcome.Elapsed))

	d.notify(ctx, d.outcomeNotification(outcome))
}

// outcomeNotification renders an outcome so users can tell confirmed success,
// confirmed no-effect and uncertain results apart.
func (d *Dispatcher) outcomeNotification(outcome ActionOutcome) Notification {
	name := trackName(outcome.Track)
	kind := outcome.Kind.String()

	switch outcome.Status {
	case OutcomeVerified:
		return Notification{
			Title: d.localizer.T("notify.title." + kind + "_verified"),
			Body:  d.localizer.T("notify.body.verified", name),
		}
	case OutcomeFailed:
		return Notification{
			Title:  d.localizer.T("notify.title." + kind + "_failed"),
			Body:   d.localizer.T("notify.body."+kind+"_failed", name),
			Urgent: true,
		}
	default:
		return Notification{
			Title: d.localizer.T("notify.title." + kind + "_gave_up"),
			Body:  d.localizer.T("notify.body."+kind+"_gave_up", name, d.likeStateLabel(outcome.LastObserved)),
		}
	}
}

func (d *Dispatcher) nowPlayingNotification(track TrackRef) Notification {
	key := "notify.body.now_playing"
	if d.history != nil {
		if liked, known := d.history.Lookup(track.ID); known && liked {
			key = "notify.body.now_playing_liked"
		}
	}
	return Notification{
		Title: d.localizer.T("notify.title.now_playing"),
		Body:  d.localizer.T(key, trackName(track)),
	}
}

func (d *Dispatcher) likeStateLabel(state LikeState) string {
	switch state {
	case LikeStateLiked:
		return d.localizer.T("state.liked")
	case LikeStateNotLiked:
		return d.localizer.T("state.not_liked")
	default:
		return d.localizer.T("state.unknown")
	}
}

func trackName(track TrackRef) string {
	if track.DisplayName != "" {
		return track.DisplayName
	}
	return track.ID
}
