package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DelayPolicy returns the wait before verification poll attempt (1-based).
// Implementations must be non-decreasing in attempt.
type DelayPolicy func(attempt int) time.Duration

// LinearDelay waits base before the first poll and step longer before each following one.
func LinearDelay(base, step time.Duration) DelayPolicy {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return base + time.Duration(attempt-1)*step
	}
}

// Verifier issues a library write and polls until the change is observable.
type Verifier struct {
	api             MusicAPI
	maxAttempts     int
	reissueAttempts int
	delay           DelayPolicy
	sleep           func(ctx context.Context, d time.Duration) error
	now             func() time.Time
	logger          *zap.Logger
}

// VerifierOption customizes a Verifier.
type VerifierOption func(*Verifier)

// WithSleeper replaces the context-aware sleep used between polls.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) VerifierOption {
	return func(v *Verifier) {
		v.sleep = sleep
	}
}

// WithVerifierClock replaces the clock used for elapsed time.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a verifier from the verify section of the config.
func NewVerifier(api MusicAPI, config VerifyConfig, logger *zap.Logger, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		api:             api,
		maxAttempts:     config.MaxAttempts,
		reissueAttempts: config.ReissueAttempts,
		delay:           config.Policy(),
		sleep:           sleepContext,
		now:             time.Now,
		logger:          logger,
	}
	if v.maxAttempts < 1 || v.maxAttempts > DefaultVerifyMaxAttempts {
		v.maxAttempts = DefaultVerifyMaxAttempts
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Perform writes kind for track and polls the liked state until it matches.
// Transient failures are absorbed into the outcome. ErrAuthenticationRequired
// and context cancellation abort the run and are returned as errors.
func (v *Verifier) Perform(ctx context.Context, kind ActionKind, track TrackRef) (ActionOutcome, error) {
	req := ActionRequest{ID: uuid.NewString(), Kind: kind, Track: track}
	start := v.now()
	logger := v.logger.With(
		zap.String("requestID", req.ID),
		zap.Stringer("kind", kind),
		zap.String("trackID", track.ID),
	)

	logger.Info("Performing action", zap.String("track", track.DisplayName))

	writeErr := v.write(ctx, kind, track.ID)
	if errors.Is(writeErr, ErrAuthenticationRequired) {
		return ActionOutcome{}, writeErr
	}
	if writeErr != nil {
		logger.Warn("Write failed, verifying anyway", zap.Error(writeErr))
	}

	expected := kind.Expected()
	observed := LikeStateUnknown

	for req.Attempt = 1; req.Attempt <= v.maxAttempts; req.Attempt++ {
		wait := v.delay(req.Attempt)
		if err := v.sleep(ctx, wait); err != nil {
			logger.Info("Verification abandoned", zap.Int("attempt", req.Attempt), zap.Error(err))
			return ActionOutcome{}, err
		}

		liked, err := v.api.IsTrackLiked(ctx, track.ID)
		if err != nil {
			if errors.Is(err, ErrAuthenticationRequired) {
				return ActionOutcome{}, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ActionOutcome{}, ctxErr
			}
			logger.Debug("Verification poll failed",
				zap.Int("attempt", req.Attempt),
				zap.Error(err))
			continue
		}

		observed = likeStateOf(liked)
		if liked == expected {
			outcome := v.outcome(req, OutcomeVerified, observed, start)
			logger.Info("Action verified",
				zap.Int("attempts", outcome.Attempts),
				zap.Duration("elapsed", outcome.Elapsed))
			return outcome, nil
		}

		logger.Debug("State not updated yet",
			zap.Int("attempt", req.Attempt),
			zap.Stringer("observed", observed),
			zap.Duration("waited", wait))

		if v.shouldReissue(req.Attempt) {
			logger.Info("Re-issuing write", zap.Int("attempt", req.Attempt))
			writeErr = v.write(ctx, kind, track.ID)
			if errors.Is(writeErr, ErrAuthenticationRequired) {
				return ActionOutcome{}, writeErr
			}
			if writeErr != nil {
				logger.Warn("Re-issued write failed", zap.Error(writeErr))
			}
		}
	}

	req.Attempt = v.maxAttempts
	if writeErr != nil {
		outcome := v.outcome(req, OutcomeFailed, observed, start)
		outcome.Reason = ReasonWriteFailed
		logger.Warn("Action failed", zap.Error(writeErr), zap.Stringer("lastObserved", observed))
		return outcome, nil
	}

	outcome := v.outcome(req, OutcomeGaveUp, observed, start)
	logger.Warn("Could not verify action",
		zap.Stringer("lastObserved", observed),
		zap.Duration("elapsed", outcome.Elapsed))
	return outcome, nil
}

// shouldReissue is true for the last reissueAttempts polls that still have a poll after them.
func (v *Verifier) shouldReissue(attempt int) bool {
	return attempt < v.maxAttempts && attempt >= v.maxAttempts-v.reissueAttempts
}

func (v *Verifier) write(ctx context.Context, kind ActionKind, trackID string) error {
	switch kind {
	case ActionLike:
		return v.api.LikeTrack(ctx, trackID)
	case ActionUnlike:
		return v.api.UnlikeTrack(ctx, trackID)
	default:
		return fmt.Errorf("unsupported action %v", kind)
	}
}

func (v *Verifier) outcome(req ActionRequest, status OutcomeStatus, observed LikeState, start time.Time) ActionOutcome {
	now := v.now()
	return ActionOutcome{
		Status:       status,
		Kind:         req.Kind,
		Track:        req.Track,
		LastObserved: observed,
		Attempts:     req.Attempt,
		Elapsed:      now.Sub(start),
		FinishedAt:   now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
