// Package spotify adapts the Spotify Web API to the library operations the
// quick actions need.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"quickactions/internal/core"
	"quickactions/pkg/text"
)

const (
	// DefaultRatePerSec is the outbound request budget used when none is configured.
	DefaultRatePerSec = 5.0
	// RequestTimeout bounds a single API round trip.
	RequestTimeout = 15 * time.Second
)

// Client implements core.MusicAPI over the Spotify Web API.
type Client struct {
	client  *spotify.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL string
	base    http.RoundTripper
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithTransport sets the transport underneath the bearer-token layer.
func WithTransport(base http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.base = base
	}
}

// NewClient creates a Client that asks source for a bearer token on every
// request. Outbound calls are limited to ratePerSec.
func NewClient(source oauth2.TokenSource, ratePerSec float64, logger *zap.Logger, opts ...ClientOption) *Client {
	options := clientOptions{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&options)
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: source, Base: options.base},
		Timeout:   RequestTimeout,
	}

	spotifyOpts := []spotify.ClientOption{spotify.WithRetry(true)}
	if options.baseURL != "" {
		spotifyOpts = append(spotifyOpts, spotify.WithBaseURL(options.baseURL))
	}

	if ratePerSec <= 0 {
		ratePerSec = DefaultRatePerSec
	}
	burst := int(ratePerSec)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		client:  spotify.New(httpClient, spotifyOpts...),
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		logger:  logger,
	}
}

// CurrentTrack returns the track on the user's player. A paused track still
// counts. Returns nil without error when nothing is playing or the item has
// no catalogue id (episodes, ads, local files).
func (c *Client) CurrentTrack(ctx context.Context) (*core.TrackRef, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	currently, err := c.client.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return nil, mapError("get currently playing", err)
	}

	if currently == nil || currently.Item == nil || currently.Item.ID == "" {
		return nil, nil
	}

	track := convertTrack(currently.Item)
	c.logger.Debug("Current track",
		zap.String("trackID", track.ID),
		zap.String("track", track.DisplayName),
		zap.Bool("playing", currently.Playing))
	return &track, nil
}

// Track resolves a track by id.
func (c *Client) Track(ctx context.Context, trackID string) (*core.TrackRef, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	full, err := c.client.GetTrack(ctx, spotify.ID(trackID))
	if err != nil {
		return nil, mapError("get track", err)
	}

	track := convertTrack(full)
	return &track, nil
}

// LikeTrack saves the track to the user's library.
func (c *Client) LikeTrack(ctx context.Context, trackID string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.client.AddTracksToLibrary(ctx, spotify.ID(trackID)); err != nil {
		return mapError("add track to library", err)
	}
	return nil
}

// UnlikeTrack removes the track from the user's library.
func (c *Client) UnlikeTrack(ctx context.Context, trackID string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.client.RemoveTracksFromLibrary(ctx, spotify.ID(trackID)); err != nil {
		return mapError("remove track from library", err)
	}
	return nil
}

// IsTrackLiked reports whether the track is in the user's library.
func (c *Client) IsTrackLiked(ctx context.Context, trackID string) (bool, error) {
	if err := c.wait(ctx); err != nil {
		return false, err
	}

	saved, err := c.client.UserHasTracks(ctx, spotify.ID(trackID))
	if err != nil {
		return false, mapError("check library", err)
	}
	if len(saved) != 1 {
		return false, fmt.Errorf("%w: library check returned %d results", core.ErrTransientAPI, len(saved))
	}
	return saved[0], nil
}

// CurrentUser returns the display name of the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return "", mapError("get current user", err)
	}
	if user.DisplayName != "" {
		return user.DisplayName, nil
	}
	return user.ID, nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return nil
}

// mapError classifies API failures. Missing or rejected credentials become
// core.ErrAuthenticationRequired; everything else is transient.
func mapError(op string, err error) error {
	if errors.Is(err, core.ErrAuthenticationRequired) {
		return fmt.Errorf("%s: %w", op, core.ErrAuthenticationRequired)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if status := statusOf(err); status == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w: %v", op, core.ErrAuthenticationRequired, err)
	}
	return fmt.Errorf("%s: %w: %v", op, core.ErrTransientAPI, err)
}

func statusOf(err error) int {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Status
	}
	return 0
}

func convertTrack(track *spotify.FullTrack) core.TrackRef {
	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}

	title := text.Clean(track.Name)
	artist := text.JoinArtists(names)
	return core.TrackRef{
		ID:          string(track.ID),
		Title:       title,
		Artist:      artist,
		DisplayName: text.DisplayName(title, artist),
	}
}
