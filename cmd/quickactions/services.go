package main

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"quickactions/internal/auth"
	"quickactions/internal/core"
	"quickactions/internal/flood"
	httpserver "quickactions/internal/http"
	"quickactions/internal/notify"
	"quickactions/internal/spotify"
	"quickactions/internal/store"
)

// authServices is the credential side: cache file, lifecycle manager and the
// interactive sign-in.
type authServices struct {
	store      *auth.FileStore
	oauth      *auth.SpotifyOAuth
	manager    *auth.Manager
	authorizer *auth.Authorizer
}

func newAuthServices(metrics auth.Metrics) *authServices {
	fileStore := auth.NewFileStore(config.Spotify.TokenPath)
	oauth := auth.NewSpotifyOAuth(config.Spotify.ClientID, config.Spotify.ClientSecret, config.Spotify.RedirectURL)

	managerOpts := []auth.ManagerOption{
		auth.WithSafetyMargin(time.Duration(config.Auth.SafetyMarginSecs) * time.Second),
	}
	if metrics != nil {
		managerOpts = append(managerOpts, auth.WithMetrics(metrics))
	}
	manager := auth.NewManager(fileStore, oauth, logger.Named("auth"), managerOpts...)

	authorizer := auth.NewAuthorizer(oauth, manager, config.Spotify.RedirectURL, logger.Named("auth"),
		auth.WithAuthTimeout(time.Duration(config.Auth.TimeoutSecs)*time.Second),
		auth.WithPrompt(os.Stdin, os.Stdout))

	return &authServices{
		store:      fileStore,
		oauth:      oauth,
		manager:    manager,
		authorizer: authorizer,
	}
}

// actionServices is everything needed to run verified actions.
type actionServices struct {
	*authServices
	client     *spotify.Client
	notifier   notify.Service
	gate       *flood.Floodgate
	history    *store.LikeHistory
	dispatcher *core.Dispatcher
}

// newActionServices wires the dispatcher. metrics and view may be nil.
func newActionServices(ctx context.Context, metrics *httpserver.Metrics, view core.StatusView) *actionServices {
	var authMetrics auth.Metrics
	if metrics != nil {
		authMetrics = metrics
	}
	authSvc := newAuthServices(authMetrics)

	client := spotify.NewClient(authSvc.manager.TokenSource(ctx), config.App.APIRatePerSec, logger.Named("spotify"))
	verifier := core.NewVerifier(client, config.Verify, logger.Named("verifier"))
	notifier := notify.New(&config.Notifications, appName, logger.Named("notify"))
	gate := flood.New(1, time.Duration(config.Hotkeys.DebounceMs)*time.Millisecond)
	history := store.NewLikeHistory(config.App.HistorySize, config.App.HistoryFalsePositive)

	opts := []core.DispatcherOption{
		core.WithReauthenticator(authSvc.authorizer),
		core.WithTriggerGate(gate),
		core.WithHistory(history),
	}
	if metrics != nil {
		opts = append(opts, core.WithMetrics(metrics))
	}
	if view != nil {
		opts = append(opts, core.WithStatusView(view))
	}

	dispatcher := core.NewDispatcher(config, client, verifier, notifier, logger.Named("dispatcher"), opts...)

	return &actionServices{
		authServices: authSvc,
		client:       client,
		notifier:     notifier,
		gate:         gate,
		history:      history,
		dispatcher:   dispatcher,
	}
}

func (s *actionServices) Close() {
	s.gate.Stop()
	if err := s.notifier.Close(); err != nil {
		logger.Debug("Failed to close notifier", zap.Error(err))
	}
}
