package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quickactions/internal/core"
	"quickactions/internal/hotkey"
	httpserver "quickactions/internal/http"
	"quickactions/internal/i18n"
	"quickactions/internal/tray"
)

const version = "1.0.0"

func runDaemon(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting Spotify Quick Actions",
		zap.String("version", version),
		zap.Bool("headless", config.App.Headless),
		zap.Bool("hotkeys", config.Hotkeys.Enabled),
		zap.Bool("http", config.Server.Enabled),
		zap.String("language", config.App.Language))

	if err := validateConfig(); err != nil {
		return err
	}

	metrics := httpserver.NewMetrics()

	var trayUI *tray.Tray
	var view core.StatusView
	if !config.App.Headless {
		trayUI = tray.New(i18n.NewLocalizer(config.App.Language), logger.Named("tray"))
		view = trayUI
	}

	svcs := newActionServices(ctx, metrics, view)
	defer svcs.Close()

	listener, err := newHotkeyListener()
	if err != nil {
		return err
	}

	if _, err := svcs.manager.Record(); err != nil {
		logger.Info("No usable Spotify credential, starting sign-in", zap.Error(err))
		go svcs.dispatcher.Reauthorize(ctx)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.dispatcher.Start(gCtx)
	})

	g.Go(func() error {
		err := listener.Run(gCtx, func(trigger core.Trigger) {
			svcs.dispatcher.HandleTrigger(gCtx, trigger)
		})
		if err != nil {
			// The tray still works without hotkeys.
			logger.Error("Global hotkeys unavailable", zap.Error(err))
		}
		return nil
	})

	if config.Server.Enabled {
		server := httpserver.NewServer(&config.Server, metrics, svcs.dispatcher, logger.Named("http"))
		g.Go(func() error {
			return server.Start(gCtx)
		})
		logger.Info("Status server enabled", zap.String("http_addr", server.Addr()))
	}

	logger.Info("Spotify Quick Actions started successfully",
		zap.Any("hotkeys", listener.Bindings()))

	if trayUI != nil {
		var loginEntry tray.Autostart
		if manager, err := newAutostartManager(); err != nil {
			logger.Warn("Start at login unavailable", zap.Error(err))
		} else {
			loginEntry = manager
		}

		// The tray owns the main goroutine until Quit or shutdown.
		trayUI.Run(gCtx, tray.Actions{
			OnTrigger: func(trigger core.Trigger) {
				svcs.dispatcher.HandleTrigger(gCtx, trigger)
			},
			OnShowCurrentTrack: func() {
				if _, err := svcs.dispatcher.ShowCurrentTrack(gCtx); err != nil {
					logger.Warn("Failed to show current track", zap.Error(err))
				}
			},
			OnSignIn: func() {
				svcs.dispatcher.Reauthorize(gCtx)
			},
			OnQuit:    cancel,
			Autostart: loginEntry,
		})
		cancel()
	}

	if err := g.Wait(); err != nil {
		logger.Error("Spotify Quick Actions stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Spotify Quick Actions stopped gracefully")
	return nil
}

// newHotkeyListener binds the configured shortcuts. The save hotkey is a
// second like shortcut.
func newHotkeyListener() (*hotkey.Listener, error) {
	listener := hotkey.NewListener(logger.Named("hotkey"))
	if !config.Hotkeys.Enabled {
		return listener, nil
	}

	bindings := []struct {
		combo string
		kind  core.ActionKind
	}{
		{config.Hotkeys.LikeTrack, core.ActionLike},
		{config.Hotkeys.UnlikeTrack, core.ActionUnlike},
		{config.Hotkeys.SaveTrack, core.ActionLike},
	}
	for _, b := range bindings {
		if b.combo == "" {
			continue
		}
		if err := listener.Bind(b.combo, b.kind); err != nil {
			return nil, fmt.Errorf("invalid hotkey %q: %w", b.combo, err)
		}
	}
	return listener, nil
}
