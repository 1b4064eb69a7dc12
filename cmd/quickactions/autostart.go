package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quickactions/internal/autostart"
)

const autostartName = "spotify-quick-actions"

// autostartEntry starts executable at login with the same config file as the
// running process. A relative config path is resolved now, since login
// sessions start elsewhere.
func autostartEntry(executable, configPath string) (autostart.Entry, error) {
	entry := autostart.Entry{
		Name:        autostartName,
		DisplayName: appName,
		Exec:        []string{executable},
	}
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return autostart.Entry{}, fmt.Errorf("resolving config path: %w", err)
		}
		entry.Exec = append(entry.Exec, "--config", abs)
	}
	return entry, nil
}

func newAutostartManager() (*autostart.Manager, error) {
	executable, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}
	entry, err := autostartEntry(executable, cfgFile)
	if err != nil {
		return nil, err
	}
	return autostart.New(entry)
}

func newAutostartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Start Spotify Quick Actions when you log in",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Add the login entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				manager, err := newAutostartManager()
				if err != nil {
					return err
				}
				if err := manager.Enable(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Starts at login (%s)\n", manager.Location())
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Remove the login entry",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				manager, err := newAutostartManager()
				if err != nil {
					return err
				}
				if err := manager.Disable(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Login entry removed (%s)\n", manager.Location())
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether the login entry exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				manager, err := newAutostartManager()
				if err != nil {
					return err
				}
				enabled, err := manager.IsEnabled()
				if err != nil {
					return err
				}
				state := "disabled"
				if enabled {
					state = "enabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Autostart %s (%s)\n", state, manager.Location())
				return nil
			},
		},
	)
	return cmd
}
