package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quickactions/internal/auth"
	"quickactions/internal/core"
	"quickactions/pkg/text"
)

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to Spotify and cache the credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateConfig(); err != nil {
				return err
			}
			ctx, cancel := commandContext()
			defer cancel()

			svcs := newActionServices(ctx, nil, nil)
			defer svcs.Close()

			if err := svcs.authorizer.Authorize(ctx); err != nil {
				return fmt.Errorf("sign-in failed: %w", err)
			}

			user, err := svcs.client.CurrentUser(ctx)
			if err != nil {
				return fmt.Errorf("signed in, but the credential does not work: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Signed in as %s\n", user)
			fmt.Fprintf(cmd.OutOrStdout(), "💾 Credential cached at %s\n", svcs.store.Path())
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the cached Spotify credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileStore := auth.NewFileStore(config.Spotify.TokenPath)
			if err := fileStore.Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Credential cache cleared (%s)\n", fileStore.Path())
			return nil
		},
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the cached refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateConfig(); err != nil {
				return err
			}
			ctx, cancel := commandContext()
			defer cancel()

			authSvc := newAuthServices(nil)
			token, err := authSvc.manager.Refresh(ctx)
			if err != nil {
				if errors.Is(err, core.ErrAuthenticationRequired) {
					return fmt.Errorf("%w\nRun `quickactions login` to sign in again", err)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🔄 Access token refreshed, valid until %s\n",
				token.Expiry.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func newTokenStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token-status",
		Short: "Show the state of the cached credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fileStore := auth.NewFileStore(config.Spotify.TokenPath)
			record, err := fileStore.Load()
			if err != nil {
				return err
			}
			margin := time.Duration(config.Auth.SafetyMarginSecs) * time.Second
			printTokenStatus(cmd.OutOrStdout(), fileStore.Path(), record, time.Now(), margin)
			return nil
		},
	}
}

func printTokenStatus(out io.Writer, path string, record *auth.TokenRecord, now time.Time, margin time.Duration) {
	fmt.Fprintf(out, "📁 Cache file: %s\n", path)
	if record == nil {
		fmt.Fprintln(out, "❌ No cached credential. Run `quickactions login`.")
		return
	}

	remaining := record.ExpiresAt.Sub(now).Round(time.Second)
	switch {
	case record.Valid(now, margin):
		fmt.Fprintf(out, "✅ Access token valid for %s\n", remaining)
	case remaining > 0:
		fmt.Fprintf(out, "⏳ Access token expires in %s and will be refreshed on next use\n", remaining)
	default:
		fmt.Fprintf(out, "⏰ Access token expired %s ago\n", -remaining)
	}

	if record.RefreshToken != "" {
		fmt.Fprintln(out, "🔑 Refresh token: present")
	} else {
		fmt.Fprintln(out, "⚠️  Refresh token: missing, sign-in needed after expiry")
	}
	if len(record.Scopes) > 0 {
		fmt.Fprintf(out, "📜 Scopes: %s\n", strings.Join(record.Scopes, " "))
	}
}

// newActionCmd builds the one-shot like/unlike commands.
func newActionCmd(kind core.ActionKind) *cobra.Command {
	var trackRef string

	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: fmt.Sprintf("%s the current track and verify the result", actionVerb(kind)),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateConfig(); err != nil {
				return err
			}
			ctx, cancel := commandContext()
			defer cancel()

			svcs := newActionServices(ctx, nil, nil)
			defer svcs.Close()

			var (
				outcome core.ActionOutcome
				err     error
			)
			if trackRef != "" {
				trackID, parseErr := text.ParseTrackID(trackRef)
				if parseErr != nil {
					return parseErr
				}
				track, trackErr := svcs.client.Track(ctx, trackID)
				if trackErr != nil {
					return trackErr
				}
				outcome, err = svcs.dispatcher.ExecuteTrack(ctx, kind, *track)
			} else {
				outcome, err = svcs.dispatcher.Execute(ctx, kind)
			}
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), outcome)
		},
	}

	cmd.Flags().StringVar(&trackRef, "track", "", "track id, spotify:track: URI or open.spotify.com URL (default: current track)")
	switch kind {
	case core.ActionLike:
		cmd.Aliases = []string{"save"}
	case core.ActionUnlike:
		cmd.Aliases = []string{"remove"}
	}
	return cmd
}

func actionVerb(kind core.ActionKind) string {
	if kind == core.ActionUnlike {
		return "Remove"
	}
	return "Like"
}

// printOutcome reports the result and fails unless the action was verified.
func printOutcome(out io.Writer, outcome core.ActionOutcome) error {
	name := outcome.Track.DisplayName
	switch outcome.Status {
	case core.OutcomeVerified:
		fmt.Fprintf(out, "✅ %s verified for %s (%d checks, %s)\n",
			outcome.Kind, name, outcome.Attempts, outcome.Elapsed.Round(time.Millisecond))
		return nil
	case core.OutcomeFailed:
		return fmt.Errorf("%s failed for %s: %s", outcome.Kind, name, outcome.Reason)
	default:
		return fmt.Errorf("could not verify %s for %s after %d checks (last seen: %s)",
			outcome.Kind, name, outcome.Attempts, outcome.LastObserved)
	}
}

func newNowPlayingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now-playing",
		Short: "Show the current track and whether it is liked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateConfig(); err != nil {
				return err
			}
			ctx, cancel := commandContext()
			defer cancel()

			svcs := newActionServices(ctx, nil, nil)
			defer svcs.Close()

			track, err := svcs.dispatcher.ShowCurrentTrack(ctx)
			if err != nil {
				return err
			}
			if track == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "🎵 Nothing playing")
				return nil
			}

			liked, err := svcs.client.IsTrackLiked(ctx, track.ID)
			if err != nil {
				return err
			}
			state := "not liked"
			if liked {
				state = "liked ❤️"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🎵 %s (%s)\n   spotify:track:%s\n", track.DisplayName, state, track.ID)
			return nil
		},
	}
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create a config file with your Spotify app credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				path = core.DefaultConfigPath()
			}

			cfg, err := promptConfig(cmd.InOrStdin(), cmd.OutOrStdout(), config)
			if err != nil {
				return err
			}
			if err := core.WriteConfigFile(path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Config written to %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Next: run `quickactions login` to sign in to Spotify.")
			return nil
		},
	}
}

// promptConfig asks for the Spotify app credentials. Empty answers keep the
// placeholders so the file can be edited later.
func promptConfig(in io.Reader, out io.Writer, base *core.Config) (*core.Config, error) {
	cfg := *base
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "🎵 Spotify Quick Actions setup")
	fmt.Fprintln(out, "Create an app at https://developer.spotify.com/dashboard and add this redirect URI:")
	fmt.Fprintf(out, "   %s\n\n", cfg.Spotify.RedirectURL)

	clientID, err := prompt(reader, out, "Client ID")
	if err != nil {
		return nil, err
	}
	clientSecret, err := prompt(reader, out, "Client secret")
	if err != nil {
		return nil, err
	}

	cfg.Spotify.ClientID = clientID
	if cfg.Spotify.ClientID == "" {
		cfg.Spotify.ClientID = core.PlaceholderClientID
	}
	cfg.Spotify.ClientSecret = clientSecret
	if cfg.Spotify.ClientSecret == "" {
		cfg.Spotify.ClientSecret = core.PlaceholderClientSecret
	}
	return &cfg, nil
}

func prompt(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}
