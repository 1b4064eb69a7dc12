// Package main provides the Spotify Quick Actions CLI application entry point.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"quickactions/internal/core"
	"quickactions/internal/i18n"
)

const (
	appName   = "Spotify Quick Actions"
	envPrefix = "QUICKACTIONS"
)

var (
	cfgFile string
	envFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quickactions",
	Short: "Spotify Quick Actions - like the current track from anywhere",
	Long: `Spotify Quick Actions runs in the background and binds global hotkeys and a tray
menu to "like" and "remove" actions on the track Spotify is currently playing.
Every action is verified against your library before it is reported as done.`,
	SilenceUsage: true,
	RunE:         runDaemon,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps command line flags to config keys. The same keys are read from
// the TOML config file and from QUICKACTIONS_* environment variables.
var flagKeys = map[string]string{
	"log-level":                 "log.level",
	"log-format":                "log.format",
	"language":                  "app.language",
	"headless":                  "app.headless",
	"now-playing-interval-secs": "app.now_playing_interval_secs",
	"history-size":              "app.history_size",
	"api-rate-per-sec":          "app.api_rate_per_sec",
	"spotify-client-id":         "spotify.client_id",
	"spotify-client-secret":     "spotify.client_secret",
	"spotify-redirect-url":      "spotify.redirect_url",
	"spotify-token-path":        "spotify.token_path",
	"hotkeys-enabled":           "hotkeys.enabled",
	"hotkey-like":               "hotkeys.like_track",
	"hotkey-unlike":             "hotkeys.unlike_track",
	"hotkey-save":               "hotkeys.save_track",
	"debounce-ms":               "hotkeys.debounce_ms",
	"notifications-enabled":     "notifications.enabled",
	"notification-timeout-ms":   "notifications.timeout_ms",
	"verify-max-attempts":       "verify.max_attempts",
	"verify-base-delay-ms":      "verify.base_delay_ms",
	"verify-delay-step-ms":      "verify.delay_step_ms",
	"verify-reissue-attempts":   "verify.reissue_attempts",
	"auth-safety-margin-secs":   "auth.safety_margin_secs",
	"auth-timeout-secs":         "auth.timeout_secs",
	"server-enabled":            "server.enabled",
	"server-host":               "server.host",
	"server-port":               "server.port",
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := core.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "config file (default is "+core.DefaultConfigPath()+")")
	flags.StringVar(&envFile, "env-file", ".env", "optional .env file with QUICKACTIONS_* variables")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (json, console)")
	supportedLangs := strings.Join(i18n.GetSupportedLanguages(), ", ")
	flags.String("language", defaults.App.Language, fmt.Sprintf("Notification language (%s)", supportedLangs))
	flags.Bool("headless", false, "Run without the tray icon")
	flags.Int("now-playing-interval-secs", defaults.App.NowPlayingIntervalSecs, "Now-playing refresh interval (0 disables)")
	flags.Int("history-size", defaults.App.HistorySize, "Number of verified like states remembered for display")
	flags.Float64("api-rate-per-sec", defaults.App.APIRatePerSec, "Maximum Spotify API requests per second")
	flags.String("spotify-client-id", "", "Spotify client ID")
	flags.String("spotify-client-secret", "", "Spotify client secret")
	flags.String("spotify-redirect-url", defaults.Spotify.RedirectURL, "Spotify OAuth redirect URL")
	flags.String("spotify-token-path", defaults.Spotify.TokenPath, "Credential cache file")
	flags.Bool("hotkeys-enabled", defaults.Hotkeys.Enabled, "Register global hotkeys")
	flags.String("hotkey-like", defaults.Hotkeys.LikeTrack, "Hotkey that likes the current track")
	flags.String("hotkey-unlike", defaults.Hotkeys.UnlikeTrack, "Hotkey that removes the current track")
	flags.String("hotkey-save", defaults.Hotkeys.SaveTrack, "Second hotkey that likes the current track")
	flags.Int("debounce-ms", defaults.Hotkeys.DebounceMs, "Ignore repeated triggers within this window")
	flags.Bool("notifications-enabled", defaults.Notifications.Enabled, "Show desktop notifications")
	flags.Int("notification-timeout-ms", defaults.Notifications.TimeoutMs, "Notification display time")
	flags.Int("verify-max-attempts", defaults.Verify.MaxAttempts, "Verification polls per action")
	flags.Int("verify-base-delay-ms", defaults.Verify.BaseDelayMs, "Delay before the first verification poll")
	flags.Int("verify-delay-step-ms", defaults.Verify.DelayStepMs, "Delay increase per verification poll")
	flags.Int("verify-reissue-attempts", defaults.Verify.ReissueAttempts, "Final polls that re-send the write on mismatch")
	flags.Int("auth-safety-margin-secs", defaults.Auth.SafetyMarginSecs, "Refresh tokens this long before expiry")
	flags.Int("auth-timeout-secs", defaults.Auth.TimeoutSecs, "Time allowed to finish signing in")
	flags.Bool("server-enabled", defaults.Server.Enabled, "Serve health, status and metrics endpoints")
	flags.String("server-host", defaults.Server.Host, "HTTP server host")
	flags.Int("server-port", defaults.Server.Port, "HTTP server port")

	for flag, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bind flag %s: %v\n", flag, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRefreshCmd(),
		newTokenStatusCmd(),
		newActionCmd(core.ActionLike),
		newActionCmd(core.ActionUnlike),
		newNowPlayingCmd(),
		newInitConfigCmd(),
		newAutostartCmd(),
	)
}

func initConfig() {
	// Load .env file explicitly using gotenv
	if err := gotenv.Load(envFile); err != nil {
		// Don't exit if .env file doesn't exist, just warn
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", envFile, err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	configPath := cfgFile
	if configPath == "" {
		configPath = core.DefaultConfigPath()
	}
	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")
	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" || !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configPath, err)
		}
	}

	config = buildConfig(viper.GetViper())
	logger = buildLogger(config.Log.Level, config.Log.Format)
}

func buildConfig(v *viper.Viper) *core.Config {
	cfg := core.DefaultConfig()

	configureSpotify(v, cfg)
	configureHotkeys(v, cfg)
	configureNotifications(v, cfg)
	configureVerify(v, cfg)
	configureAuth(v, cfg)
	configureServer(v, cfg)
	configureApp(v, cfg)

	return cfg
}

func configureSpotify(v *viper.Viper, cfg *core.Config) {
	setString(v, "spotify.client_id", &cfg.Spotify.ClientID)
	setString(v, "spotify.client_secret", &cfg.Spotify.ClientSecret)
	setString(v, "spotify.redirect_url", &cfg.Spotify.RedirectURL)
	setString(v, "spotify.token_path", &cfg.Spotify.TokenPath)
}

func configureHotkeys(v *viper.Viper, cfg *core.Config) {
	setBool(v, "hotkeys.enabled", &cfg.Hotkeys.Enabled)
	setString(v, "hotkeys.like_track", &cfg.Hotkeys.LikeTrack)
	setString(v, "hotkeys.unlike_track", &cfg.Hotkeys.UnlikeTrack)
	setString(v, "hotkeys.save_track", &cfg.Hotkeys.SaveTrack)
	setInt(v, "hotkeys.debounce_ms", &cfg.Hotkeys.DebounceMs)
}

func configureNotifications(v *viper.Viper, cfg *core.Config) {
	setBool(v, "notifications.enabled", &cfg.Notifications.Enabled)
	setInt(v, "notifications.timeout_ms", &cfg.Notifications.TimeoutMs)
}

func configureVerify(v *viper.Viper, cfg *core.Config) {
	setInt(v, "verify.max_attempts", &cfg.Verify.MaxAttempts)
	setInt(v, "verify.base_delay_ms", &cfg.Verify.BaseDelayMs)
	setInt(v, "verify.delay_step_ms", &cfg.Verify.DelayStepMs)
	setInt(v, "verify.reissue_attempts", &cfg.Verify.ReissueAttempts)
}

func configureAuth(v *viper.Viper, cfg *core.Config) {
	setInt(v, "auth.safety_margin_secs", &cfg.Auth.SafetyMarginSecs)
	setInt(v, "auth.timeout_secs", &cfg.Auth.TimeoutSecs)
}

func configureServer(v *viper.Viper, cfg *core.Config) {
	setBool(v, "server.enabled", &cfg.Server.Enabled)
	setString(v, "server.host", &cfg.Server.Host)
	setInt(v, "server.port", &cfg.Server.Port)
	setString(v, "log.level", &cfg.Log.Level)
	setString(v, "log.format", &cfg.Log.Format)
}

func configureApp(v *viper.Viper, cfg *core.Config) {
	setBool(v, "app.headless", &cfg.App.Headless)
	setInt(v, "app.now_playing_interval_secs", &cfg.App.NowPlayingIntervalSecs)
	setInt(v, "app.history_size", &cfg.App.HistorySize)
	if v.IsSet("app.api_rate_per_sec") {
		cfg.App.APIRatePerSec = v.GetFloat64("app.api_rate_per_sec")
	}

	// Language configuration with validation
	setString(v, "app.language", &cfg.App.Language)
	if !i18n.IsSupported(cfg.App.Language) {
		fmt.Fprintf(os.Stderr, "Warning: Unsupported language '%s', falling back to '%s'. Supported languages: %s\n",
			cfg.App.Language, i18n.DefaultLanguage, strings.Join(i18n.GetSupportedLanguages(), ", "))
		cfg.App.Language = i18n.DefaultLanguage
	}
}

// The setters only override defaults for keys set by a flag, the environment
// or the config file.

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func buildLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	if strings.EqualFold(format, "console") {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	}

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

// validateConfig checks the config before anything talks to Spotify.
func validateConfig() error {
	if err := config.Validate(); err != nil {
		if errors.Is(err, core.ErrPlaceholderCredentials) || config.Spotify.ClientID == "" {
			return fmt.Errorf("%w\nRun `quickactions init-config` or set QUICKACTIONS_SPOTIFY_CLIENT_ID and QUICKACTIONS_SPOTIFY_CLIENT_SECRET", err)
		}
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
