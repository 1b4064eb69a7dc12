package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"quickactions/internal/i18n"
)

const (
	// AppDirName is the directory under the user config and cache dirs.
	AppDirName = "spotify-quick-actions"
	// ConfigFileName is the TOML config file inside the config dir.
	ConfigFileName = "config.toml"
	// TokenFileName is the credential cache file inside the cache dir.
	TokenFileName = "spotify_token.json"
	// PlaceholderClientID is the client id written by init-config templates.
	PlaceholderClientID = "YOUR_SPOTIFY_CLIENT_ID"
	// PlaceholderClientSecret is the client secret written by init-config templates.
	PlaceholderClientSecret = "YOUR_SPOTIFY_CLIENT_SECRET"

	DefaultRedirectURL              = "http://127.0.0.1:8888/callback"
	DefaultLikeHotkey               = "Ctrl+Alt+L"
	DefaultUnlikeHotkey             = "Ctrl+Alt+U"
	DefaultSaveHotkey               = "Ctrl+Alt+S"
	DefaultDebounceMs               = 500
	DefaultNotificationTimeoutMs    = 3000
	DefaultVerifyMaxAttempts        = 8
	DefaultVerifyBaseDelayMs        = 1000
	DefaultVerifyDelayStepMs        = 500
	DefaultVerifyReissueAttempts    = 2
	DefaultSafetyMarginSecs         = 60
	DefaultAuthTimeoutSecs          = 120
	DefaultServerHost               = "127.0.0.1"
	DefaultServerPort               = 8081
	DefaultNowPlayingIntervalSecs   = 2
	DefaultHistorySize              = 1000
	DefaultAPIRatePerSec            = 5.0
	DefaultServerReadTimeoutSecs    = 10
	DefaultServerWriteTimeoutSecs   = 10
	defaultHistoryFalsePositiveRate = 0.001
)

type Config struct {
	Spotify       SpotifyConfig      `toml:"spotify"`
	Hotkeys       HotkeyConfig       `toml:"hotkeys"`
	Notifications NotificationConfig `toml:"notifications"`
	Verify        VerifyConfig       `toml:"verify"`
	Auth          AuthConfig         `toml:"auth"`
	Server        ServerConfig       `toml:"server"`
	Log           LogConfig          `toml:"log"`
	App           AppConfig          `toml:"app"`
}

type SpotifyConfig struct {
	ClientID     string `toml:"client_id" validate:"required"`
	ClientSecret string `toml:"client_secret" validate:"required"`
	RedirectURL  string `toml:"redirect_url" validate:"required,url"`
	TokenPath    string `toml:"token_path" validate:"required"`
}

type HotkeyConfig struct {
	Enabled     bool   `toml:"enabled"`
	LikeTrack   string `toml:"like_track"`
	UnlikeTrack string `toml:"unlike_track"`
	SaveTrack   string `toml:"save_track"`
	DebounceMs  int    `toml:"debounce_ms" validate:"gte=0"`
}

type NotificationConfig struct {
	Enabled   bool `toml:"enabled"`
	TimeoutMs int  `toml:"timeout_ms" validate:"gte=0"`
}

type VerifyConfig struct {
	MaxAttempts     int `toml:"max_attempts" validate:"min=1,max=8"`
	BaseDelayMs     int `toml:"base_delay_ms" validate:"gte=0"`
	DelayStepMs     int `toml:"delay_step_ms" validate:"gte=0"`
	ReissueAttempts int `toml:"reissue_attempts" validate:"gte=0,ltefield=MaxAttempts"`
}

// Policy returns the linear delay policy described by the config.
func (v VerifyConfig) Policy() DelayPolicy {
	return LinearDelay(
		time.Duration(v.BaseDelayMs)*time.Millisecond,
		time.Duration(v.DelayStepMs)*time.Millisecond,
	)
}

type AuthConfig struct {
	SafetyMarginSecs int `toml:"safety_margin_secs" validate:"gte=0"`
	TimeoutSecs      int `toml:"timeout_secs" validate:"gte=1"`
}

type ServerConfig struct {
	Enabled      bool          `toml:"enabled"`
	Host         string        `toml:"host" validate:"required_if=Enabled true"`
	Port         int           `toml:"port" validate:"gte=0,lte=65535"`
	ReadTimeout  time.Duration `toml:"-"`
	WriteTimeout time.Duration `toml:"-"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=json console"`
}

type AppConfig struct {
	Language               string  `toml:"language" validate:"language"`
	Headless               bool    `toml:"headless"`
	NowPlayingIntervalSecs int     `toml:"now_playing_interval_secs" validate:"gte=0"`
	HistorySize            int     `toml:"history_size" validate:"min=1"`
	HistoryFalsePositive   float64 `toml:"-"`
	APIRatePerSec          float64 `toml:"api_rate_per_sec" validate:"gt=0"`
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			RedirectURL: DefaultRedirectURL,
			TokenPath:   DefaultTokenPath(),
		},
		Hotkeys: HotkeyConfig{
			Enabled:     true,
			LikeTrack:   DefaultLikeHotkey,
			UnlikeTrack: DefaultUnlikeHotkey,
			SaveTrack:   DefaultSaveHotkey,
			DebounceMs:  DefaultDebounceMs,
		},
		Notifications: NotificationConfig{
			Enabled:   true,
			TimeoutMs: DefaultNotificationTimeoutMs,
		},
		Verify: VerifyConfig{
			MaxAttempts:     DefaultVerifyMaxAttempts,
			BaseDelayMs:     DefaultVerifyBaseDelayMs,
			DelayStepMs:     DefaultVerifyDelayStepMs,
			ReissueAttempts: DefaultVerifyReissueAttempts,
		},
		Auth: AuthConfig{
			SafetyMarginSecs: DefaultSafetyMarginSecs,
			TimeoutSecs:      DefaultAuthTimeoutSecs,
		},
		Server: ServerConfig{
			Enabled:      false,
			Host:         DefaultServerHost,
			Port:         DefaultServerPort,
			ReadTimeout:  DefaultServerReadTimeoutSecs * time.Second,
			WriteTimeout: DefaultServerWriteTimeoutSecs * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			Language:               i18n.DefaultLanguage,
			NowPlayingIntervalSecs: DefaultNowPlayingIntervalSecs,
			HistorySize:            DefaultHistorySize,
			HistoryFalsePositive:   defaultHistoryFalsePositiveRate,
			APIRatePerSec:          DefaultAPIRatePerSec,
		},
	}
}

// DefaultConfigPath returns <UserConfigDir>/spotify-quick-actions/config.toml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppDirName, ConfigFileName)
}

// DefaultTokenPath returns <UserCacheDir>/spotify-quick-actions/spotify_token.json.
func DefaultTokenPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, AppDirName, TokenFileName)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return i18n.IsSupported(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks the config and reports every failing field.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == PlaceholderClientID || c.Spotify.ClientSecret == PlaceholderClientSecret {
		return ErrPlaceholderCredentials
	}

	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("validating config: %w", err)
		}
		problems := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

// WriteConfigFile writes cfg as TOML to path, creating parent directories.
// It refuses to overwrite an existing file.
func WriteConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return f.Close()
}
