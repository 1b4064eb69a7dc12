package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"quickactions/internal/i18n"
)

func validConfig() *Config {
	config := DefaultConfig()
	config.Spotify.ClientID = "client-id"
	config.Spotify.ClientSecret = "client-secret"
	config.Spotify.TokenPath = "/tmp/token.json"
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.App.Language != i18n.DefaultLanguage {
		t.Errorf("Expected default language to be %s, got %s", i18n.DefaultLanguage, config.App.Language)
	}

	if config.Verify.MaxAttempts != DefaultVerifyMaxAttempts {
		t.Errorf("Expected %d verification attempts, got %d", DefaultVerifyMaxAttempts, config.Verify.MaxAttempts)
	}

	if config.Hotkeys.LikeTrack != "Ctrl+Alt+L" || config.Hotkeys.UnlikeTrack != "Ctrl+Alt+U" {
		t.Errorf("Unexpected default hotkeys: %+v", config.Hotkeys)
	}

	if !strings.HasSuffix(config.Spotify.TokenPath, filepath.Join(AppDirName, TokenFileName)) {
		t.Errorf("Unexpected default token path %s", config.Spotify.TokenPath)
	}

	if config.Server.Enabled {
		t.Error("Expected status server to be disabled by default")
	}
}

func TestVerifyConfigPolicy(t *testing.T) {
	policy := DefaultConfig().Verify.Policy()

	expected := []time.Duration{
		1000 * time.Millisecond,
		1500 * time.Millisecond,
		2000 * time.Millisecond,
		4500 * time.Millisecond,
	}
	attempts := []int{1, 2, 3, 8}

	for i, attempt := range attempts {
		if got := policy(attempt); got != expected[i] {
			t.Errorf("policy(%d) = %v, want %v", attempt, got, expected[i])
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"Valid", func(*Config) {}, nil},
		{"Placeholder client id", func(c *Config) { c.Spotify.ClientID = PlaceholderClientID }, ErrPlaceholderCredentials},
		{"Placeholder secret", func(c *Config) { c.Spotify.ClientSecret = PlaceholderClientSecret }, ErrPlaceholderCredentials},
		{"Missing client id", func(c *Config) { c.Spotify.ClientID = "" }, ErrInvalidConfig},
		{"Bad redirect", func(c *Config) { c.Spotify.RedirectURL = "not a url" }, ErrInvalidConfig},
		{"Zero attempts", func(c *Config) { c.Verify.MaxAttempts = 0 }, ErrInvalidConfig},
		{"More than 8 attempts", func(c *Config) { c.Verify.MaxAttempts = 9 }, ErrInvalidConfig},
		{"Reissue beyond attempts", func(c *Config) { c.Verify.ReissueAttempts = 9 }, ErrInvalidConfig},
		{"Negative delay", func(c *Config) { c.Verify.BaseDelayMs = -1 }, ErrInvalidConfig},
		{"Bad log level", func(c *Config) { c.Log.Level = "verbose" }, ErrInvalidConfig},
		{"Unsupported language", func(c *Config) { c.App.Language = "xx" }, ErrInvalidConfig},
		{"Server without host", func(c *Config) { c.Server.Enabled = true; c.Server.Host = "" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected valid config, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWriteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	config := validConfig()

	if err := WriteConfigFile(path, config); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file missing: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
	}

	var decoded Config
	if _, err := toml.DecodeFile(path, &decoded); err != nil {
		t.Fatalf("Failed to decode written config: %v", err)
	}
	if decoded.Spotify.ClientID != "client-id" {
		t.Errorf("Expected client id to round trip, got %q", decoded.Spotify.ClientID)
	}
	if decoded.Hotkeys.SaveTrack != DefaultSaveHotkey {
		t.Errorf("Expected save hotkey %q, got %q", DefaultSaveHotkey, decoded.Hotkeys.SaveTrack)
	}

	if err := WriteConfigFile(path, config); err == nil {
		t.Error("Expected error when config file already exists")
	}
}

func TestParseActionKind(t *testing.T) {
	for input, expected := range map[string]ActionKind{"like": ActionLike, "Save": ActionLike, "unlike": ActionUnlike, " remove ": ActionUnlike} {
		got, err := ParseActionKind(input)
		if err != nil || got != expected {
			t.Errorf("ParseActionKind(%q) = %v, %v; want %v", input, got, err, expected)
		}
	}
	if _, err := ParseActionKind("skip"); err == nil {
		t.Error("Expected error for unknown action")
	}
}
