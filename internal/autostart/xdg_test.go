//go:build !windows && !darwin

package autostart

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultLocation_XDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("XDG_CONFIG_HOME", "")
	got, err := defaultLocation("spotify-quick-actions")
	if err != nil {
		t.Fatalf("defaultLocation returned error: %v", err)
	}
	want := filepath.Join(home, ".config", "autostart", "spotify-quick-actions.desktop")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	got, err = defaultLocation("spotify-quick-actions")
	if err != nil {
		t.Fatalf("defaultLocation returned error: %v", err)
	}
	want = filepath.Join(configHome, "autostart", "spotify-quick-actions.desktop")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestQuoteExecArg(t *testing.T) {
	tests := map[string]string{
		"/usr/bin/quickactions": "/usr/bin/quickactions",
		"--config":              "--config",
		"/opt/quick actions/qa": `"/opt/quick actions/qa"`,
		`say "hi"`:              `"say \"hi\""`,
		"$HOME/x":               `"\$HOME/x"`,
		"100%":                  "100%%",
		"":                      `""`,
	}

	for in, want := range tests {
		if got := quoteExecArg(in); got != want {
			t.Errorf("quoteExecArg(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestRender_DesktopEntry(t *testing.T) {
	content, err := render(Entry{
		Name:        "spotify-quick-actions",
		DisplayName: "Spotify Quick\nActions",
		Exec:        []string{"/opt/quick actions/qa", "--headless"},
	})
	if err != nil {
		t.Fatalf("render returned error: %v", err)
	}

	for _, want := range []string{
		"[Desktop Entry]",
		"Type=Application",
		"Name=Spotify Quick Actions\n",
		`Exec="/opt/quick actions/qa" --headless`,
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("Desktop entry missing %q:\n%s", want, content)
		}
	}
}
