package text

import (
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Trims and collapses", "  Bohemian   Rhapsody \n", "Bohemian Rhapsody"},
		{"Control characters", "Song\x00Name\tLive", "Song Name Live"},
		{"Decomposed accents become composed", "Beyonce\u0301", "Beyonc\u00e9"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestJoinArtists(t *testing.T) {
	if got := JoinArtists([]string{"Queen", " ", "David Bowie"}); got != "Queen, David Bowie" {
		t.Errorf("JoinArtists() = %q", got)
	}
	if got := JoinArtists(nil); got != UnknownArtist {
		t.Errorf("JoinArtists(nil) = %q, want %q", got, UnknownArtist)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("Under Pressure", "Queen, David Bowie"); got != "Under Pressure - Queen, David Bowie" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := DisplayName("", ""); got != UnknownTitle+" - "+UnknownArtist {
		t.Errorf("DisplayName(empty) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"Fits", "short", 10, "short"},
		{"Exact", "12345", 5, "12345"},
		{"Cut", "Hello world", 7, "Hello…"},
		{"Multibyte", "ÄÖÜäöüß", 4, "ÄÖÜ…"},
		{"Limit one", "abc", 1, "…"},
		{"Limit zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.limit)
			if got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.expected)
			}
			if tt.limit > 0 && utf8.RuneCountInString(got) > tt.limit {
				t.Errorf("Truncate(%q, %d) returned %d runes", tt.input, tt.limit, utf8.RuneCountInString(got))
			}
		})
	}
}
