package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// UnknownArtist is shown when a track carries no artist names.
	UnknownArtist = "Unknown Artist"
	// UnknownTitle is shown when a track carries no name.
	UnknownTitle = "Unknown Track"

	ellipsis = "…"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Clean normalizes s to NFC, replaces control characters with spaces and
// collapses runs of whitespace.
func Clean(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// JoinArtists joins cleaned, non-empty artist names with ", ".
func JoinArtists(names []string) string {
	var artists []string
	for _, name := range names {
		if name = Clean(name); name != "" {
			artists = append(artists, name)
		}
	}
	if len(artists) == 0 {
		return UnknownArtist
	}
	return strings.Join(artists, ", ")
}

// DisplayName renders "Title - Artist".
func DisplayName(title, artist string) string {
	title = Clean(title)
	if title == "" {
		title = UnknownTitle
	}
	artist = Clean(artist)
	if artist == "" {
		artist = UnknownArtist
	}
	return title + " - " + artist
}

// Truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit == 1 {
		return ellipsis
	}
	return strings.TrimRightFunc(string(runes[:limit-1]), unicode.IsSpace) + ellipsis
}
