// Package text parses track references and cleans up track names for display.
package text

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

const (
	// TrackIDLength is the length of a base-62 Spotify track id.
	TrackIDLength = 22
)

var (
	// ErrInvalidTrackReference is returned when input is neither an id, a URI nor a track URL.
	ErrInvalidTrackReference = errors.New("invalid track reference")

	trackIDRegex    = regexp.MustCompile(`^[a-zA-Z0-9]{22}$`)
	spotifyURIRegex = regexp.MustCompile(`^spotify:track:([a-zA-Z0-9]{22})$`)

	spotifyDomains = map[string]bool{
		"open.spotify.com": true,
		"play.spotify.com": true,
		"spotify.com":      true,
	}
)

// ParseTrackID extracts a track id from a raw id, a spotify:track: URI or an
// open.spotify.com track URL. Locale path segments ("/intl-de/") and query
// strings ("?si=...") are ignored.
func ParseTrackID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidTrackReference
	}

	if trackIDRegex.MatchString(ref) {
		return ref, nil
	}

	if strings.HasPrefix(ref, "spotify:") {
		matches := spotifyURIRegex.FindStringSubmatch(ref)
		if len(matches) < 2 {
			return "", ErrInvalidTrackReference
		}
		return matches[1], nil
	}

	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return "", ErrInvalidTrackReference
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", ErrInvalidTrackReference
	}

	if !spotifyDomains[strings.ToLower(u.Hostname())] {
		return "", ErrInvalidTrackReference
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if segment != "track" || i+1 >= len(segments) {
			continue
		}
		if id := segments[i+1]; trackIDRegex.MatchString(id) {
			return id, nil
		}
	}

	return "", ErrInvalidTrackReference
}
