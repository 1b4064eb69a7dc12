package i18n

// englishMessages contains all English translations
var englishMessages = map[string]string{
	// Error messages
	"error.generic":       "Something went wrong. Please try again.",
	"error.current_track": "Couldn't read the current track from Spotify: %s",
	"error.auth_failed":   "Signing in to Spotify failed: %s",

	// Notifications
	"notify.title.app":             "Spotify Quick Actions",
	"notify.title.like_verified":   "❤️ Liked!",
	"notify.title.unlike_verified": "💔 Removed!",
	"notify.title.like_failed":     "❌ Failed to like track",
	"notify.title.unlike_failed":   "❌ Failed to remove track",
	"notify.title.like_gave_up":    "⚠️ Like not verified",
	"notify.title.unlike_gave_up":  "⚠️ Removal not verified",
	"notify.title.nothing_playing": "🎵 Nothing playing",
	"notify.title.auth_required":   "🔐 Spotify sign-in required",
	"notify.title.auth_done":       "✅ Signed in to Spotify",
	"notify.title.auth_failed":     "❌ Spotify sign-in failed",
	"notify.title.error":           "❌ Spotify unavailable",
	"notify.title.now_playing":     "🎵 Now playing",

	"notify.body.verified":          "✅ Verified: %s",
	"notify.body.like_failed":       "The request failed and %s is still not in your library.",
	"notify.body.unlike_failed":     "The request failed and %s is still in your library.",
	"notify.body.like_gave_up":      "Couldn't confirm %s was saved (last seen: %s).",
	"notify.body.unlike_gave_up":    "Couldn't confirm %s was removed (last seen: %s).",
	"notify.body.nothing_playing":   "Start playing a track on Spotify first.",
	"notify.body.auth_required":     "Finish signing in in your browser.",
	"notify.body.auth_done":         "Press the shortcut again to retry.",
	"notify.body.now_playing":       "%s",
	"notify.body.now_playing_liked": "%s ❤️",

	// Observed like states
	"state.liked":     "liked",
	"state.not_liked": "not liked",
	"state.unknown":   "unknown",

	// Tray menu
	"tray.title":            "♫",
	"tray.tooltip":          "Spotify Quick Actions",
	"tray.tooltip_outcome":  "Spotify Quick Actions: %s",
	"tray.no_track":         "No track playing",
	"tray.track":            "🎵 %s",
	"tray.auth_required":    "🔐 Sign-in required",
	"tray.like":             "♥ Like current track",
	"tray.unlike":           "💔 Remove current track",
	"tray.show":             "Show current track",
	"tray.sign_in":          "Sign in to Spotify…",
	"tray.autostart":        "Start at login",
	"tray.quit":             "Quit",
	"tray.outcome.verified": "%s verified",
	"tray.outcome.failed":   "%s failed",
	"tray.outcome.gave_up":  "%s not verified",
}
