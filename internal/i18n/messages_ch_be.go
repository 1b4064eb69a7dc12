package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Error messages
	"error.generic":       "Öppis isch schief gloffe. Probier's haut nomau, bitte.",
	"error.current_track": "Ha s aktuelle Lied nid chönne vo Spotify läse: %s",
	"error.auth_failed":   "D Aamäudig bi Spotify het nid funktioniert: %s",

	// Notifications
	"notify.title.app":             "Spotify Quick Actions",
	"notify.title.like_verified":   "❤️ Gliket!",
	"notify.title.unlike_verified": "💔 Usegno!",
	"notify.title.like_failed":     "❌ Lied het nid chönne gliket wärde",
	"notify.title.unlike_failed":   "❌ Lied het nid chönne usegno wärde",
	"notify.title.like_gave_up":    "⚠️ Like nid bestätigt",
	"notify.title.unlike_gave_up":  "⚠️ Useneh nid bestätigt",
	"notify.title.nothing_playing": "🎵 Es louft nüt",
	"notify.title.auth_required":   "🔐 Spotify-Aamäudig nötig",
	"notify.title.auth_done":       "✅ Bi Spotify aagmäudet",
	"notify.title.auth_failed":     "❌ Spotify-Aamäudig fäugschlage",
	"notify.title.error":           "❌ Spotify nid erreichbar",
	"notify.title.now_playing":     "🎵 Itz louft",

	"notify.body.verified":          "✅ Bestätigt: %s",
	"notify.body.like_failed":       "D Aafrag isch fäugschlage und %s isch immer no nid i dire Bibliothek.",
	"notify.body.unlike_failed":     "D Aafrag isch fäugschlage und %s isch immer no i dire Bibliothek.",
	"notify.body.like_gave_up":      "Ha nid chönne bestätige dass %s gspicheret isch (zletscht: %s).",
	"notify.body.unlike_gave_up":    "Ha nid chönne bestätige dass %s usegno isch (zletscht: %s).",
	"notify.body.nothing_playing":   "Lah zersch es Lied uf Spotify loufe.",
	"notify.body.auth_required":     "Mäud di im Browser aa.",
	"notify.body.auth_done":         "Drück d Tastekombination nomau.",
	"notify.body.now_playing":       "%s",
	"notify.body.now_playing_liked": "%s ❤️",

	// Observed like states
	"state.liked":     "gliket",
	"state.not_liked": "nid gliket",
	"state.unknown":   "unbekannt",

	// Tray menu
	"tray.title":            "♫",
	"tray.tooltip":          "Spotify Quick Actions",
	"tray.tooltip_outcome":  "Spotify Quick Actions: %s",
	"tray.no_track":         "Es louft keis Lied",
	"tray.track":            "🎵 %s",
	"tray.auth_required":    "🔐 Aamäudig nötig",
	"tray.like":             "♥ Aktuells Lied like",
	"tray.unlike":           "💔 Aktuells Lied usenäh",
	"tray.show":             "Aktuells Lied zeige",
	"tray.sign_in":          "Bi Spotify aamäude…",
	"tray.autostart":        "Bim Aamäude starte",
	"tray.quit":             "Beände",
	"tray.outcome.verified": "%s bestätigt",
	"tray.outcome.failed":   "%s fäugschlage",
	"tray.outcome.gave_up":  "%s nid bestätigt",
}
