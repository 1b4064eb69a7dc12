// Package i18n provides localized strings for notifications and the tray menu.
package i18n

import (
	"fmt"
	"slices"
)

const (
	// DefaultLanguage is used for unknown languages and for keys a catalog lacks.
	DefaultLanguage = "en"
	// BerneseGermanMessages is a Swiss Dialect spoken in the Canton of Bern
	BerneseGermanMessages = "ch_be"
)

// supportedLanguages is ordered for help text; catalogs holds one entry per language.
var supportedLanguages = []string{DefaultLanguage, BerneseGermanMessages}

var catalogs = map[string]map[string]string{
	DefaultLanguage:       englishMessages,
	BerneseGermanMessages: berneseGermanMessages,
}

// Localizer resolves message keys for one language.
type Localizer struct {
	language string
	messages map[string]string
}

// NewLocalizer creates a localizer. Unknown languages get the English catalog.
func NewLocalizer(language string) *Localizer {
	return &Localizer{
		language: language,
		messages: getMessages(language),
	}
}

// Language returns the language code the localizer was created for.
func (l *Localizer) Language() string {
	return l.language
}

// T returns the message for key formatted with args. Keys missing from the
// language fall back to English, and unknown keys are returned as-is.
func (l *Localizer) T(key string, args ...any) string {
	message, ok := l.messages[key]
	if !ok {
		message, ok = englishMessages[key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf(message, args...)
}

// GetSupportedLanguages returns list of supported language codes
func GetSupportedLanguages() []string {
	return slices.Clone(supportedLanguages)
}

// IsSupported reports whether language has a message catalog.
func IsSupported(language string) bool {
	_, ok := catalogs[language]
	return ok
}

func getMessages(language string) map[string]string {
	if messages, ok := catalogs[language]; ok {
		return messages
	}
	return englishMessages
}
