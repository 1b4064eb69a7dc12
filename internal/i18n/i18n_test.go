package i18n

import (
	"slices"
	"sort"
	"strings"
	"testing"
)

// TestI18nCompleteness verifies every catalog carries exactly the English keys.
func TestI18nCompleteness(t *testing.T) {
	if len(englishMessages) == 0 {
		t.Fatal("No reference messages found in default language")
	}

	for _, lang := range GetSupportedLanguages() {
		t.Run("Language_"+lang, func(t *testing.T) {
			messages, ok := catalogs[lang]
			if !ok {
				t.Fatalf("Language %s has no catalog", lang)
			}

			var missing, extra []string
			for key := range englishMessages {
				if _, exists := messages[key]; !exists {
					missing = append(missing, key)
				}
			}
			for key, message := range messages {
				if _, exists := englishMessages[key]; !exists {
					extra = append(extra, key)
				}
				if strings.TrimSpace(message) == "" {
					t.Errorf("Language %s has an empty message for %s", lang, key)
				}
			}
			sort.Strings(missing)
			sort.Strings(extra)

			if len(missing) > 0 {
				t.Errorf("Language %s is missing %d keys: %v", lang, len(missing), missing)
			}
			if len(extra) > 0 {
				t.Errorf("Language %s has %d keys unknown to English: %v", lang, len(extra), extra)
			}
		})
	}

	if len(catalogs) != len(GetSupportedLanguages()) {
		t.Errorf("Expected one catalog per supported language, got %d catalogs", len(catalogs))
	}
}

// TestI18nKeyConsistency verifies that all message keys follow expected patterns
func TestI18nKeyConsistency(t *testing.T) {
	expectedPrefixes := []string{
		"error.",
		"notify.title.",
		"notify.body.",
		"state.",
		"tray.",
	}

	for key := range englishMessages {
		valid := slices.ContainsFunc(expectedPrefixes, func(prefix string) bool {
			return strings.HasPrefix(key, prefix) && len(key) > len(prefix)
		})
		if !valid {
			t.Errorf("Message key '%s' does not follow expected naming convention (should start with one of: %v)", key, expectedPrefixes)
		}
	}
}

// TestI18nMessageValues verifies that messages contain expected placeholders
func TestI18nMessageValues(t *testing.T) {
	testsWithPlaceholders := map[string]int{
		"error.current_track":         1, // error
		"notify.body.verified":        1, // track
		"notify.body.like_failed":     1, // track
		"notify.body.unlike_failed":   1, // track
		"notify.body.like_gave_up":    2, // track, observed state
		"notify.body.unlike_gave_up":  2, // track, observed state
		"notify.body.now_playing":     1, // track
		"tray.track":                  1, // track
		"tray.tooltip_outcome":        1, // outcome summary
		"tray.outcome.verified":       1, // track
		"notify.body.nothing_playing": 0,
	}

	for _, lang := range GetSupportedLanguages() {
		messages := getMessages(lang)
		for key, expectedPlaceholders := range testsWithPlaceholders {
			message, exists := messages[key]
			if !exists {
				t.Errorf("[%s] Expected message key '%s' not found", lang, key)
				continue
			}

			placeholderCount := 0
			for i := 0; i < len(message)-1; i++ {
				if message[i] == '%' && (message[i+1] == 's' || message[i+1] == 'd') {
					placeholderCount++
				}
			}

			if placeholderCount != expectedPlaceholders {
				t.Errorf("[%s] Message key '%s' should have %d placeholders but has %d: %s",
					lang, key, expectedPlaceholders, placeholderCount, message)
			}
		}
	}
}

// TestLocalizerFunctionality tests the Localizer methods
func TestLocalizerFunctionality(t *testing.T) {
	// Test English localizer
	localizer := NewLocalizer(DefaultLanguage)
	if localizer == nil {
		t.Fatal("Failed to create localizer")
	}

	// Test existing key
	result := localizer.T("error.generic")
	if result == "" || result == "error.generic" {
		t.Errorf("Expected translated message for 'error.generic', got: %s", result)
	}

	// Test non-existing key (should return the key itself)
	nonExistentKey := "this.key.does.not.exist"
	result = localizer.T(nonExistentKey)
	if result != nonExistentKey {
		t.Errorf("Expected fallback to key name for non-existent key, got: %s", result)
	}

	// Test message with parameters
	result = localizer.T("notify.body.verified", "Song - Artist")
	expected := "✅ Verified: Song - Artist"
	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}

	// Bernese German has its own wording for the same key.
	bernese := NewLocalizer(BerneseGermanMessages).T("tray.quit")
	if bernese == "" || bernese == "tray.quit" || bernese == localizer.T("tray.quit") {
		t.Errorf("Expected a Bernese German translation for 'tray.quit', got: %s", bernese)
	}
}

// TestGetSupportedLanguages verifies the order and that callers get a copy.
func TestGetSupportedLanguages(t *testing.T) {
	languages := GetSupportedLanguages()
	if len(languages) == 0 || languages[0] != DefaultLanguage {
		t.Fatalf("Expected %s first, got %v", DefaultLanguage, languages)
	}

	languages[0] = "xx"
	if GetSupportedLanguages()[0] != DefaultLanguage {
		t.Error("GetSupportedLanguages must not expose its backing slice")
	}
}

// BenchmarkLocalizer benchmarks the localization performance
func BenchmarkLocalizer(b *testing.B) {
	localizer := NewLocalizer(DefaultLanguage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = localizer.T("error.generic")
	}
}

// BenchmarkLocalizerWithArgs benchmarks localization with arguments
func BenchmarkLocalizerWithArgs(b *testing.B) {
	localizer := NewLocalizer(DefaultLanguage)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = localizer.T("notify.body.verified", "Test Track - Test Artist")
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported(DefaultLanguage) {
		t.Errorf("IsSupported(%q) = false", DefaultLanguage)
	}
	if !IsSupported(BerneseGermanMessages) {
		t.Errorf("IsSupported(%q) = false", BerneseGermanMessages)
	}
	if IsSupported("xx") {
		t.Error("IsSupported(\"xx\") = true")
	}
}

func TestLocalizerUnknownLanguageFallsBackToEnglish(t *testing.T) {
	localizer := NewLocalizer("xx")
	if got := localizer.T("tray.quit"); got != "Quit" {
		t.Errorf("Expected English fallback 'Quit', got %q", got)
	}
	if localizer.Language() != "xx" {
		t.Errorf("Language() = %q, want xx", localizer.Language())
	}
}
