package services

import (
	"sync"

	"github.com/Ananth-NQI/alarab-orderbot/internal/config"
	"github.com/Ananth-NQI/alarab-orderbot/internal/models"
)

// LanguageResolver locks a reply language per WhatsApp number on the first
// text it sees. Preferences are never changed or expired.
type LanguageResolver struct {
	mu       sync.Mutex
	prefs    map[string]models.Language
	keywords config.LanguageKeywords
}

// NewLanguageResolver creates a resolver using the configured keyword sets.
func NewLanguageResolver(keywords config.LanguageKeywords) *LanguageResolver {
	return &LanguageResolver{
		prefs:    make(map[string]models.Language),
		keywords: keywords,
	}
}

// Resolve returns the stored language for number, detecting and storing it
// from text when none exists yet.
func (r *LanguageResolver) Resolve(number, text string) models.Language {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lang, ok := r.prefs[number]; ok {
		return lang
	}
	lang := DetectLanguage(text, r.keywords)
	r.prefs[number] = lang
	return lang
}

// Language returns the stored language, or the default when none is locked.
func (r *LanguageResolver) Language(number string) models.Language {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lang, ok := r.prefs[number]; ok {
		return lang
	}
	return models.DefaultLanguage
}

// DetectLanguage classifies text by keyword; the first matching set wins.
func DetectLanguage(text string, keywords config.LanguageKeywords) models.Language {
	switch {
	case config.ContainsAny(text, keywords.English):
		return models.LanguageEnglish
	case config.ContainsAny(text, keywords.Urdu):
		return models.LanguageUrdu
	case config.ContainsAny(text, keywords.RomanUrdu):
		return models.LanguageRomanUrdu
	}
	return models.DefaultLanguage
}
