package domain

import "strings"

// Language is a supported analysis output language.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageFrench  Language = "fr"
	LanguageSpanish Language = "es"
	LanguageArabic  Language = "ar"
)

// DefaultLanguage is used when a request carries no recognizable language.
const DefaultLanguage = LanguageEnglish

// SupportedLanguages returns all languages the prompt builder can enforce,
// in stable order.
func SupportedLanguages() []Language {
	return []Language{LanguageEnglish, LanguageFrench, LanguageSpanish, LanguageArabic}
}

// ParseLanguage normalizes a raw language code. The second return value is
// false when the code is not supported and the default was substituted.
func ParseLanguage(raw string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(raw))) {
	case LanguageEnglish:
		return LanguageEnglish, true
	case LanguageFrench:
		return LanguageFrench, true
	case LanguageSpanish:
		return LanguageSpanish, true
	case LanguageArabic:
		return LanguageArabic, true
	}
	return DefaultLanguage, false
}
