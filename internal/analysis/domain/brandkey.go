// Package domain holds the core value objects and invariants of the
// brand-analysis bounded context.
package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeBrandKey converts a raw brand name into its canonical dedup key:
// lower-cased, diacritics folded to ASCII, anything outside [a-z0-9 ] removed,
// whitespace runs collapsed, trimmed. The function is pure and idempotent.
// Collisions between spellings of the same brand ("Café Único" vs
// "cafe   unico") are intentional; the key is what the completed-analyses
// unique index is built on.
func NormalizeBrandKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))

	// The transform chain keeps internal state, so build it per call.
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, lowered)
	if err != nil {
		folded = lowered
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}

	return b.String()
}
