package domain

import "testing"

func TestNormalizeBrandKey(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "BrandCo", "brandco"},
		{"strips accents", "Café Único", "cafe unico"},
		{"collapses whitespace", "cafe   unico", "cafe unico"},
		{"strips punctuation", "O'Brien & Sons, Ltd.", "obrien sons ltd"},
		{"trims", "  Edge Case  ", "edge case"},
		{"keeps digits", "Studio 54", "studio 54"},
		{"tabs and newlines", "a\t b\nc", "a b c"},
		{"empty", "", ""},
		{"only punctuation", "!?&", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeBrandKey(tc.in); got != tc.want {
				t.Fatalf("NormalizeBrandKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeBrandKeyIdempotent(t *testing.T) {
	inputs := []string{"Café Único", "cafe   unico", "  BRAND-X  ", "déjà vu 2000"}
	for _, in := range inputs {
		once := NormalizeBrandKey(in)
		if twice := NormalizeBrandKey(once); twice != once {
			t.Fatalf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeBrandKeyIntentionalCollision(t *testing.T) {
	if NormalizeBrandKey("Café Único") != NormalizeBrandKey("cafe   unico") {
		t.Fatal("accent and whitespace variants must collide")
	}
}
