package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"french national", "06 12 34 56 78", "+33612345678"},
		{"already e164", "+33612345678", "+33612345678"},
		{"international", "+971 50 123 4567", "+971501234567"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"garbage kept as-is", "not a number", "not a number"},
		{"invalid number kept as-is", "12", "12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input); got != tc.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
