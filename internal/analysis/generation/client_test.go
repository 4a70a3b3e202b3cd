package generation

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Classification
	}{
		{
			name: "quota error wrapper",
			err:  &QuotaError{Err: errors.New("429")},
			want: ClassificationQuotaExhausted,
		},
		{
			name: "wrapped quota error",
			err:  fmt.Errorf("sweep item: %w", &QuotaError{Err: errors.New("429")}),
			want: ClassificationQuotaExhausted,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: ClassificationOther,
		},
		{
			name: "timeout",
			err:  fmt.Errorf("generate content: %w", errors.New("context deadline exceeded")),
			want: ClassificationOther,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Errorf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsQuotaAPIError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "429 code",
			err:  genai.APIError{Code: 429, Message: "quota exceeded"},
			want: true,
		},
		{
			name: "resource exhausted status",
			err:  genai.APIError{Code: 503, Status: "RESOURCE_EXHAUSTED"},
			want: true,
		},
		{
			name: "wrapped 429",
			err:  fmt.Errorf("call: %w", genai.APIError{Code: 429}),
			want: true,
		},
		{
			name: "server error",
			err:  genai.APIError{Code: 500, Status: "INTERNAL"},
			want: false,
		},
		{
			name: "non-api error",
			err:  errors.New("dial tcp: i/o timeout"),
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isQuotaAPIError(tc.err); got != tc.want {
				t.Errorf("isQuotaAPIError() = %v, want %v", got, tc.want)
			}
		})
	}
}
