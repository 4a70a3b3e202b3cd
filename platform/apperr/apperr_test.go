package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindBadRequest, http.StatusBadRequest},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindInternal, http.StatusInternalServerError},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := New(tc.kind, "x").HTTPStatus(); got != tc.want {
			t.Errorf("kind %v -> %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("pg down")
	err := Wrap(KindInternal, "store analysis", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}
	if !Is(err, KindInternal) {
		t.Error("Is must match the wrapping kind")
	}
	if Is(err, KindConflict) {
		t.Error("Is must not match a different kind")
	}
}

func TestGetKindOnPlainError(t *testing.T) {
	if got := GetKind(errors.New("plain")); got != KindUnknown {
		t.Errorf("GetKind = %v, want KindUnknown", got)
	}
}
