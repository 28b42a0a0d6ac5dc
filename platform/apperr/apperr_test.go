package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("already done"), http.StatusConflict},
		{Forbidden("not yours"), http.StatusForbidden},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.status {
			t.Fatalf("%q: expected status %d, got %d", tc.err.Message, tc.status, got)
		}
	}
}

func TestGetKind(t *testing.T) {
	if GetKind(Conflict("x")) != KindConflict {
		t.Fatal("expected conflict kind")
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("untyped error should be unknown")
	}
	if GetKind(nil) != KindUnknown {
		t.Fatal("nil error should be unknown")
	}
}

func TestWrapPreservesUnderlying(t *testing.T) {
	inner := errors.New("socket closed")
	err := Wrap(KindInternal, "query failed", inner).WithOp("alerts.List")

	if !errors.Is(err, inner) {
		t.Fatal("wrapped error should unwrap to the underlying error")
	}
	if err.Error() != "alerts.List: query failed" {
		t.Fatalf("unexpected error string: %q", err.Error())
	}
}
