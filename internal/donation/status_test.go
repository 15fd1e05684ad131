package donation

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusSucceeded, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusFailed, true},
		{StatusSucceeded, StatusPending, false},
		{StatusSucceeded, StatusCanceled, false},
		{StatusCanceled, StatusSucceeded, false},
		{StatusFailed, StatusSucceeded, false},
		{StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Fatalf("pending must not be terminal")
	}
	for _, s := range []Status{StatusSucceeded, StatusCanceled, StatusFailed} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus("succeeded"); !ok || s != StatusSucceeded {
		t.Fatalf("parse succeeded: got %q ok=%v", s, ok)
	}
	if _, ok := ParseStatus("waiting_for_capture"); ok {
		t.Fatalf("unknown provider status must not parse")
	}
}
