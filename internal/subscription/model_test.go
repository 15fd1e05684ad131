package subscription

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestFrequencyNext(t *testing.T) {
	cases := []struct {
		name string
		freq Frequency
		from time.Time
		want time.Time
	}{
		{"weekly", FrequencyWeekly, date(2026, time.March, 1), date(2026, time.March, 8)},
		{"weekly across month end", FrequencyWeekly, date(2026, time.March, 28), date(2026, time.April, 4)},
		{"monthly", FrequencyMonthly, date(2026, time.March, 15), date(2026, time.April, 15)},
		{"monthly overflow", FrequencyMonthly, date(2026, time.January, 31), date(2026, time.March, 3)},
		{"quarterly", FrequencyQuarterly, date(2026, time.February, 10), date(2026, time.May, 10)},
		{"unknown behaves monthly", Frequency("daily"), date(2026, time.March, 15), date(2026, time.April, 15)},
	}
	for _, tc := range cases {
		if got := tc.freq.Next(tc.from); !got.Equal(tc.want) {
			t.Errorf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestSubscriptionStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusActive, StatusPaused, true},
		{StatusActive, StatusCanceled, true},
		{StatusPaused, StatusCanceled, true},
		{StatusPaused, StatusActive, false},
		{StatusCanceled, StatusActive, false},
		{StatusCanceled, StatusPaused, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
