package subscription

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paw-haven/paw_haven/internal/donation"
)

// Status is the subscription billing state.
type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusCanceled Status = "canceled"
)

// ErrInvalidTransition indicates an attempt at a disallowed status change.
var ErrInvalidTransition = errors.New("invalid subscription status transition")

var transitions = map[Status]map[Status]bool{
	StatusActive: {StatusPaused: true, StatusCanceled: true},
	StatusPaused: {StatusCanceled: true},
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	return transitions[s][next]
}

// Frequency is the recharge cadence.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
)

// DefaultFrequency applies when a donation carries no explicit cadence.
const DefaultFrequency = FrequencyMonthly

// Next computes the following charge boundary. Monthly and quarterly steps
// preserve the day of month, overflowing into the next month when the source
// day does not exist (Jan 31 + 1 month lands in early March). Unrecognized
// frequencies behave as monthly.
func (f Frequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// Subscription is a recurring-billing agreement that spawns donations on a cadence.
type Subscription struct {
	ID              string
	UserID          string
	PaymentMethodID string // empty when no reusable credential is stored
	Amount          decimal.Decimal
	Purpose         donation.Purpose
	Frequency       Frequency
	Status          Status
	NextChargeAt    time.Time
	LastChargeAt    *time.Time
	CreatedAt       time.Time
	CanceledAt      *time.Time
}
