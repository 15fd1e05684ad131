package donation

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnonymousName is the public display name for donors who withhold identity.
const AnonymousName = "Anonymous"

// MinAmount is the donation floor in minor currency units.
var MinAmount = decimal.NewFromInt(100)

// Purpose categorizes what a donation funds.
type Purpose string

const (
	PurposeFood        Purpose = "food"
	PurposeMedical     Purpose = "medical"
	PurposeMaintenance Purpose = "maintenance"
	PurposeGeneral     Purpose = "general"
)

// ParsePurpose maps a raw category onto the enum, defaulting to general.
func ParsePurpose(raw string) Purpose {
	switch Purpose(raw) {
	case PurposeFood, PurposeMedical, PurposeMaintenance:
		return Purpose(raw)
	default:
		return PurposeGeneral
	}
}

// Donation is a single payment attempt. Rows are created pending and mutated
// only by settlement or the scheduler; they are never deleted.
type Donation struct {
	ID                string
	UserID            string // empty for anonymous donations
	SubscriptionID    string // set once a recurring donation materializes a subscription
	PublicName        string
	Phone             string
	Email             string
	Amount            decimal.Decimal
	Purpose           Purpose
	IsRecurring       bool
	Provider          string
	ProviderPaymentID string
	Status            Status
	PaidAt            *time.Time
	CreatedAt         time.Time
}
