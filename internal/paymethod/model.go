package paymethod

import "time"

// PaymentMethod is a reusable charge credential issued by a provider for a user.
// Tokens are immutable once stored: superseding one means inserting a new row
// and flipping IsActive on the old one (deactivation is an extension point,
// not implemented here).
type PaymentMethod struct {
	ID            string
	UserID        string
	Provider      string
	ProviderToken string
	Last4         string
	IsActive      bool
	CreatedAt     time.Time
}

// Usable reports whether the method can back an off-session charge.
func (m PaymentMethod) Usable() bool {
	return m.IsActive && m.ProviderToken != ""
}
