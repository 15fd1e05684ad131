package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProviderName identifies the payment provider backing stored donations and tokens.
const ProviderName = "yoomoney"

// IntentRequest captures everything needed to open a provider-side payment.
type IntentRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	Metadata    map[string]any
	MethodType  string
	// Token, when set, references a stored payment method for an off-session charge.
	Token string
}

// Intent is the provider's view of a freshly created payment.
type Intent struct {
	ProviderID      string
	Status          string
	ConfirmationURL string
}

// Client creates provider-side payment intents.
type Client interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
}

// methodType translates the API-level payment method into the provider's
// payment_method_data.type value. Unknown methods fall back to bank_card.
func methodType(method string) string {
	switch method {
	case "card":
		return "bank_card"
	case "yoomoney":
		return "yoo_money"
	case "sbp":
		return "sbp"
	default:
		return "bank_card"
	}
}
