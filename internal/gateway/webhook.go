package gateway

// WebhookEvent is the provider notification delivered to our webhook endpoint.
type WebhookEvent struct {
	Event  string        `json:"event"`
	Object PaymentObject `json:"object"`
}

// PaymentObject is the payment embedded in a webhook event.
type PaymentObject struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PaymentMethod *MethodDetails `json:"payment_method,omitempty"`
}

// MethodDetails describes the reusable payment credential attached to a payment.
type MethodDetails struct {
	ID   string       `json:"id"`
	Card *CardDetails `json:"card,omitempty"`
}

// CardDetails carries the display information for a card-backed method.
type CardDetails struct {
	Last4 string `json:"last4"`
}

// Token extracts the reusable charge token from the event, if the provider
// returned one.
func (e WebhookEvent) Token() string {
	if e.Object.PaymentMethod == nil {
		return ""
	}
	return e.Object.PaymentMethod.ID
}

// Last4 extracts the masked display suffix from the event.
func (e WebhookEvent) Last4() string {
	if e.Object.PaymentMethod == nil || e.Object.PaymentMethod.Card == nil {
		return ""
	}
	return e.Object.PaymentMethod.Card.Last4
}
