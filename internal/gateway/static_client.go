package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StaticClient simulates the provider when no shop credentials are configured.
// Payments it creates never settle by themselves; a webhook (or test) has to
// drive them forward.
type StaticClient struct {
	baseURL string
}

// NewStaticClient builds the dev-mode provider stand-in.
func NewStaticClient(baseURL string) *StaticClient {
	return &StaticClient{baseURL: baseURL}
}

// CreateIntent returns a synthetic pending payment pointing back at the public site.
func (c *StaticClient) CreateIntent(_ context.Context, req IntentRequest) (Intent, error) {
	id := fmt.Sprintf("mock_payment_%s_%d_%s", methodType(req.MethodType), time.Now().UTC().Unix(), uuid.NewString()[:8])
	return Intent{
		ProviderID: id,
		Status:     "pending",
		ConfirmationURL: fmt.Sprintf("%s/donate?mock_payment=success&amount=%s&method=%s",
			c.baseURL, req.Amount.StringFixed(2), methodType(req.MethodType)),
	}, nil
}
