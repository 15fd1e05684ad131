package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	paymentsEndpoint = "https://yoomoney.ru/api/v3/payments"
	requestTimeout   = 15 * time.Second
)

// HTTPClient talks to the real provider payments API.
type HTTPClient struct {
	shopID    string
	secretKey string
	endpoint  string
	client    *http.Client
}

// NewHTTPClient constructs a provider client authenticated with the shop's secret key.
func NewHTTPClient(shopID, secretKey string) *HTTPClient {
	return &HTTPClient{
		shopID:    shopID,
		secretKey: secretKey,
		endpoint:  paymentsEndpoint,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

type intentPayload struct {
	Amount struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"amount"`
	Confirmation struct {
		Type      string `json:"type"`
		ReturnURL string `json:"return_url"`
	} `json:"confirmation"`
	Description       string         `json:"description"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	Capture           bool           `json:"capture"`
	PaymentMethodData *struct {
		Type string `json:"type"`
	} `json:"payment_method_data,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

type intentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Confirmation struct {
		Type            string `json:"type"`
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
}

// CreateIntent opens a payment with the provider and returns its id and
// confirmation redirect. Transport and provider errors are surfaced to the
// caller, which decides disposition.
func (c *HTTPClient) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	payload := intentPayload{
		Description: req.Description,
		Metadata:    req.Metadata,
		Capture:     true,
	}
	payload.Amount.Value = req.Amount.StringFixed(2)
	payload.Amount.Currency = req.Currency
	payload.Confirmation.Type = "redirect"
	payload.Confirmation.ReturnURL = req.ReturnURL
	if req.Token != "" {
		payload.PaymentMethodID = req.Token
	} else {
		payload.PaymentMethodData = &struct {
			Type string `json:"type"`
		}{Type: methodType(req.MethodType)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Intent{}, fmt.Errorf("encode intent: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Intent{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Intent{}, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Intent{}, fmt.Errorf("provider returned %d: %s", resp.StatusCode, snippet)
	}

	var decoded intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Intent{}, fmt.Errorf("decode provider response: %w", err)
	}

	return Intent{
		ProviderID:      decoded.ID,
		Status:          decoded.Status,
		ConfirmationURL: decoded.Confirmation.ConfirmationURL,
	}, nil
}
