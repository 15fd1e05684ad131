package donation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paw-haven/paw_haven/internal/gateway"
	"github.com/paw-haven/paw_haven/internal/identity"
)

var (
	// ErrAmountBelowMinimum rejects donations under the 100 minor-unit floor.
	ErrAmountBelowMinimum = errors.New("donation amount below minimum")

	// ErrUnknownPayment indicates a webhook referenced a payment id we never issued.
	ErrUnknownPayment = errors.New("no donation for provider payment id")
)

// SubscriptionCreator materializes a subscription from a settled recurring
// donation. Implemented by the subscription scheduler; declared here so the
// dependency runs one way.
type SubscriptionCreator interface {
	MaterializeFromDonation(ctx context.Context, don Donation, token, last4 string) (string, error)
}

// Service owns donation creation, settlement and status transitions.
type Service struct {
	repo     Repository
	ids      *identity.Service
	provider gateway.Client
	subs     SubscriptionCreator
	baseURL  string
	currency string
	logger   *slog.Logger
}

// NewService constructs the donation lifecycle manager.
func NewService(repo Repository, ids *identity.Service, provider gateway.Client, subs SubscriptionCreator, baseURL, currency string, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		ids:      ids,
		provider: provider,
		subs:     subs,
		baseURL:  baseURL,
		currency: currency,
		logger:   logger,
	}
}

// CreateInput captures a donor's request to give.
type CreateInput struct {
	Amount        decimal.Decimal
	Purpose       string
	IsRecurring   bool
	Anonymous     bool
	FullName      string
	Phone         string
	Email         string
	PaymentMethod string
}

// CreateResult carries the persisted donation and where to send the donor next.
type CreateResult struct {
	Donation   Donation
	PaymentURL string
}

// Create validates the request, persists a pending donation and opens a
// provider payment for it. A provider failure forces the donation to failed
// and is surfaced to the caller; retrying means a fresh donation.
func (s *Service) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	if input.Amount.LessThan(MinAmount) {
		return CreateResult{}, fmt.Errorf("%w: minimum is %s", ErrAmountBelowMinimum, MinAmount)
	}

	publicName := AnonymousName
	if !input.Anonymous && input.FullName != "" {
		publicName = input.FullName
	}

	var userID string
	if !input.Anonymous && input.Phone != "" {
		user, err := s.ids.Resolve(ctx, input.Phone, input.Email, input.FullName)
		if err != nil {
			return CreateResult{}, fmt.Errorf("resolve donor: %w", err)
		}
		userID = user.ID
	}

	don := Donation{
		ID:          uuid.New().String(),
		UserID:      userID,
		PublicName:  publicName,
		Purpose:     ParsePurpose(input.Purpose),
		Amount:      input.Amount,
		IsRecurring: input.IsRecurring,
		Provider:    gateway.ProviderName,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if !input.Anonymous {
		don.Phone = identity.NormalizePhone(input.Phone)
		don.Email = input.Email
	}

	if err := s.repo.Create(ctx, don); err != nil {
		return CreateResult{}, err
	}

	intent, err := s.provider.CreateIntent(ctx, gateway.IntentRequest{
		Amount:      don.Amount,
		Currency:    s.currency,
		Description: fmt.Sprintf("Shelter donation: %s", don.Purpose),
		ReturnURL:   fmt.Sprintf("%s/donate?donation_id=%s&status=success", s.baseURL, don.ID),
		Metadata: map[string]any{
			"donation_id":    don.ID,
			"user_id":        userID,
			"purpose":        string(don.Purpose),
			"payment_method": input.PaymentMethod,
		},
		MethodType: input.PaymentMethod,
	})
	if err != nil {
		don.Status = StatusFailed
		if updateErr := s.repo.Update(ctx, don); updateErr != nil {
			s.logger.Error("mark donation failed", "donation_id", don.ID, "error", updateErr)
		}
		return CreateResult{}, fmt.Errorf("create payment intent: %w", err)
	}

	don.ProviderPaymentID = intent.ProviderID
	if err := s.repo.Update(ctx, don); err != nil {
		return CreateResult{}, err
	}

	return CreateResult{Donation: don, PaymentURL: intent.ConfirmationURL}, nil
}

// Settle reconciles a provider webhook event into local donation state. It is
// safe to invoke more than once for the same event: donations already in a
// terminal state are left untouched, so a redelivered success cannot spawn a
// second subscription.
func (s *Service) Settle(ctx context.Context, event gateway.WebhookEvent) (Donation, error) {
	don, err := s.repo.FindByProviderPaymentID(ctx, event.Object.ID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("webhook for unknown payment discarded", "provider_payment_id", event.Object.ID)
		return Donation{}, ErrUnknownPayment
	}
	if err != nil {
		return Donation{}, err
	}

	if don.Status.Terminal() {
		s.logger.Info("webhook for settled donation ignored", "donation_id", don.ID, "status", don.Status)
		return don, nil
	}

	next, known := ParseStatus(event.Object.Status)
	if !known || next == StatusPending {
		// Statuses the provider may add later are deliberately tolerated.
		s.logger.Info("webhook status ignored", "donation_id", don.ID, "provider_status", event.Object.Status)
		return don, nil
	}

	if !don.Status.CanTransition(next) {
		s.logger.Warn("rejected donation status transition", "donation_id", don.ID, "from", don.Status, "to", next)
		return don, ErrInvalidTransition
	}
	don.Status = next

	if next == StatusSucceeded {
		now := time.Now().UTC()
		don.PaidAt = &now

		if don.IsRecurring && don.SubscriptionID == "" && don.UserID != "" && s.subs != nil {
			subID, err := s.subs.MaterializeFromDonation(ctx, don, event.Token(), event.Last4())
			if err != nil {
				return Donation{}, fmt.Errorf("materialize subscription: %w", err)
			}
			don.SubscriptionID = subID
		}
	}

	if err := s.repo.Update(ctx, don); err != nil {
		return Donation{}, err
	}
	return don, nil
}

// ListRecent returns donations for the admin view, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int, status Status) ([]Donation, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit, status)
}
