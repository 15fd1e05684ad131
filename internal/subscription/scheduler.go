package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paw-haven/paw_haven/internal/donation"
	"github.com/paw-haven/paw_haven/internal/gateway"
	"github.com/paw-haven/paw_haven/internal/identity"
	"github.com/paw-haven/paw_haven/internal/paymethod"
)

// Scheduler owns subscription creation and the periodic recurring-charge run.
type Scheduler struct {
	repo      Repository
	donations donation.Repository
	methods   *paymethod.Service
	users     identity.Repository
	provider  gateway.Client
	baseURL   string
	currency  string
	logger    *slog.Logger
}

// NewScheduler wires the subscription scheduler.
func NewScheduler(repo Repository, donations donation.Repository, methods *paymethod.Service, users identity.Repository, provider gateway.Client, baseURL, currency string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		repo:      repo,
		donations: donations,
		methods:   methods,
		users:     users,
		provider:  provider,
		baseURL:   baseURL,
		currency:  currency,
		logger:    logger,
	}
}

// MaterializeFromDonation turns a settled recurring donation into an active
// subscription. Runs once per donation; the caller guards with its
// "no subscription yet linked" check. The settlement token, when present, is
// deduplicated into the payment method registry.
func (s *Scheduler) MaterializeFromDonation(ctx context.Context, don donation.Donation, token, last4 string) (string, error) {
	var methodID string
	if token != "" {
		method, err := s.methods.GetOrCreate(ctx, don.UserID, don.Provider, token, last4)
		if err != nil {
			return "", fmt.Errorf("register payment method: %w", err)
		}
		methodID = method.ID
	}

	now := time.Now().UTC()
	sub := Subscription{
		ID:              uuid.New().String(),
		UserID:          don.UserID,
		PaymentMethodID: methodID,
		Amount:          don.Amount,
		Purpose:         don.Purpose,
		Frequency:       DefaultFrequency,
		Status:          StatusActive,
		NextChargeAt:    DefaultFrequency.Next(now),
		CreatedAt:       now,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return "", err
	}

	s.logger.Info("subscription materialized", "subscription_id", sub.ID, "user_id", sub.UserID, "next_charge_at", sub.NextChargeAt)
	return sub.ID, nil
}

// RunReport summarizes one due-charge pass.
type RunReport struct {
	Due     int
	Charged int
	Paused  int
	Skipped int
	Failed  int
}

// RunDueCharges attempts to charge every active subscription whose next charge
// time has passed. Subscriptions are processed independently: an error in one
// is logged and counted, never aborting the batch.
func (s *Scheduler) RunDueCharges(ctx context.Context, now time.Time) (RunReport, error) {
	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return RunReport{}, fmt.Errorf("list due subscriptions: %w", err)
	}

	report := RunReport{Due: len(due)}
	for _, sub := range due {
		outcome, err := s.chargeOne(ctx, sub, now)
		if err != nil {
			report.Failed++
			s.logger.Error("subscription charge failed", "subscription_id", sub.ID, "error", err)
			continue
		}
		switch outcome {
		case outcomeCharged:
			report.Charged++
		case outcomePaused:
			report.Paused++
		case outcomeSkipped:
			report.Skipped++
		}
	}
	return report, nil
}

type chargeOutcome int

const (
	outcomeCharged chargeOutcome = iota
	outcomePaused
	outcomeSkipped
)

func (s *Scheduler) chargeOne(ctx context.Context, sub Subscription, now time.Time) (chargeOutcome, error) {
	var method paymethod.PaymentMethod
	usable := false
	if sub.PaymentMethodID != "" {
		found, err := s.methods.Get(ctx, sub.PaymentMethodID)
		if err != nil && !errors.Is(err, paymethod.ErrNotFound) {
			return 0, err
		}
		if err == nil && found.Usable() {
			method = found
			usable = true
		}
	}

	if !usable {
		// Without a reusable token there is nothing to charge; the donation
		// row records the missed attempt and the subscription waits for
		// manual reactivation.
		if _, err := s.createChargeDonation(ctx, sub); err != nil {
			return 0, err
		}
		if !sub.Status.CanTransition(StatusPaused) {
			return 0, ErrInvalidTransition
		}
		if err := s.repo.SetStatus(ctx, sub.ID, StatusPaused, nil); err != nil {
			return 0, err
		}
		s.logger.Warn("subscription paused: no usable payment method", "subscription_id", sub.ID)
		return outcomePaused, nil
	}

	// Claim the due period before creating any payment. Advancing from the
	// previous boundary instead of now keeps late runs from drifting the
	// schedule, and the compare-and-swap excludes overlapping runs.
	newNext := sub.Frequency.Next(sub.NextChargeAt)
	claimed, err := s.repo.AdvanceSchedule(ctx, sub.ID, sub.NextChargeAt, newNext, now)
	if err != nil {
		return 0, err
	}
	if !claimed {
		s.logger.Info("due period already claimed", "subscription_id", sub.ID)
		return outcomeSkipped, nil
	}

	don, err := s.createChargeDonation(ctx, sub)
	if err != nil {
		return 0, err
	}

	intent, err := s.provider.CreateIntent(ctx, gateway.IntentRequest{
		Amount:      sub.Amount,
		Currency:    s.currency,
		Description: fmt.Sprintf("Recurring shelter donation: %s", sub.Purpose),
		ReturnURL:   s.baseURL + "/profile",
		Metadata: map[string]any{
			"donation_id":     don.ID,
			"subscription_id": sub.ID,
			"user_id":         sub.UserID,
		},
		Token: method.ProviderToken,
	})
	if err != nil {
		don.Status = donation.StatusFailed
		if updateErr := s.donations.Update(ctx, don); updateErr != nil {
			s.logger.Error("mark charge donation failed", "donation_id", don.ID, "error", updateErr)
		}
		return 0, fmt.Errorf("create recurring intent: %w", err)
	}

	don.ProviderPaymentID = intent.ProviderID
	if err := s.donations.Update(ctx, don); err != nil {
		return 0, err
	}

	s.logger.Info("recurring charge opened", "subscription_id", sub.ID, "donation_id", don.ID, "next_charge_at", newNext)
	return outcomeCharged, nil
}

// createChargeDonation persists the pending donation that records one billing
// attempt, carrying a snapshot of the owner's contact details.
func (s *Scheduler) createChargeDonation(ctx context.Context, sub Subscription) (donation.Donation, error) {
	publicName := donation.AnonymousName
	var phone, email string
	if user, err := s.users.FindByID(ctx, sub.UserID); err == nil {
		if user.FullName != "" {
			publicName = user.FullName
		}
		phone = user.Phone
		email = user.Email
	}

	don := donation.Donation{
		ID:             uuid.New().String(),
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		PublicName:     publicName,
		Phone:          phone,
		Email:          email,
		Amount:         sub.Amount,
		Purpose:        sub.Purpose,
		IsRecurring:    true,
		Provider:       gateway.ProviderName,
		Status:         donation.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.donations.Create(ctx, don); err != nil {
		return donation.Donation{}, err
	}
	return don, nil
}

// Cancel marks a subscription canceled. Canceling one that is already
// canceled is a no-op success.
func (s *Scheduler) Cancel(ctx context.Context, id string) (Subscription, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	if sub.Status == StatusCanceled {
		return sub, nil
	}
	if !sub.Status.CanTransition(StatusCanceled) {
		return Subscription{}, ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := s.repo.SetStatus(ctx, sub.ID, StatusCanceled, &now); err != nil {
		return Subscription{}, err
	}
	sub.Status = StatusCanceled
	sub.CanceledAt = &now
	return sub, nil
}

// List returns subscriptions filtered by owner and status.
func (s *Scheduler) List(ctx context.Context, userID string, status Status) ([]Subscription, error) {
	return s.repo.List(ctx, userID, status)
}
