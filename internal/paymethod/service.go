package paymethod

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service deduplicates and persists reusable charge tokens.
type Service struct {
	repo Repository
}

// NewService creates a payment method registry service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate returns the stored method for (user, provider, token), creating
// it on first sight. The lookup-before-insert keeps one logical row per token.
func (s *Service) GetOrCreate(ctx context.Context, userID, provider, token, last4 string) (PaymentMethod, error) {
	if token == "" {
		return PaymentMethod{}, errors.New("provider token is required")
	}

	existing, err := s.repo.FindByToken(ctx, userID, provider, token)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return PaymentMethod{}, err
	}

	method := PaymentMethod{
		ID:            uuid.New().String(),
		UserID:        userID,
		Provider:      provider,
		ProviderToken: token,
		Last4:         last4,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, method); err != nil {
		return PaymentMethod{}, err
	}
	return method, nil
}

// Get fetches a stored payment method by id.
func (s *Service) Get(ctx context.Context, id string) (PaymentMethod, error) {
	return s.repo.FindByID(ctx, id)
}
