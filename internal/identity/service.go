package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service manages the donor identity lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve maps a phone number to a durable user record. Unknown numbers are
// created on first sight; known users get email and name backfilled when the
// caller supplies non-empty values that differ from what is stored.
func (s *Service) Resolve(ctx context.Context, phone, email, fullName string) (User, error) {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return User{}, errors.New("phone is required")
	}

	user, err := s.repo.FindByPhone(ctx, normalized)
	if errors.Is(err, ErrNotFound) {
		user = User{
			ID:        uuid.New().String(),
			Phone:     normalized,
			Email:     email,
			FullName:  fullName,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return User{}, err
		}
		return user, nil
	}
	if err != nil {
		return User{}, err
	}

	changed := false
	if email != "" && user.Email != email {
		user.Email = email
		changed = true
	}
	if fullName != "" && user.FullName != fullName {
		user.FullName = fullName
		changed = true
	}
	if changed {
		if err := s.repo.Update(ctx, user); err != nil {
			return User{}, err
		}
	}

	return user, nil
}
