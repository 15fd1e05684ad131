package subscription

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu   sync.RWMutex
	subs map[string]Subscription
}

// NewMemoryRepository builds an in-memory subscription store for testing and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{subs: make(map[string]Subscription)}
}

func (r *memoryRepository) Create(_ context.Context, sub Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.ID] = sub
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[id]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

func (r *memoryRepository) List(_ context.Context, userID string, status Status) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []Subscription{}
	for _, sub := range r.subs {
		if userID != "" && sub.UserID != userID {
			continue
		}
		if status != "" && sub.Status != status {
			continue
		}
		result = append(result, sub)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memoryRepository) ListDue(_ context.Context, now time.Time) ([]Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []Subscription{}
	for _, sub := range r.subs {
		if sub.Status == StatusActive && !sub.NextChargeAt.After(now) {
			result = append(result, sub)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].NextChargeAt.Before(result[j].NextChargeAt) })
	return result, nil
}

func (r *memoryRepository) AdvanceSchedule(_ context.Context, id string, prevNext, newNext, chargedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return false, ErrNotFound
	}
	if sub.Status != StatusActive || !sub.NextChargeAt.Equal(prevNext) {
		return false, nil
	}
	sub.NextChargeAt = newNext
	charged := chargedAt
	sub.LastChargeAt = &charged
	r.subs[id] = sub
	return true, nil
}

func (r *memoryRepository) SetStatus(_ context.Context, id string, status Status, canceledAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	sub.CanceledAt = canceledAt
	r.subs[id] = sub
	return nil
}
