package donation

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu        sync.RWMutex
	donations map[string]Donation
}

// NewMemoryRepository builds an in-memory donation store for testing and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{donations: make(map[string]Donation)}
}

func (r *memoryRepository) Create(_ context.Context, don Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations[don.ID] = don
	return nil
}

func (r *memoryRepository) Update(_ context.Context, don Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.donations[don.ID]; !ok {
		return ErrNotFound
	}
	r.donations[don.ID] = don
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	don, ok := r.donations[id]
	if !ok {
		return Donation{}, ErrNotFound
	}
	return don, nil
}

func (r *memoryRepository) FindByProviderPaymentID(_ context.Context, providerPaymentID string) (Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if providerPaymentID == "" {
		return Donation{}, ErrNotFound
	}
	for _, don := range r.donations {
		if don.ProviderPaymentID == providerPaymentID {
			return don, nil
		}
	}
	return Donation{}, ErrNotFound
}

func (r *memoryRepository) ListRecent(_ context.Context, limit int, status Status) ([]Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []Donation{}
	for _, don := range r.donations {
		if status != "" && don.Status != status {
			continue
		}
		result = append(result, don)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *memoryRepository) ListCountedBetween(_ context.Context, from, to time.Time) ([]Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []Donation{}
	for _, don := range r.donations {
		if don.Status != StatusSucceeded && don.Status != StatusPending {
			continue
		}
		effective := don.CreatedAt
		if don.PaidAt != nil {
			effective = *don.PaidAt
		}
		if effective.Before(from) || !effective.Before(to) {
			continue
		}
		result = append(result, don)
	}
	return result, nil
}
