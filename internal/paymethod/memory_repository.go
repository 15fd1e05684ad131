package paymethod

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	methods map[string]PaymentMethod
}

// NewMemoryRepository builds an in-memory payment method store for testing and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{methods: make(map[string]PaymentMethod)}
}

func (r *memoryRepository) Create(_ context.Context, method PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[method.ID] = method
	return nil
}

func (r *memoryRepository) FindByToken(_ context.Context, userID, provider, token string) (PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.methods {
		if m.UserID == userID && m.Provider == provider && m.ProviderToken == token {
			return m, nil
		}
	}
	return PaymentMethod{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.methods[id]
	if !ok {
		return PaymentMethod{}, ErrNotFound
	}
	return m, nil
}
