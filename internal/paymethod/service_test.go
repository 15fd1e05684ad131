package paymethod

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestGetOrCreateDeduplicates(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := svc.GetOrCreate(ctx, userID, "yoomoney", "tok_1", "4242")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if !first.Usable() {
		t.Fatalf("fresh method must be usable: %+v", first)
	}

	second, err := svc.GetOrCreate(ctx, userID, "yoomoney", "tok_1", "4242")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("same token must map to one method: %q vs %q", second.ID, first.ID)
	}

	// A different token is a distinct method.
	other, err := svc.GetOrCreate(ctx, userID, "yoomoney", "tok_2", "1111")
	if err != nil {
		t.Fatalf("other: %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("distinct tokens must not collapse")
	}
}

func TestGetOrCreateRequiresToken(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.GetOrCreate(context.Background(), uuid.NewString(), "yoomoney", "", ""); err == nil {
		t.Fatalf("empty token must be rejected")
	}
}

func TestUsable(t *testing.T) {
	if (PaymentMethod{IsActive: true, ProviderToken: "tok"}).Usable() != true {
		t.Fatalf("active method with token must be usable")
	}
	if (PaymentMethod{IsActive: false, ProviderToken: "tok"}).Usable() {
		t.Fatalf("inactive method must not be usable")
	}
	if (PaymentMethod{IsActive: true}).Usable() {
		t.Fatalf("method without token must not be usable")
	}
}
