package identity

import (
	"context"
	"testing"
)

func TestResolveCreatesOnFirstSight(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Resolve(ctx, "+7 (900) 123-45-67", "anna@example.com", "Anna")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Phone != "+79001234567" {
		t.Fatalf("phone not normalized: %q", user.Phone)
	}
	if user.Email != "anna@example.com" || user.FullName != "Anna" {
		t.Fatalf("profile not stored: %+v", user)
	}

	// A differently formatted number must resolve to the same user.
	same, err := svc.Resolve(ctx, "+79001234567", "", "")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if same.ID != user.ID {
		t.Fatalf("same number resolved to a new user")
	}
}

func TestResolveBackfillsProfile(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	user, err := svc.Resolve(ctx, "+79001234567", "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.Email != "" || user.FullName != "" {
		t.Fatalf("expected bare profile: %+v", user)
	}

	updated, err := svc.Resolve(ctx, "+79001234567", "anna@example.com", "Anna Smirnova")
	if err != nil {
		t.Fatalf("resolve with profile: %v", err)
	}
	if updated.ID != user.ID {
		t.Fatalf("backfill created a new user")
	}
	if updated.Email != "anna@example.com" || updated.FullName != "Anna Smirnova" {
		t.Fatalf("profile not backfilled: %+v", updated)
	}

	// Empty values never erase stored details.
	kept, err := svc.Resolve(ctx, "+79001234567", "", "")
	if err != nil {
		t.Fatalf("resolve bare: %v", err)
	}
	if kept.Email != "anna@example.com" || kept.FullName != "Anna Smirnova" {
		t.Fatalf("stored profile erased: %+v", kept)
	}
}

func TestResolveRequiresPhone(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Resolve(context.Background(), "   ", "", ""); err == nil {
		t.Fatalf("blank phone must be rejected")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+7 (900) 123-45-67": "+79001234567",
		" +79001234567 ":     "+79001234567",
		"8-900-123-45-67":    "89001234567",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}
