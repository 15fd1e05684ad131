package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paw-haven/paw_haven/internal/donation"
	"github.com/paw-haven/paw_haven/internal/gateway"
	"github.com/paw-haven/paw_haven/internal/identity"
	"github.com/paw-haven/paw_haven/internal/logging"
	"github.com/paw-haven/paw_haven/internal/paymethod"
)

type fakeGateway struct {
	calls  int
	tokens []string
	errFor map[string]error
}

func (g *fakeGateway) CreateIntent(_ context.Context, req gateway.IntentRequest) (gateway.Intent, error) {
	g.calls++
	g.tokens = append(g.tokens, req.Token)
	if err := g.errFor[req.Token]; err != nil {
		return gateway.Intent{}, err
	}
	return gateway.Intent{ProviderID: "pay_recurring_" + uuid.NewString()[:8], Status: "pending"}, nil
}

type fixture struct {
	scheduler *Scheduler
	subs      Repository
	donations donation.Repository
	methods   *paymethod.Service
	users     identity.Repository
	gw        *fakeGateway
}

func newFixture() *fixture {
	subs := NewMemoryRepository()
	donations := donation.NewMemoryRepository()
	methods := paymethod.NewService(paymethod.NewMemoryRepository())
	users := identity.NewMemoryRepository()
	gw := &fakeGateway{errFor: map[string]error{}}
	scheduler := NewScheduler(subs, donations, methods, users, gw, "https://pawhaven.example", "RUB", logging.Discard())
	return &fixture{scheduler: scheduler, subs: subs, donations: donations, methods: methods, users: users, gw: gw}
}

func (f *fixture) seedUser(t *testing.T) identity.User {
	t.Helper()
	user := identity.User{
		ID:        uuid.NewString(),
		Phone:     "+79001234567",
		Email:     "donor@example.com",
		FullName:  "Anna Smirnova",
		CreatedAt: time.Now().UTC(),
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (f *fixture) seedSubscription(t *testing.T, userID, methodID string, nextChargeAt time.Time) Subscription {
	t.Helper()
	sub := Subscription{
		ID:              uuid.NewString(),
		UserID:          userID,
		PaymentMethodID: methodID,
		Amount:          decimal.NewFromInt(300),
		Purpose:         donation.PurposeFood,
		Frequency:       FrequencyMonthly,
		Status:          StatusActive,
		NextChargeAt:    nextChargeAt,
		CreatedAt:       time.Now().UTC(),
	}
	if err := f.subs.Create(context.Background(), sub); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	return sub
}

func TestMaterializeFromDonation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.seedUser(t)

	don := donation.Donation{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Amount:      decimal.NewFromInt(500),
		Purpose:     donation.PurposeMedical,
		IsRecurring: true,
		Provider:    gateway.ProviderName,
		Status:      donation.StatusSucceeded,
	}

	subID, err := f.scheduler.MaterializeFromDonation(ctx, don, "tok_1", "4242")
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	sub, err := f.subs.FindByID(ctx, subID)
	if err != nil {
		t.Fatalf("find subscription: %v", err)
	}
	if sub.Status != StatusActive || sub.Frequency != FrequencyMonthly {
		t.Fatalf("expected active monthly subscription, got %s/%s", sub.Status, sub.Frequency)
	}
	if !sub.Amount.Equal(don.Amount) || sub.Purpose != don.Purpose {
		t.Fatalf("subscription did not inherit donation terms: %+v", sub)
	}
	if sub.PaymentMethodID == "" {
		t.Fatalf("token must register a payment method")
	}
	if sub.NextChargeAt.Before(time.Now().UTC().AddDate(0, 0, 27)) {
		t.Fatalf("first charge must be a month out, got %s", sub.NextChargeAt)
	}

	// The same token for the same user maps to one stored method.
	otherID, err := f.scheduler.MaterializeFromDonation(ctx, don, "tok_1", "4242")
	if err != nil {
		t.Fatalf("second materialize: %v", err)
	}
	other, _ := f.subs.FindByID(ctx, otherID)
	if other.PaymentMethodID != sub.PaymentMethodID {
		t.Fatalf("token deduplication failed: %q vs %q", other.PaymentMethodID, sub.PaymentMethodID)
	}
}

func TestMaterializeWithoutToken(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t)

	subID, err := f.scheduler.MaterializeFromDonation(context.Background(), donation.Donation{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Amount: decimal.NewFromInt(200),
	}, "", "")
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	sub, _ := f.subs.FindByID(context.Background(), subID)
	if sub.PaymentMethodID != "" {
		t.Fatalf("no token must mean no payment method, got %q", sub.PaymentMethodID)
	}
}

func TestRunDueChargesAdvancesFromBoundary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.seedUser(t)

	method, err := f.methods.GetOrCreate(ctx, user.ID, gateway.ProviderName, "tok_1", "4242")
	if err != nil {
		t.Fatalf("register method: %v", err)
	}

	now := time.Now().UTC()
	boundary := now.AddDate(0, 0, -3)
	sub := f.seedSubscription(t, user.ID, method.ID, boundary)

	report, err := f.scheduler.RunDueCharges(ctx, now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Due != 1 || report.Charged != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if f.gw.calls != 1 || f.gw.tokens[0] != "tok_1" {
		t.Fatalf("expected one off-session charge with the stored token, got %+v", f.gw.tokens)
	}

	after, _ := f.subs.FindByID(ctx, sub.ID)
	want := boundary.AddDate(0, 1, 0)
	if !after.NextChargeAt.Equal(want) {
		t.Fatalf("schedule must advance from the previous boundary: got %s want %s", after.NextChargeAt, want)
	}
	if after.LastChargeAt == nil || !after.LastChargeAt.Equal(now) {
		t.Fatalf("last charge time not recorded")
	}

	donations, _ := f.donations.ListRecent(ctx, 0, "")
	if len(donations) != 1 {
		t.Fatalf("expected one charge donation, got %d", len(donations))
	}
	don := donations[0]
	if don.SubscriptionID != sub.ID || !don.IsRecurring || don.Status != donation.StatusPending {
		t.Fatalf("charge donation malformed: %+v", don)
	}
	if don.ProviderPaymentID == "" {
		t.Fatalf("charge donation must carry the provider payment id")
	}
	if don.PublicName != user.FullName {
		t.Fatalf("charge donation must snapshot the owner name, got %q", don.PublicName)
	}
}

func TestRunDueChargesTwiceChargesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.seedUser(t)
	method, _ := f.methods.GetOrCreate(ctx, user.ID, gateway.ProviderName, "tok_1", "4242")

	now := time.Now().UTC()
	f.seedSubscription(t, user.ID, method.ID, now.Add(-time.Hour))

	if _, err := f.scheduler.RunDueCharges(ctx, now); err != nil {
		t.Fatalf("first run: %v", err)
	}
	report, err := f.scheduler.RunDueCharges(ctx, now)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if report.Due != 0 || report.Charged != 0 {
		t.Fatalf("second run must find nothing due: %+v", report)
	}
	if f.gw.calls != 1 {
		t.Fatalf("expected exactly one provider charge, got %d", f.gw.calls)
	}
	donations, _ := f.donations.ListRecent(ctx, 0, "")
	if len(donations) != 1 {
		t.Fatalf("expected one charge donation, got %d", len(donations))
	}
}

func TestRunPausesWithoutUsableMethod(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.seedUser(t)

	now := time.Now().UTC()
	sub := f.seedSubscription(t, user.ID, "", now.Add(-time.Hour))

	report, err := f.scheduler.RunDueCharges(ctx, now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Paused != 1 || report.Charged != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if f.gw.calls != 0 {
		t.Fatalf("no payment method means no provider call, got %d", f.gw.calls)
	}

	after, _ := f.subs.FindByID(ctx, sub.ID)
	if after.Status != StatusPaused {
		t.Fatalf("subscription must pause, got %s", after.Status)
	}

	donations, _ := f.donations.ListRecent(ctx, 0, "")
	if len(donations) != 1 {
		t.Fatalf("the missed attempt must be recorded, got %d rows", len(donations))
	}
	if donations[0].Status != donation.StatusPending || donations[0].ProviderPaymentID != "" {
		t.Fatalf("missed-attempt donation malformed: %+v", donations[0])
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.seedUser(t)

	badMethod, _ := f.methods.GetOrCreate(ctx, user.ID, gateway.ProviderName, "tok_bad", "0000")
	goodMethod, _ := f.methods.GetOrCreate(ctx, user.ID, gateway.ProviderName, "tok_good", "4242")
	f.gw.errFor["tok_bad"] = errors.New("card declined")

	now := time.Now().UTC()
	f.seedSubscription(t, user.ID, badMethod.ID, now.Add(-2*time.Hour))
	f.seedSubscription(t, user.ID, goodMethod.ID, now.Add(-time.Hour))

	report, err := f.scheduler.RunDueCharges(ctx, now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Due != 2 || report.Charged != 1 || report.Failed != 1 {
		t.Fatalf("one failure must not sink the batch: %+v", report)
	}

	failed, _ := f.donations.ListRecent(ctx, 0, donation.StatusFailed)
	if len(failed) != 1 {
		t.Fatalf("declined charge must mark its donation failed, got %d", len(failed))
	}
}

func TestCancelIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.seedUser(t)
	sub := f.seedSubscription(t, user.ID, "", time.Now().UTC().AddDate(0, 1, 0))

	canceled, err := f.scheduler.Cancel(ctx, sub.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != StatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("cancel did not stick: %+v", canceled)
	}

	again, err := f.scheduler.Cancel(ctx, sub.ID)
	if err != nil {
		t.Fatalf("repeat cancel must be a no-op success: %v", err)
	}
	if again.Status != StatusCanceled {
		t.Fatalf("unexpected status: %s", again.Status)
	}
}

func TestCancelUnknown(t *testing.T) {
	f := newFixture()
	if _, err := f.scheduler.Cancel(context.Background(), uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
