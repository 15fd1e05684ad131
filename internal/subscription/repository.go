package subscription

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/paw-haven/paw_haven/internal/donation"
)

// ErrNotFound indicates no subscription matches the lookup.
var ErrNotFound = errors.New("subscription not found")

// Repository persists subscriptions. AdvanceSchedule is a compare-and-swap on
// next_charge_at so overlapping scheduler runs cannot claim the same due
// period twice.
type Repository interface {
	Create(ctx context.Context, sub Subscription) error
	FindByID(ctx context.Context, id string) (Subscription, error)
	List(ctx context.Context, userID string, status Status) ([]Subscription, error)
	ListDue(ctx context.Context, now time.Time) ([]Subscription, error)
	AdvanceSchedule(ctx context.Context, id string, prevNext, newNext, chargedAt time.Time) (bool, error)
	SetStatus(ctx context.Context, id string, status Status, canceledAt *time.Time) error
}

// PostgresRepository stores subscriptions in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed subscription repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const subscriptionColumns = `id, user_id, payment_method_id, amount, purpose, frequency, status,
        next_charge_at, last_charge_at, created_at, canceled_at`

// Create inserts a subscription row.
func (r *PostgresRepository) Create(ctx context.Context, sub Subscription) error {
	id, err := uuid.Parse(sub.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(sub.UserID)
	if err != nil {
		return err
	}
	var methodID any
	if sub.PaymentMethodID != "" {
		parsed, err := uuid.Parse(sub.PaymentMethodID)
		if err != nil {
			return err
		}
		methodID = parsed
	}
	_, err = r.db.Exec(ctx, `INSERT INTO subscriptions
        (id, user_id, payment_method_id, amount, purpose, frequency, status, next_charge_at, last_charge_at, created_at, canceled_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, userID, methodID, sub.Amount, string(sub.Purpose), string(sub.Frequency), string(sub.Status),
		sub.NextChargeAt.UTC(), sub.LastChargeAt, sub.CreatedAt.UTC(), sub.CanceledAt)
	return err
}

// FindByID fetches a subscription by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Subscription, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return Subscription{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, subID)
	return scanSubscription(row)
}

// List returns subscriptions filtered by owner and/or status, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, status Status) ([]Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions`
	args := []any{}
	where := ""
	if userID != "" {
		uid, err := uuid.Parse(userID)
		if err != nil {
			return []Subscription{}, nil
		}
		args = append(args, uid)
		where = ` WHERE user_id = $` + strconv.Itoa(len(args))
	}
	if status != "" {
		args = append(args, string(status))
		if where == "" {
			where = ` WHERE status = $` + strconv.Itoa(len(args))
		} else {
			where += ` AND status = $` + strconv.Itoa(len(args))
		}
	}
	query += where + ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

// ListDue returns active subscriptions whose next charge time has passed.
func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]Subscription, error) {
	rows, err := r.db.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions
        WHERE status = 'active' AND next_charge_at <= $1 ORDER BY next_charge_at`, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

// AdvanceSchedule moves next_charge_at forward only if it still holds the
// expected previous value and the subscription is still active. Returns false
// when another run already claimed the period.
func (r *PostgresRepository) AdvanceSchedule(ctx context.Context, id string, prevNext, newNext, chargedAt time.Time) (bool, error) {
	subID, err := uuid.Parse(id)
	if err != nil {
		return false, ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE subscriptions
        SET next_charge_at = $1, last_charge_at = $2
        WHERE id = $3 AND status = 'active' AND next_charge_at = $4`,
		newNext.UTC(), chargedAt.UTC(), subID, prevNext.UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// SetStatus updates the billing state and, for cancellation, its timestamp.
func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status Status, canceledAt *time.Time) error {
	subID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE subscriptions SET status = $1, canceled_at = $2 WHERE id = $3`,
		string(status), canceledAt, subID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectSubscriptions(rows pgx.Rows) ([]Subscription, error) {
	subs := []Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSubscription(row pgx.Row) (Subscription, error) {
	var (
		id           uuid.UUID
		userID       uuid.UUID
		methodID     *uuid.UUID
		amount       decimal.Decimal
		purpose      string
		frequency    string
		status       string
		nextChargeAt time.Time
		lastChargeAt *time.Time
		createdAt    time.Time
		canceledAt   *time.Time
		sub          Subscription
	)
	err := row.Scan(&id, &userID, &methodID, &amount, &purpose, &frequency, &status,
		&nextChargeAt, &lastChargeAt, &createdAt, &canceledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, err
	}
	sub.ID = id.String()
	sub.UserID = userID.String()
	if methodID != nil {
		sub.PaymentMethodID = methodID.String()
	}
	sub.Amount = amount
	sub.Purpose = donation.Purpose(purpose)
	sub.Frequency = Frequency(frequency)
	sub.Status = Status(status)
	sub.NextChargeAt = nextChargeAt.UTC()
	sub.LastChargeAt = lastChargeAt
	sub.CreatedAt = createdAt.UTC()
	sub.CanceledAt = canceledAt
	return sub, nil
}
