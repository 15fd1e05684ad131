package donation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates no donation matches the lookup.
var ErrNotFound = errors.New("donation not found")

// Repository persists donations.
type Repository interface {
	Create(ctx context.Context, don Donation) error
	Update(ctx context.Context, don Donation) error
	FindByID(ctx context.Context, id string) (Donation, error)
	FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (Donation, error)
	ListRecent(ctx context.Context, limit int, status Status) ([]Donation, error)
	ListCountedBetween(ctx context.Context, from, to time.Time) ([]Donation, error)
}

// PostgresRepository stores donations in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed donation repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const donationColumns = `id, user_id, subscription_id, public_name, COALESCE(phone, ''), COALESCE(email, ''),
        amount, purpose, is_recurring, provider, COALESCE(provider_payment_id, ''), status, paid_at, created_at`

// Create inserts a donation row.
func (r *PostgresRepository) Create(ctx context.Context, don Donation) error {
	id, err := uuid.Parse(don.ID)
	if err != nil {
		return err
	}
	userID, err := nullableUUID(don.UserID)
	if err != nil {
		return err
	}
	subID, err := nullableUUID(don.SubscriptionID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO donations
        (id, user_id, subscription_id, public_name, phone, email, amount, purpose, is_recurring, provider, provider_payment_id, status, paid_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id, userID, subID, don.PublicName, nullableText(don.Phone), nullableText(don.Email),
		don.Amount, string(don.Purpose), don.IsRecurring, don.Provider,
		nullableText(don.ProviderPaymentID), string(don.Status), don.PaidAt, don.CreatedAt.UTC())
	return err
}

// Update persists the mutable settlement and linkage fields.
func (r *PostgresRepository) Update(ctx context.Context, don Donation) error {
	id, err := uuid.Parse(don.ID)
	if err != nil {
		return err
	}
	subID, err := nullableUUID(don.SubscriptionID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE donations
        SET subscription_id = $1, provider = $2, provider_payment_id = $3, status = $4, paid_at = $5
        WHERE id = $6`,
		subID, don.Provider, nullableText(don.ProviderPaymentID), string(don.Status), don.PaidAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID fetches a donation by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Donation, error) {
	donID, err := uuid.Parse(id)
	if err != nil {
		return Donation{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+donationColumns+` FROM donations WHERE id = $1`, donID)
	return scanDonation(row)
}

// FindByProviderPaymentID fetches the donation that originated a provider payment.
func (r *PostgresRepository) FindByProviderPaymentID(ctx context.Context, providerPaymentID string) (Donation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+donationColumns+` FROM donations WHERE provider_payment_id = $1`, providerPaymentID)
	return scanDonation(row)
}

// ListRecent returns the most recent donations, optionally filtered by status.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int, status Status) ([]Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDonations(rows)
}

// ListCountedBetween returns donations that count toward reporting totals
// (succeeded plus still-pending ones) whose effective date falls in [from, to).
func (r *PostgresRepository) ListCountedBetween(ctx context.Context, from, to time.Time) ([]Donation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+donationColumns+` FROM donations
        WHERE status IN ('succeeded', 'pending')
          AND COALESCE(paid_at, created_at) >= $1
          AND COALESCE(paid_at, created_at) < $2`, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDonations(rows)
}

func collectDonations(rows pgx.Rows) ([]Donation, error) {
	donations := []Donation{}
	for rows.Next() {
		don, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, don)
	}
	return donations, rows.Err()
}

func scanDonation(row pgx.Row) (Donation, error) {
	var (
		id        uuid.UUID
		userID    *uuid.UUID
		subID     *uuid.UUID
		amount    decimal.Decimal
		purpose   string
		status    string
		paidAt    *time.Time
		createdAt time.Time
		don       Donation
	)
	err := row.Scan(&id, &userID, &subID, &don.PublicName, &don.Phone, &don.Email,
		&amount, &purpose, &don.IsRecurring, &don.Provider, &don.ProviderPaymentID,
		&status, &paidAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Donation{}, ErrNotFound
		}
		return Donation{}, err
	}
	don.ID = id.String()
	if userID != nil {
		don.UserID = userID.String()
	}
	if subID != nil {
		don.SubscriptionID = subID.String()
	}
	don.Amount = amount
	don.Purpose = Purpose(purpose)
	don.Status = Status(status)
	don.PaidAt = paidAt
	don.CreatedAt = createdAt.UTC()
	return don, nil
}

func nullableUUID(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
