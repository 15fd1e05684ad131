package paymethod

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no payment method matches the lookup.
var ErrNotFound = errors.New("payment method not found")

// Repository persists payment methods.
type Repository interface {
	Create(ctx context.Context, method PaymentMethod) error
	FindByToken(ctx context.Context, userID, provider, token string) (PaymentMethod, error)
	FindByID(ctx context.Context, id string) (PaymentMethod, error)
}

// PostgresRepository stores payment methods in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed payment method repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a payment method record.
func (r *PostgresRepository) Create(ctx context.Context, method PaymentMethod) error {
	id, err := uuid.Parse(method.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(method.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO payment_methods (id, user_id, provider, provider_token, last4, is_active, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, method.Provider, method.ProviderToken, method.Last4, method.IsActive, method.CreatedAt.UTC())
	return err
}

// FindByToken looks up a method by its logical identity (user, provider, token).
func (r *PostgresRepository) FindByToken(ctx context.Context, userID, provider, token string) (PaymentMethod, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return PaymentMethod{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, user_id, provider, provider_token, last4, is_active, created_at
        FROM payment_methods WHERE user_id = $1 AND provider = $2 AND provider_token = $3`, uid, provider, token)
	return scanMethod(row)
}

// FindByID fetches a payment method by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (PaymentMethod, error) {
	methodID, err := uuid.Parse(id)
	if err != nil {
		return PaymentMethod{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, user_id, provider, provider_token, last4, is_active, created_at
        FROM payment_methods WHERE id = $1`, methodID)
	return scanMethod(row)
}

func scanMethod(row pgx.Row) (PaymentMethod, error) {
	var (
		id        uuid.UUID
		userID    uuid.UUID
		createdAt time.Time
		m         PaymentMethod
	)
	if err := row.Scan(&id, &userID, &m.Provider, &m.ProviderToken, &m.Last4, &m.IsActive, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentMethod{}, ErrNotFound
		}
		return PaymentMethod{}, err
	}
	m.ID = id.String()
	m.UserID = userID.String()
	m.CreatedAt = createdAt.UTC()
	return m, nil
}
