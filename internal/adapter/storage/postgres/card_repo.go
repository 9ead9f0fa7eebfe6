package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"elitepay/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CardRepo implements ports.CardRepository.
type CardRepo struct {
	pool Pool
}

// NewCardRepo creates a new CardRepo.
func NewCardRepo(pool Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

const cardColumns = `uid, email, pin, balance, total_spent, created_at, updated_at`

// Get fetches a card by uid without locking.
func (r *CardRepo) Get(ctx context.Context, uid string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE uid = $1`

	c := &domain.Card{}
	err := r.pool.QueryRow(ctx, query, uid).Scan(
		&c.UID, &c.Email, &c.PIN, &c.Balance, &c.TotalSpent,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card: %w", err)
	}
	return c, nil
}

// GetForUpdate fetches a card with a pessimistic row lock.
// This MUST be called within a transaction.
func (r *CardRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, uid string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE uid = $1 FOR UPDATE`

	c := &domain.Card{}
	err := tx.QueryRow(ctx, query, uid).Scan(
		&c.UID, &c.Email, &c.PIN, &c.Balance, &c.TotalSpent,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card for update: %w", err)
	}
	return c, nil
}

// Insert creates a card within a transaction.
func (r *CardRepo) Insert(ctx context.Context, tx pgx.Tx, card *domain.Card) error {
	query := `INSERT INTO cards (uid, email, pin, balance, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		card.UID, card.Email, card.PIN, card.Balance, card.TotalSpent,
		card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// Upsert creates the card if absent and leaves an existing row untouched.
func (r *CardRepo) Upsert(ctx context.Context, card *domain.Card) error {
	query := `INSERT INTO cards (uid, email, pin, balance, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (uid) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		card.UID, card.Email, card.PIN, card.Balance, card.TotalSpent,
		card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert card: %w", err)
	}
	return nil
}

// UpdateProfile sets only the provided fields; nil leaves a field as is.
func (r *CardRepo) UpdateProfile(ctx context.Context, uid string, email, pin *string) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	idx := 1

	if email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", idx))
		args = append(args, *email)
		idx++
	}
	if pin != nil {
		sets = append(sets, fmt.Sprintf("pin = $%d", idx))
		args = append(args, *pin)
		idx++
	}
	args = append(args, uid)

	query := fmt.Sprintf("UPDATE cards SET %s WHERE uid = $%d", strings.Join(sets, ", "), idx)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update card profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card not found: %s", uid)
	}
	return nil
}

// UpdateBalances writes the balance and totalSpent counters within a
// transaction holding the card's row lock.
func (r *CardRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, uid string, balance, totalSpent decimal.Decimal) error {
	query := `UPDATE cards SET balance = $1, total_spent = $2, updated_at = NOW() WHERE uid = $3`

	tag, err := tx.Exec(ctx, query, balance, totalSpent, uid)
	if err != nil {
		return fmt.Errorf("update card balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card not found: %s", uid)
	}
	return nil
}
