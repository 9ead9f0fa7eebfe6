package postgres

import (
	"context"
	"fmt"

	"elitepay/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// FeeRepo implements ports.FeeRepository over the append-only fee log.
type FeeRepo struct {
	pool Pool
}

// NewFeeRepo creates a new FeeRepo.
func NewFeeRepo(pool Pool) *FeeRepo {
	return &FeeRepo{pool: pool}
}

// Append records a collected platform fee within a transaction.
func (r *FeeRepo) Append(ctx context.Context, tx pgx.Tx, fee *domain.FeeRecord) error {
	query := `INSERT INTO fees (id, uid, email, fee, charged_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, fee.ID, fee.UID, fee.Email, fee.Fee, fee.Time)
	if err != nil {
		return fmt.Errorf("insert fee: %w", err)
	}
	return nil
}

// List returns the fee log in chronological order.
func (r *FeeRepo) List(ctx context.Context) ([]domain.FeeRecord, error) {
	query := `SELECT id, uid, email, fee, charged_at FROM fees ORDER BY charged_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	defer rows.Close()

	var fees []domain.FeeRecord
	for rows.Next() {
		var f domain.FeeRecord
		if err := rows.Scan(&f.ID, &f.UID, &f.Email, &f.Fee, &f.Time); err != nil {
			return nil, fmt.Errorf("scan fee: %w", err)
		}
		fees = append(fees, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fees: %w", err)
	}
	return fees, nil
}
