package postgres

import (
	"context"
	"fmt"

	"elitepay/internal/core/domain"
)

// LimitRepo implements ports.LimitRepository.
type LimitRepo struct {
	pool Pool
}

// NewLimitRepo creates a new LimitRepo.
func NewLimitRepo(pool Pool) *LimitRepo {
	return &LimitRepo{pool: pool}
}

// ListByUID returns all active limits for a card, keyed by kind.
func (r *LimitRepo) ListByUID(ctx context.Context, uid string) (map[domain.PeriodKind]domain.Limit, error) {
	query := `SELECT kind, amount, set_at FROM card_limits WHERE uid = $1`

	rows, err := r.pool.Query(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("list limits: %w", err)
	}
	defer rows.Close()

	limits := make(map[domain.PeriodKind]domain.Limit)
	for rows.Next() {
		var (
			kind  string
			limit domain.Limit
		)
		if err := rows.Scan(&kind, &limit.Amount, &limit.SetAt); err != nil {
			return nil, fmt.Errorf("scan limit: %w", err)
		}
		limits[domain.PeriodKind(kind)] = limit
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate limits: %w", err)
	}
	return limits, nil
}

// Upsert overwrites any existing limit of the same kind.
func (r *LimitRepo) Upsert(ctx context.Context, uid string, kind domain.PeriodKind, limit domain.Limit) error {
	query := `INSERT INTO card_limits (uid, kind, amount, set_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid, kind) DO UPDATE SET amount = EXCLUDED.amount, set_at = EXCLUDED.set_at`

	_, err := r.pool.Exec(ctx, query, uid, string(kind), limit.Amount, limit.SetAt)
	if err != nil {
		return fmt.Errorf("upsert limit: %w", err)
	}
	return nil
}

// Delete removes a limit; returns false when no such limit existed.
func (r *LimitRepo) Delete(ctx context.Context, uid string, kind domain.PeriodKind) (bool, error) {
	query := `DELETE FROM card_limits WHERE uid = $1 AND kind = $2`

	tag, err := r.pool.Exec(ctx, query, uid, string(kind))
	if err != nil {
		return false, fmt.Errorf("delete limit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
