package postgres

import (
	"context"
	"errors"
	"fmt"

	"elitepay/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ScanRepo implements ports.ScanRepository over the append-only scan log.
type ScanRepo struct {
	pool Pool
}

// NewScanRepo creates a new ScanRepo.
func NewScanRepo(pool Pool) *ScanRepo {
	return &ScanRepo{pool: pool}
}

// Append records a scan event.
func (r *ScanRepo) Append(ctx context.Context, scan *domain.Scan) error {
	query := `INSERT INTO scans (id, uid, scanned_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, scan.ID, scan.UID, scan.Time)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// Last returns the most recent scan, or nil, nil when none exist.
func (r *ScanRepo) Last(ctx context.Context) (*domain.Scan, error) {
	query := `SELECT id, uid, scanned_at FROM scans ORDER BY scanned_at DESC, id DESC LIMIT 1`

	s := &domain.Scan{}
	err := r.pool.QueryRow(ctx, query).Scan(&s.ID, &s.UID, &s.Time)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last scan: %w", err)
	}
	return s, nil
}
