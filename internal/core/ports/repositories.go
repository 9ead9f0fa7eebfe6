package ports

import (
	"context"
	"time"

	"elitepay/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CardRepository defines persistence operations for cards.
// Methods accepting pgx.Tx run inside transaction blocks; GetForUpdate
// takes the per-card row lock that serializes the load-decide-save
// sequence for a uid.
type CardRepository interface {
	// Get fetches a card without locking. Returns nil, nil when absent.
	Get(ctx context.Context, uid string) (*domain.Card, error)
	// GetForUpdate fetches a card with a pessimistic row lock.
	GetForUpdate(ctx context.Context, tx pgx.Tx, uid string) (*domain.Card, error)
	// Insert creates a card inside a transaction.
	Insert(ctx context.Context, tx pgx.Tx, card *domain.Card) error
	// Upsert creates the card if absent and is a no-op otherwise.
	Upsert(ctx context.Context, card *domain.Card) error
	// UpdateProfile sets only the provided fields; nil leaves a field as is.
	UpdateProfile(ctx context.Context, uid string, email, pin *string) error
	// UpdateBalances writes the balance and totalSpent counters within a
	// transaction holding the card's row lock.
	UpdateBalances(ctx context.Context, tx pgx.Tx, uid string, balance, totalSpent decimal.Decimal) error
}

// LimitRepository defines persistence for per-card spending limits.
type LimitRepository interface {
	// ListByUID returns all active limits for a card, keyed by kind.
	ListByUID(ctx context.Context, uid string) (map[domain.PeriodKind]domain.Limit, error)
	// Upsert overwrites any existing limit of the same kind.
	Upsert(ctx context.Context, uid string, kind domain.PeriodKind, limit domain.Limit) error
	// Delete removes a limit; returns false when no such limit existed.
	Delete(ctx context.Context, uid string, kind domain.PeriodKind) (bool, error)
}

// ScanRepository defines persistence for the append-only scan log.
type ScanRepository interface {
	Append(ctx context.Context, scan *domain.Scan) error
	// Last returns the most recent scan, or nil, nil when none exist.
	Last(ctx context.Context) (*domain.Scan, error)
}

// FeeRepository defines persistence for the append-only fee log.
type FeeRepository interface {
	Append(ctx context.Context, tx pgx.Tx, fee *domain.FeeRecord) error
	List(ctx context.Context) ([]domain.FeeRecord, error)
}

// TransactionRepository defines persistence for the immutable ledger.
type TransactionRepository interface {
	Append(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	// List returns every transaction in chronological order.
	List(ctx context.Context) ([]domain.Transaction, error)
	// ListPaymentsByUID returns payment entries for a card in
	// chronological order.
	ListPaymentsByUID(ctx context.Context, uid string) ([]domain.Transaction, error)
	// SumPaymentsSince sums payment principals for a card with
	// time >= since (inclusive boundary). Runs inside the caller's
	// transaction so the sum and the balance mutation see one snapshot.
	SumPaymentsSince(ctx context.Context, tx pgx.Tx, uid string, since time.Time) (decimal.Decimal, error)
	// SumPayments sums all payment principals for a card.
	SumPayments(ctx context.Context, tx pgx.Tx, uid string) (decimal.Decimal, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
