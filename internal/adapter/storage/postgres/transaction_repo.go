package postgres

import (
	"context"
	"fmt"
	"time"

	"elitepay/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransactionRepo implements ports.TransactionRepository over the
// immutable ledger. Rows are only ever inserted.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `id, type, uid, amount, fee, final_amount, created_at`

// Append records a ledger entry within a transaction.
func (r *TransactionRepo) Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, type, uid, amount, fee, final_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		t.ID, string(t.Type), t.UID, t.Amount, t.Fee, t.FinalAmount, t.Time,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// List returns every ledger entry in chronological order.
func (r *TransactionRepo) List(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListPaymentsByUID returns payment entries for a card in chronological
// order.
func (r *TransactionRepo) ListPaymentsByUID(ctx context.Context, uid string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE uid = $1 AND type = $2 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, uid, string(domain.TransactionTypePayment))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// SumPaymentsSince sums payment principals for a card with
// created_at >= since. Runs inside the caller's transaction.
func (r *TransactionRepo) SumPaymentsSince(ctx context.Context, tx pgx.Tx, uid string, since time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE uid = $1 AND type = $2 AND created_at >= $3`

	var sum decimal.Decimal
	err := tx.QueryRow(ctx, query, uid, string(domain.TransactionTypePayment), since).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum payments since: %w", err)
	}
	return sum, nil
}

// SumPayments sums all payment principals for a card.
func (r *TransactionRepo) SumPayments(ctx context.Context, tx pgx.Tx, uid string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE uid = $1 AND type = $2`

	var sum decimal.Decimal
	err := tx.QueryRow(ctx, query, uid, string(domain.TransactionTypePayment)).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}

func scanTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	for rows.Next() {
		var (
			t   domain.Transaction
			typ string
		)
		if err := rows.Scan(&t.ID, &typ, &t.UID, &t.Amount, &t.Fee, &t.FinalAmount, &t.Time); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(typ)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txns, nil
}
