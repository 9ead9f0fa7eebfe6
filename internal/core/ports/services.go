package ports

import (
	"context"
	"time"

	"elitepay/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- Service Ports (Business Logic) ---

// CardService is the card registry: create-on-first-sight, profile
// updates and balance reads.
type CardService interface {
	// RecordScan appends a scan event, creating the card on first sight.
	RecordScan(ctx context.Context, uid string) (*ScanResult, error)
	// GetBalance returns 0 for an unknown uid without creating it.
	GetBalance(ctx context.Context, uid string) (decimal.Decimal, error)
	// SetProfile updates only the provided fields, creating the card if
	// absent. A nil field is left untouched, never cleared.
	SetProfile(ctx context.Context, uid string, email, pin *string) error
	// LastScan returns the most recent scan event, nil when none exist.
	LastScan(ctx context.Context) (*domain.Scan, error)
}

// ScanResult is the outcome of recording a scan.
type ScanResult struct {
	UID     string
	Balance decimal.Decimal
}

// LimitService manages per-card spending limits.
type LimitService interface {
	SetLimit(ctx context.Context, uid string, kind domain.PeriodKind, amount decimal.Decimal) (*domain.Limit, error)
	// RemoveLimit reports whether a limit of that kind existed.
	RemoveLimit(ctx context.Context, uid string, kind domain.PeriodKind) (bool, error)
	GetLimits(ctx context.Context, uid string) (map[domain.PeriodKind]domain.Limit, error)
}

// LimitChecker evaluates every active limit on a card against a proposed
// principal spend. It runs inside the caller's store transaction so the
// period sums and the balance mutation observe one snapshot.
// Implementations must check kinds in the fixed order daily, weekly,
// monthly and return apperror.ErrLimitExceeded for the first kind whose
// cap would be breached.
type LimitChecker interface {
	Check(ctx context.Context, tx pgx.Tx, uid string, proposed decimal.Decimal, now time.Time) error
}

// LedgerService orchestrates the top-up / deduct / conversion state
// machines and the admin listings.
type LedgerService interface {
	TopUp(ctx context.Context, uid string, amount decimal.Decimal) (*TopUpResult, error)
	Deduct(ctx context.Context, req DeductRequest) (*DeductResult, error)
	ConvertExternalCredit(ctx context.Context, req ConvertRequest) (*ConvertResult, error)
	ListFees(ctx context.Context) ([]domain.FeeRecord, error)
	// ListTransactions returns the full ledger, or only payment entries
	// for one card when uid is non-empty.
	ListTransactions(ctx context.Context, uid string) ([]domain.Transaction, error)
	// ReconcileTotalSpent recomputes the denormalized totalSpent counter
	// from the payment log and repairs it when it has drifted.
	ReconcileTotalSpent(ctx context.Context, uid string) (*ReconcileResult, error)
}

// DeductRequest holds validated input for a deduction.
type DeductRequest struct {
	UID    string
	Amount decimal.Decimal
	PIN    string // optional; required only above the PIN threshold
}

// DeductResult is the outcome of a successful deduction.
type DeductResult struct {
	NewBalance     decimal.Decimal
	Fee            decimal.Decimal
	RewardEligible bool
}

// TopUpResult is the outcome of a successful top-up.
type TopUpResult struct {
	NewBalance decimal.Decimal
}

// ConvertRequest holds validated input for an external-credit conversion.
type ConvertRequest struct {
	UID            string
	ExternalAmount decimal.Decimal
	Rate           decimal.Decimal
}

// ConvertResult is the outcome of a successful conversion.
type ConvertResult struct {
	ExternalAmount decimal.Decimal
	CreditedAmount decimal.Decimal
	NewBalance     decimal.Decimal
}

// ReconcileResult reports a totalSpent consistency check.
type ReconcileResult struct {
	UID        string
	Recorded   decimal.Decimal
	Recomputed decimal.Decimal
	Repaired   bool
}

// --- Notification ---

// Receipt carries the details of a committed mutation for best-effort
// delivery to the cardholder.
type Receipt struct {
	Email           string
	Kind            domain.TransactionType
	Amount          decimal.Decimal // principal
	Fee             decimal.Decimal
	NewBalance      decimal.Decimal
	PreviousBalance *decimal.Decimal // nil for credits
}

// Notifier dispatches receipts after a successful mutation. Dispatch is
// fire-and-forget: the transaction commit is never gated on it and
// failures are logged, not propagated.
type Notifier interface {
	Notify(ctx context.Context, receipt Receipt) error
}

// Mailer sends a single email. Abstracted for testability.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// --- Scan cache ---

// ScanCache is the fast path for the "last seen card" view.
type ScanCache interface {
	SetLast(ctx context.Context, scan *domain.Scan) error
	// GetLast returns nil, nil on a cache miss.
	GetLast(ctx context.Context) (*domain.Scan, error)
}

// --- Admin auth ---

// TokenService handles JWT token operations for the admin dashboard.
type TokenService interface {
	Generate(username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Username string
}

// AuthService validates the admin credential and issues tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}
