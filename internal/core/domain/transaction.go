package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement.
type TransactionType string

const (
	TransactionTypeTopup         TransactionType = "topup"
	TransactionTypePayment       TransactionType = "payment"
	TransactionTypeEthConversion TransactionType = "eth_conversion"
)

// Transaction is the authoritative append-only ledger record. Entries are
// never edited or removed; all derived quantities (period spend, the
// totalSpent counter) must be reproducible by scanning this log.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Type        TransactionType `json:"type"`
	UID         string          `json:"uid"`
	Amount      decimal.Decimal `json:"amount"`       // principal, excluding fee
	Fee         decimal.Decimal `json:"fee"`          // zero if none
	FinalAmount decimal.Decimal `json:"final_amount"` // amount actually moved
	Time        time.Time       `json:"time"`
}

// IsPayment reports whether this entry debits the card.
func (t *Transaction) IsPayment() bool {
	return t.Type == TransactionTypePayment
}

// Scan is an append-only card-seen event. Scans only derive the
// "last seen card" convenience view; they never drive balance decisions.
type Scan struct {
	ID   uuid.UUID `json:"id"`
	UID  string    `json:"uid"`
	Time time.Time `json:"time"`
}

// FeeRecord is an append-only platform-fee event, recorded only when a
// deduction incurs a non-zero fee.
type FeeRecord struct {
	ID    uuid.UUID       `json:"id"`
	UID   string          `json:"uid"`
	Email string          `json:"email"`
	Fee   decimal.Decimal `json:"fee"`
	Time  time.Time       `json:"time"`
}
