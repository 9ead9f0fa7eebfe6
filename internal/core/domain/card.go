package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card represents one physical RFID tag bound to at most one user.
// A card is created implicitly on first scan (or first mutating reference)
// and is never deleted.
type Card struct {
	UID        string               `json:"uid"`
	Email      string               `json:"email"`
	PIN        string               `json:"-"` // empty = not set; never expose
	Balance    decimal.Decimal      `json:"balance"`
	TotalSpent decimal.Decimal      `json:"total_spent"`
	Limits     map[PeriodKind]Limit `json:"limits,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// NewCard returns a default card for a freshly scanned uid.
func NewCard(uid string, now time.Time) *Card {
	return &Card{
		UID:        uid,
		Balance:    decimal.Zero,
		TotalSpent: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// HasPIN reports whether a PIN has been registered for this card.
func (c *Card) HasPIN() bool {
	return c.PIN != ""
}

// Limit is a per-period spending cap. At most one limit exists per
// period kind; each active limit is enforced independently.
type Limit struct {
	Amount decimal.Decimal `json:"amount"`
	SetAt  time.Time       `json:"set_at"`
}
