package dto

import "github.com/shopspring/decimal"

// ScanRequest is the request body for recording a card scan.
type ScanRequest struct {
	UID string `json:"uid" binding:"required,safe_id,max=64"`
}

// ScanResponse is the response body after a scan.
type ScanResponse struct {
	UID     string `json:"uid"`
	Balance string `json:"balance"`
}

// LastScanResponse is the most recent scan event.
type LastScanResponse struct {
	ID        string `json:"id"`
	UID       string `json:"uid"`
	ScannedAt string `json:"scanned_at"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	UID     string `json:"uid"`
	Balance string `json:"balance"`
}

// RegisterRequest is the request body for registering or updating a
// cardholder profile. Omitted fields are left untouched.
type RegisterRequest struct {
	UID   string  `json:"uid" binding:"required,safe_id,max=64"`
	Email *string `json:"email,omitempty" binding:"omitempty,email"`
	PIN   *string `json:"pin,omitempty" binding:"omitempty,numeric,min=4,max=8"`
}

// RegisterResponse acknowledges a profile update.
type RegisterResponse struct {
	UID string `json:"uid"`
}

// TopUpRequest is the request body for crediting a card.
type TopUpRequest struct {
	UID    string          `json:"uid" binding:"required,safe_id,max=64"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// TopUpResponse is the response body for a successful top-up.
type TopUpResponse struct {
	UID        string `json:"uid"`
	NewBalance string `json:"new_balance"`
}

// DeductRequest is the request body for a payment deduction.
type DeductRequest struct {
	UID    string          `json:"uid" binding:"required,safe_id,max=64"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	PIN    string          `json:"pin,omitempty"`
}

// DeductResponse is the response body for a successful deduction.
type DeductResponse struct {
	UID            string `json:"uid"`
	NewBalance     string `json:"new_balance"`
	Fee            string `json:"fee"`
	RewardEligible bool   `json:"reward_eligible"`
}

// ConvertRequest is the request body for an external-credit conversion.
type ConvertRequest struct {
	UID            string          `json:"uid" binding:"required,safe_id,max=64"`
	ExternalAmount decimal.Decimal `json:"external_amount" binding:"required"`
	Rate           decimal.Decimal `json:"rate" binding:"required"`
}

// ConvertResponse is the response body for a successful conversion.
type ConvertResponse struct {
	UID            string `json:"uid"`
	ExternalAmount string `json:"external_amount"`
	CreditedAmount string `json:"credited_amount"`
	NewBalance     string `json:"new_balance"`
}

// SetLimitRequest is the request body for configuring a spending limit.
type SetLimitRequest struct {
	UID    string          `json:"uid" binding:"required,safe_id,max=64"`
	Kind   string          `json:"kind" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// LimitEntry is one configured limit.
type LimitEntry struct {
	Amount string `json:"amount"`
	SetAt  string `json:"set_at"`
}

// LimitsResponse maps period kind to the configured limit.
type LimitsResponse struct {
	UID    string                `json:"uid"`
	Limits map[string]LimitEntry `json:"limits"`
}

// RemoveLimitResponse acknowledges a limit removal.
type RemoveLimitResponse struct {
	UID     string `json:"uid"`
	Kind    string `json:"kind"`
	Removed bool   `json:"removed"`
}

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// FeeResponse is one collected platform fee.
type FeeResponse struct {
	ID        string `json:"id"`
	UID       string `json:"uid"`
	Email     string `json:"email,omitempty"`
	Fee       string `json:"fee"`
	ChargedAt string `json:"charged_at"`
}

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	UID         string `json:"uid"`
	Amount      string `json:"amount"`
	Fee         string `json:"fee"`
	FinalAmount string `json:"final_amount"`
	CreatedAt   string `json:"created_at"`
}

// ReconcileResponse reports a totalSpent consistency check.
type ReconcileResponse struct {
	UID        string `json:"uid"`
	Recorded   string `json:"recorded"`
	Recomputed string `json:"recomputed"`
	Repaired   bool   `json:"repaired"`
}
