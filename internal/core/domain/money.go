package domain

import "github.com/shopspring/decimal"

// Round2 rounds a currency amount to 2 decimal places, half away from
// zero (half-up for the non-negative amounts this ledger handles).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FeePolicy computes the platform surcharge on deductions: a flat Rate
// applied to the principal once it exceeds Threshold. Small transactions
// are exempt.
type FeePolicy struct {
	Threshold decimal.Decimal // fee applies strictly above this
	Rate      decimal.Decimal
}

// DefaultFeePolicy is 2% above 500.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		Threshold: decimal.NewFromInt(500),
		Rate:      decimal.NewFromFloat(0.02),
	}
}

// ComputeFee returns the fee for a principal amount. Rounding is applied
// once, not compounded.
func (p FeePolicy) ComputeFee(amount decimal.Decimal) decimal.Decimal {
	if amount.GreaterThan(p.Threshold) {
		return Round2(amount.Mul(p.Rate))
	}
	return decimal.Zero
}

// FinalAmount returns the sum actually debited: principal plus fee.
func (p FeePolicy) FinalAmount(amount, fee decimal.Decimal) decimal.Decimal {
	return Round2(amount.Add(fee))
}
