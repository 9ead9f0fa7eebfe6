package service

import (
	"context"
	"fmt"
	"time"

	"elitepay/internal/core/domain"
	"elitepay/internal/core/ports"
	"elitepay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerPolicy bundles the business thresholds the transaction processor
// enforces.
type LedgerPolicy struct {
	Fee             domain.FeePolicy
	PinThreshold    decimal.Decimal // PIN required strictly above this principal
	RewardThreshold decimal.Decimal // totalSpent strictly above this = reward eligible
}

// DefaultLedgerPolicy is PIN above 100, 2% fee above 500, rewards above
// 5000 lifetime spend.
func DefaultLedgerPolicy() LedgerPolicy {
	return LedgerPolicy{
		Fee:             domain.DefaultFeePolicy(),
		PinThreshold:    decimal.NewFromInt(100),
		RewardThreshold: decimal.NewFromInt(5000),
	}
}

// LedgerServiceImpl implements ports.LedgerService. Every mutation runs
// as one store transaction holding the card's row lock, so two
// concurrent deductions against the same uid cannot both read the same
// starting balance.
type LedgerServiceImpl struct {
	cardRepo   ports.CardRepository
	txRepo     ports.TransactionRepository
	feeRepo    ports.FeeRepository
	limits     ports.LimitChecker
	transactor ports.DBTransactor
	notifier   ports.Notifier // nil = receipts disabled
	policy     LedgerPolicy
	loc        *time.Location
	log        zerolog.Logger

	now func() time.Time
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	cardRepo ports.CardRepository,
	txRepo ports.TransactionRepository,
	feeRepo ports.FeeRepository,
	limits ports.LimitChecker,
	transactor ports.DBTransactor,
	notifier ports.Notifier,
	policy LedgerPolicy,
	loc *time.Location,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		cardRepo:   cardRepo,
		txRepo:     txRepo,
		feeRepo:    feeRepo,
		limits:     limits,
		transactor: transactor,
		notifier:   notifier,
		policy:     policy,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}
}

// TopUp credits a card, creating it on first reference.
func (s *LedgerServiceImpl) TopUp(ctx context.Context, uid string, amount decimal.Decimal) (*ports.TopUpResult, error) {
	if uid == "" {
		return nil, apperror.ErrMissingUID()
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := s.now().In(s.loc)

	card, err := s.cardRepo.GetForUpdate(ctx, dbTx, uid)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("lock card: %w", err))
	}
	if card == nil {
		card = domain.NewCard(uid, now)
		if err := s.cardRepo.Insert(ctx, dbTx, card); err != nil {
			return nil, apperror.ErrStorage(fmt.Errorf("create card: %w", err))
		}
	}

	newBalance := card.Balance.Add(amount)
	if err := s.cardRepo.UpdateBalances(ctx, dbTx, uid, newBalance, card.TotalSpent); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("update balance: %w", err))
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypeTopup,
		UID:         uid,
		Amount:      amount,
		Fee:         decimal.Zero,
		FinalAmount: amount,
		Time:        now,
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("append transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}

	s.dispatchReceipt(ctx, ports.Receipt{
		Email:      card.Email,
		Kind:       domain.TransactionTypeTopup,
		Amount:     amount,
		Fee:        decimal.Zero,
		NewBalance: newBalance,
	})

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("uid", uid).
		Str("amount", amount.StringFixed(2)).
		Msg("topup processed")

	return &ports.TopUpResult{NewBalance: newBalance}, nil
}

// Deduct debits a card. Gate order is fixed: existence, amount, PIN,
// limits, then balance. The fee is known only once the transaction is
// otherwise eligible, and the balance check runs against principal+fee.
func (s *LedgerServiceImpl) Deduct(ctx context.Context, req ports.DeductRequest) (*ports.DeductResult, error) {
	if req.UID == "" {
		return nil, apperror.ErrMissingUID()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Unlike top-up, deduct never creates the card.
	card, err := s.cardRepo.GetForUpdate(ctx, dbTx, req.UID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("lock card: %w", err))
	}
	if card == nil {
		return nil, apperror.ErrCardNotFound()
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	now := s.now().In(s.loc)

	// PIN gate: only above the threshold; boundary amounts need no PIN.
	if req.Amount.GreaterThan(s.policy.PinThreshold) {
		if !card.HasPIN() {
			return nil, apperror.ErrPinNotSet()
		}
		if req.PIN != card.PIN {
			return nil, apperror.ErrIncorrectPin()
		}
	}

	// Limit gate: principal only, before the fee is known.
	if err := s.limits.Check(ctx, dbTx, req.UID, req.Amount, now); err != nil {
		return nil, err
	}

	fee := s.policy.Fee.ComputeFee(req.Amount)
	finalAmount := s.policy.Fee.FinalAmount(req.Amount, fee)

	// Balance gate runs against principal+fee: a borderline balance may
	// fail here even though the principal alone would have fit.
	if card.Balance.LessThan(finalAmount) {
		return nil, apperror.ErrInsufficientBalance()
	}

	previousBalance := card.Balance
	newBalance := domain.Round2(card.Balance.Sub(finalAmount))
	newTotalSpent := card.TotalSpent.Add(req.Amount)

	if err := s.cardRepo.UpdateBalances(ctx, dbTx, req.UID, newBalance, newTotalSpent); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("update balance: %w", err))
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypePayment,
		UID:         req.UID,
		Amount:      req.Amount,
		Fee:         fee,
		FinalAmount: finalAmount,
		Time:        now,
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("append transaction: %w", err))
	}

	if fee.IsPositive() {
		feeRec := &domain.FeeRecord{
			ID:    uuid.New(),
			UID:   req.UID,
			Email: card.Email,
			Fee:   fee,
			Time:  now,
		}
		if err := s.feeRepo.Append(ctx, dbTx, feeRec); err != nil {
			return nil, apperror.ErrStorage(fmt.Errorf("append fee: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}

	s.dispatchReceipt(ctx, ports.Receipt{
		Email:           card.Email,
		Kind:            domain.TransactionTypePayment,
		Amount:          req.Amount,
		Fee:             fee,
		NewBalance:      newBalance,
		PreviousBalance: &previousBalance,
	})

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("uid", req.UID).
		Str("amount", req.Amount.StringFixed(2)).
		Str("fee", fee.StringFixed(2)).
		Msg("payment processed")

	return &ports.DeductResult{
		NewBalance:     newBalance,
		Fee:            fee,
		RewardEligible: newTotalSpent.GreaterThan(s.policy.RewardThreshold),
	}, nil
}

// ConvertExternalCredit credits a card with an external reward converted
// at the given rate. The credited amount is rounded once.
func (s *LedgerServiceImpl) ConvertExternalCredit(ctx context.Context, req ports.ConvertRequest) (*ports.ConvertResult, error) {
	if req.UID == "" {
		return nil, apperror.ErrMissingUID()
	}
	if req.ExternalAmount.LessThanOrEqual(decimal.Zero) || req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	card, err := s.cardRepo.GetForUpdate(ctx, dbTx, req.UID)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("lock card: %w", err))
	}
	if card == nil {
		return nil, apperror.ErrCardNotFound()
	}

	now := s.now().In(s.loc)
	credited := domain.Round2(req.ExternalAmount.Mul(req.Rate))
	newBalance := card.Balance.Add(credited)

	if err := s.cardRepo.UpdateBalances(ctx, dbTx, req.UID, newBalance, card.TotalSpent); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("update balance: %w", err))
	}

	txn := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypeEthConversion,
		UID:         req.UID,
		Amount:      credited,
		Fee:         decimal.Zero,
		FinalAmount: credited,
		Time:        now,
	}
	if err := s.txRepo.Append(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("append transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}

	s.dispatchReceipt(ctx, ports.Receipt{
		Email:      card.Email,
		Kind:       domain.TransactionTypeEthConversion,
		Amount:     credited,
		Fee:        decimal.Zero,
		NewBalance: newBalance,
	})

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("uid", req.UID).
		Str("credited", credited.StringFixed(2)).
		Msg("external credit converted")

	return &ports.ConvertResult{
		ExternalAmount: req.ExternalAmount,
		CreditedAmount: credited,
		NewBalance:     newBalance,
	}, nil
}

// ListFees returns the platform-fee log in chronological order.
func (s *LedgerServiceImpl) ListFees(ctx context.Context) ([]domain.FeeRecord, error) {
	fees, err := s.feeRepo.List(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list fees: %w", err))
	}
	return fees, nil
}

// ListTransactions returns the full ledger, or the payment entries for
// one card when uid is non-empty.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, uid string) ([]domain.Transaction, error) {
	var (
		txns []domain.Transaction
		err  error
	)
	if uid == "" {
		txns, err = s.txRepo.List(ctx)
	} else {
		txns, err = s.txRepo.ListPaymentsByUID(ctx, uid)
	}
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// ReconcileTotalSpent recomputes the denormalized totalSpent counter
// from the payment log and repairs it when the two disagree. The log is
// ground truth; the counter only exists for fast reads.
func (s *LedgerServiceImpl) ReconcileTotalSpent(ctx context.Context, uid string) (*ports.ReconcileResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	card, err := s.cardRepo.GetForUpdate(ctx, dbTx, uid)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("lock card: %w", err))
	}
	if card == nil {
		return nil, apperror.ErrCardNotFound()
	}

	recomputed, err := s.txRepo.SumPayments(ctx, dbTx, uid)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("sum payments: %w", err))
	}

	repaired := !recomputed.Equal(card.TotalSpent)
	if repaired {
		if err := s.cardRepo.UpdateBalances(ctx, dbTx, uid, card.Balance, recomputed); err != nil {
			return nil, apperror.ErrStorage(fmt.Errorf("repair totalSpent: %w", err))
		}
		s.log.Warn().
			Str("uid", uid).
			Str("recorded", card.TotalSpent.StringFixed(2)).
			Str("recomputed", recomputed.StringFixed(2)).
			Msg("totalSpent counter drifted from ledger, repaired")
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("commit tx: %w", err))
	}

	return &ports.ReconcileResult{
		UID:        uid,
		Recorded:   card.TotalSpent,
		Recomputed: recomputed,
		Repaired:   repaired,
	}, nil
}

// dispatchReceipt hands the receipt to the notifier. Delivery is
// best-effort: failures are logged and never affect the committed
// transaction.
func (s *LedgerServiceImpl) dispatchReceipt(ctx context.Context, receipt ports.Receipt) {
	if s.notifier == nil || receipt.Email == "" {
		return
	}
	if err := s.notifier.Notify(ctx, receipt); err != nil {
		s.log.Warn().Err(err).Str("email", receipt.Email).Msg("receipt dispatch failed")
	}
}
