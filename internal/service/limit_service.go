package service

import (
	"context"
	"fmt"
	"time"

	"elitepay/internal/core/domain"
	"elitepay/internal/core/ports"
	"elitepay/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LimitServiceImpl implements ports.LimitService and ports.LimitChecker.
// Period spend is always derived from the transaction log, never from a
// separately maintained counter.
type LimitServiceImpl struct {
	limitRepo ports.LimitRepository
	cardRepo  ports.CardRepository
	txRepo    ports.TransactionRepository
	loc       *time.Location
	log       zerolog.Logger

	now func() time.Time
}

// NewLimitService creates a new LimitServiceImpl. loc is the reference
// location for period-window boundaries.
func NewLimitService(
	limitRepo ports.LimitRepository,
	cardRepo ports.CardRepository,
	txRepo ports.TransactionRepository,
	loc *time.Location,
	log zerolog.Logger,
) *LimitServiceImpl {
	return &LimitServiceImpl{
		limitRepo: limitRepo,
		cardRepo:  cardRepo,
		txRepo:    txRepo,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// SetLimit upserts a spending limit, overwriting any existing entry of
// the same kind. The card is created if it has never been seen.
func (s *LimitServiceImpl) SetLimit(ctx context.Context, uid string, kind domain.PeriodKind, amount decimal.Decimal) (*domain.Limit, error) {
	if uid == "" {
		return nil, apperror.ErrMissingUID()
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	now := s.now().In(s.loc)
	if err := s.cardRepo.Upsert(ctx, domain.NewCard(uid, now)); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("ensure card: %w", err))
	}

	limit := domain.Limit{Amount: amount, SetAt: now}
	if err := s.limitRepo.Upsert(ctx, uid, kind, limit); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("upsert limit: %w", err))
	}

	s.log.Info().
		Str("uid", uid).
		Str("kind", string(kind)).
		Str("amount", amount.StringFixed(2)).
		Msg("spending limit set")

	return &limit, nil
}

// RemoveLimit deletes a limit entry; removing an absent kind is not an
// error, only reported.
func (s *LimitServiceImpl) RemoveLimit(ctx context.Context, uid string, kind domain.PeriodKind) (bool, error) {
	card, err := s.cardRepo.Get(ctx, uid)
	if err != nil {
		return false, apperror.ErrStorage(fmt.Errorf("get card: %w", err))
	}
	if card == nil {
		return false, apperror.ErrCardNotFound()
	}

	removed, err := s.limitRepo.Delete(ctx, uid, kind)
	if err != nil {
		return false, apperror.ErrStorage(fmt.Errorf("delete limit: %w", err))
	}

	if removed {
		s.log.Info().Str("uid", uid).Str("kind", string(kind)).Msg("spending limit removed")
	}
	return removed, nil
}

// GetLimits returns all active limits for a card; an unknown uid simply
// has none.
func (s *LimitServiceImpl) GetLimits(ctx context.Context, uid string) (map[domain.PeriodKind]domain.Limit, error) {
	limits, err := s.limitRepo.ListByUID(ctx, uid)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("list limits: %w", err))
	}
	return limits, nil
}

// Check evaluates the proposed principal against every active limit in
// the fixed order daily, weekly, monthly. The inclusive window boundary
// means a payment stamped exactly at the period start counts toward the
// new period. Fees never count against limits.
func (s *LimitServiceImpl) Check(ctx context.Context, tx pgx.Tx, uid string, proposed decimal.Decimal, now time.Time) error {
	limits, err := s.limitRepo.ListByUID(ctx, uid)
	if err != nil {
		return apperror.ErrStorage(fmt.Errorf("list limits: %w", err))
	}
	if len(limits) == 0 {
		return nil
	}

	local := now.In(s.loc)
	for _, kind := range domain.PeriodKinds {
		limit, ok := limits[kind]
		if !ok {
			continue
		}

		spend, err := s.txRepo.SumPaymentsSince(ctx, tx, uid, domain.PeriodStart(kind, local))
		if err != nil {
			return apperror.ErrStorage(fmt.Errorf("sum %s spend: %w", kind, err))
		}

		if spend.Add(proposed).GreaterThan(limit.Amount) {
			return apperror.ErrLimitExceeded(string(kind), limit.Amount, spend)
		}
	}
	return nil
}
