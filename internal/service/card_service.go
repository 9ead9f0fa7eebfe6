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

// CardServiceImpl implements ports.CardService.
type CardServiceImpl struct {
	cardRepo  ports.CardRepository
	scanRepo  ports.ScanRepository
	scanCache ports.ScanCache // nil = cache disabled
	log       zerolog.Logger

	now func() time.Time
}

// NewCardService creates a new CardServiceImpl.
func NewCardService(
	cardRepo ports.CardRepository,
	scanRepo ports.ScanRepository,
	scanCache ports.ScanCache,
	log zerolog.Logger,
) *CardServiceImpl {
	return &CardServiceImpl{
		cardRepo:  cardRepo,
		scanRepo:  scanRepo,
		scanCache: scanCache,
		log:       log,
		now:       time.Now,
	}
}

// RecordScan appends a scan event, creating the card with default fields
// on first sight. Repeated scans only grow the scan log; balance and
// totalSpent are untouched.
func (s *CardServiceImpl) RecordScan(ctx context.Context, uid string) (*ports.ScanResult, error) {
	if uid == "" {
		return nil, apperror.ErrMissingUID()
	}

	now := s.now()

	card, err := s.cardRepo.Get(ctx, uid)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("get card: %w", err))
	}
	if card == nil {
		card = domain.NewCard(uid, now)
		if err := s.cardRepo.Upsert(ctx, card); err != nil {
			return nil, apperror.ErrStorage(fmt.Errorf("create card: %w", err))
		}
	}

	scan := &domain.Scan{ID: uuid.New(), UID: uid, Time: now}
	if err := s.scanRepo.Append(ctx, scan); err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("append scan: %w", err))
	}

	if s.scanCache != nil {
		if err := s.scanCache.SetLast(ctx, scan); err != nil {
			s.log.Warn().Err(err).Str("uid", uid).Msg("last-scan cache update failed")
		}
	}

	s.log.Debug().Str("uid", uid).Msg("scan recorded")

	return &ports.ScanResult{UID: uid, Balance: card.Balance}, nil
}

// GetBalance returns 0 for an unknown uid. A pure read never creates the
// card.
func (s *CardServiceImpl) GetBalance(ctx context.Context, uid string) (decimal.Decimal, error) {
	card, err := s.cardRepo.Get(ctx, uid)
	if err != nil {
		return decimal.Zero, apperror.ErrStorage(fmt.Errorf("get card: %w", err))
	}
	if card == nil {
		return decimal.Zero, nil
	}
	return card.Balance, nil
}

// SetProfile updates only the provided fields; an omitted field is never
// cleared. The card is created if it has never been seen.
func (s *CardServiceImpl) SetProfile(ctx context.Context, uid string, email, pin *string) error {
	if uid == "" {
		return apperror.ErrMissingUID()
	}

	if err := s.cardRepo.Upsert(ctx, domain.NewCard(uid, s.now())); err != nil {
		return apperror.ErrStorage(fmt.Errorf("ensure card: %w", err))
	}

	if email == nil && pin == nil {
		return nil
	}
	if err := s.cardRepo.UpdateProfile(ctx, uid, email, pin); err != nil {
		return apperror.ErrStorage(fmt.Errorf("update profile: %w", err))
	}

	s.log.Info().Str("uid", uid).Bool("email", email != nil).Bool("pin", pin != nil).Msg("profile updated")
	return nil
}

// LastScan returns the most recent scan event, preferring the cache and
// falling back to the store.
func (s *CardServiceImpl) LastScan(ctx context.Context) (*domain.Scan, error) {
	if s.scanCache != nil {
		scan, err := s.scanCache.GetLast(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("last-scan cache read failed, falling through to store")
		} else if scan != nil {
			return scan, nil
		}
	}

	scan, err := s.scanRepo.Last(ctx)
	if err != nil {
		return nil, apperror.ErrStorage(fmt.Errorf("last scan: %w", err))
	}

	if scan != nil && s.scanCache != nil {
		if err := s.scanCache.SetLast(ctx, scan); err != nil {
			s.log.Warn().Err(err).Msg("last-scan cache backfill failed")
		}
	}
	return scan, nil
}
