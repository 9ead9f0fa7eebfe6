package service

import (
	"context"
	"testing"
	"time"

	"elitepay/internal/core/domain"
	"elitepay/internal/core/ports/mocks"
	"elitepay/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type limitTestDeps struct {
	svc       *LimitServiceImpl
	limitRepo *mocks.MockLimitRepository
	cardRepo  *mocks.MockCardRepository
	txRepo    *mocks.MockTransactionRepository
	ctrl      *gomock.Controller
}

func setupLimitService(t *testing.T) *limitTestDeps {
	ctrl := gomock.NewController(t)
	d := &limitTestDeps{
		limitRepo: mocks.NewMockLimitRepository(ctrl),
		cardRepo:  mocks.NewMockCardRepository(ctrl),
		txRepo:    mocks.NewMockTransactionRepository(ctrl),
		ctrl:      ctrl,
	}
	d.svc = NewLimitService(d.limitRepo, d.cardRepo, d.txRepo, time.UTC, zerolog.Nop())
	d.svc.now = func() time.Time { return fixedNow }
	return d
}

// ==================== SetLimit Tests ====================

func TestLimitService_SetLimit_CreatesCardAndUpserts(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.cardRepo.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	d.limitRepo.EXPECT().Upsert(ctx, "AB12CD34", domain.PeriodDaily, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, _ domain.PeriodKind, limit domain.Limit) error {
			assert.True(t, limit.Amount.Equal(dec("200")))
			assert.Equal(t, fixedNow, limit.SetAt)
			return nil
		})

	limit, err := d.svc.SetLimit(ctx, "AB12CD34", domain.PeriodDaily, dec("200"))
	require.NoError(t, err)
	assert.True(t, limit.Amount.Equal(dec("200")))
}

func TestLimitService_SetLimit_InvalidAmount(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	limit, err := d.svc.SetLimit(context.Background(), "AB12CD34", domain.PeriodDaily, decimal.Zero)
	assert.Nil(t, limit)
	assertAppError(t, err, "PAY_002")
}

func TestLimitService_SetLimit_MissingUID(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	limit, err := d.svc.SetLimit(context.Background(), "", domain.PeriodDaily, dec("200"))
	assert.Nil(t, limit)
	assertAppError(t, err, "CARD_001")
}

// ==================== RemoveLimit Tests ====================

func TestLimitService_RemoveLimit_Existing(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.cardRepo.EXPECT().Get(ctx, "AB12CD34").Return(&domain.Card{UID: "AB12CD34"}, nil)
	d.limitRepo.EXPECT().Delete(ctx, "AB12CD34", domain.PeriodWeekly).Return(true, nil)

	removed, err := d.svc.RemoveLimit(ctx, "AB12CD34", domain.PeriodWeekly)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestLimitService_RemoveLimit_AbsentKindIsNotAnError(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.cardRepo.EXPECT().Get(ctx, "AB12CD34").Return(&domain.Card{UID: "AB12CD34"}, nil)
	d.limitRepo.EXPECT().Delete(ctx, "AB12CD34", domain.PeriodMonthly).Return(false, nil)

	removed, err := d.svc.RemoveLimit(ctx, "AB12CD34", domain.PeriodMonthly)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestLimitService_RemoveLimit_UnknownCard(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.cardRepo.EXPECT().Get(ctx, "UNKNOWN").Return(nil, nil)

	removed, err := d.svc.RemoveLimit(ctx, "UNKNOWN", domain.PeriodDaily)
	assert.False(t, removed)
	assertAppError(t, err, "CARD_003")
}

// ==================== Check Tests ====================

func TestLimitService_Check_NoLimitsConfigured(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.limitRepo.EXPECT().ListByUID(ctx, "AB12CD34").Return(nil, nil)

	err := d.svc.Check(ctx, tx, "AB12CD34", dec("1000000"), fixedNow)
	require.NoError(t, err)
}

func TestLimitService_Check_UnderEveryLimit(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.limitRepo.EXPECT().ListByUID(ctx, "AB12CD34").Return(map[domain.PeriodKind]domain.Limit{
		domain.PeriodDaily:  {Amount: dec("200")},
		domain.PeriodWeekly: {Amount: dec("1000")},
	}, nil)

	// fixedNow is Wednesday 2025-06-18 15:30 UTC: the daily window opens
	// at that day's midnight, the weekly window at Sunday the 15th.
	dayStart := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	weekStart := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	d.txRepo.EXPECT().SumPaymentsSince(ctx, tx, "AB12CD34", dayStart).Return(dec("150"), nil)
	d.txRepo.EXPECT().SumPaymentsSince(ctx, tx, "AB12CD34", weekStart).Return(dec("150"), nil)

	// 150 + 50 = 200, exactly at the daily cap: allowed, the limit only
	// trips when the cap would be exceeded.
	err := d.svc.Check(ctx, tx, "AB12CD34", dec("50"), fixedNow)
	require.NoError(t, err)
}

func TestLimitService_Check_DailyExceededFirst(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	// Both daily and weekly would be breached; daily is reported because
	// kinds are checked in fixed order.
	d.limitRepo.EXPECT().ListByUID(ctx, "AB12CD34").Return(map[domain.PeriodKind]domain.Limit{
		domain.PeriodDaily:  {Amount: dec("200")},
		domain.PeriodWeekly: {Amount: dec("200")},
	}, nil)

	dayStart := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	d.txRepo.EXPECT().SumPaymentsSince(ctx, tx, "AB12CD34", dayStart).Return(dec("150"), nil)

	err := d.svc.Check(ctx, tx, "AB12CD34", dec("60"), fixedNow)
	require.Error(t, err)
	assertAppError(t, err, "LIM_002")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "daily", appErr.Details["kind"])
	assert.Equal(t, "200.00", appErr.Details["limit"])
	assert.Equal(t, "150.00", appErr.Details["current_spend"])
}

func TestLimitService_Check_OnlyMonthlyConfigured(t *testing.T) {
	d := setupLimitService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.limitRepo.EXPECT().ListByUID(ctx, "AB12CD34").Return(map[domain.PeriodKind]domain.Limit{
		domain.PeriodMonthly: {Amount: dec("5000")},
	}, nil)

	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d.txRepo.EXPECT().SumPaymentsSince(ctx, tx, "AB12CD34", monthStart).Return(dec("4990"), nil)

	err := d.svc.Check(ctx, tx, "AB12CD34", dec("20"), fixedNow)
	assertAppError(t, err, "LIM_002")
}
