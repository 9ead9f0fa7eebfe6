package postgres

import (
	"context"
	"testing"
	"time"

	"elitepay/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transactionColumnNames() []string {
	return []string{"id", "type", "uid", "amount", "fee", "final_amount", "created_at"}
}

func TestTransactionRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := &domain.Transaction{
		ID:          uuid.New(),
		Type:        domain.TransactionTypePayment,
		UID:         "AB12CD34",
		Amount:      decimal.RequireFromString("600"),
		Fee:         decimal.RequireFromString("12.00"),
		FinalAmount: decimal.RequireFromString("612.00"),
		Time:        time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, "payment", txn.UID, txn.Amount, txn.Fee, txn.FinalAmount, txn.Time).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Append(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	at := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM transactions ORDER BY created_at").
		WillReturnRows(pgxmock.NewRows(transactionColumnNames()).
			AddRow(uuid.New(), "topup", "AB12CD34", decimal.RequireFromString("1000"),
				decimal.Zero, decimal.RequireFromString("1000"), at).
			AddRow(uuid.New(), "payment", "AB12CD34", decimal.RequireFromString("600"),
				decimal.RequireFromString("12.00"), decimal.RequireFromString("612.00"), at))

	txns, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.TransactionTypeTopup, txns[0].Type)
	assert.Equal(t, domain.TransactionTypePayment, txns[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListPaymentsByUID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	at := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT .+ FROM transactions .+ WHERE uid").
		WithArgs("AB12CD34", "payment").
		WillReturnRows(pgxmock.NewRows(transactionColumnNames()).
			AddRow(uuid.New(), "payment", "AB12CD34", decimal.RequireFromString("600"),
				decimal.RequireFromString("12.00"), decimal.RequireFromString("612.00"), at))

	txns, err := repo.ListPaymentsByUID(context.Background(), "AB12CD34")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "AB12CD34", txns[0].UID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SumPaymentsSince(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	since := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM transactions").
		WithArgs("AB12CD34", "payment", since).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).
			AddRow(decimal.RequireFromString("150")))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	sum, err := repo.SumPaymentsSince(context.Background(), tx, "AB12CD34", since)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("150")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SumPayments(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM transactions").
		WithArgs("AB12CD34", "payment").
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).
			AddRow(decimal.RequireFromString("600")))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	sum, err := repo.SumPayments(context.Background(), tx, "AB12CD34")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("600")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
