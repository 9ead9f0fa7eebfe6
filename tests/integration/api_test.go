package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"elitepay/internal/adapter/http/dto"
	httpHandler "elitepay/internal/adapter/http/handler"
	"elitepay/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := dto.RegisterCustomValidators(); err != nil {
		panic(err)
	}
}

type testEnv struct {
	router *gin.Engine
	cards  *inMemoryCardRepo
	txns   *inMemoryTransactionRepo
	ledger *service.LedgerServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	cardRepo := newInMemoryCardRepo()
	limitRepo := newInMemoryLimitRepo()
	scanRepo := newInMemoryScanRepo()
	feeRepo := newInMemoryFeeRepo()
	txRepo := newInMemoryTransactionRepo()
	transactor := newLockingTransactor()

	cardSvc := service.NewCardService(cardRepo, scanRepo, nil, log)
	limitSvc := service.NewLimitService(limitRepo, cardRepo, txRepo, time.UTC, log)
	ledgerSvc := service.NewLedgerService(cardRepo, txRepo, feeRepo, limitSvc, transactor, nil, service.DefaultLedgerPolicy(), time.UTC, log)
	tokenSvc := service.NewJWTTokenService("integration-secret", time.Hour, "elitepay")

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	authSvc := service.NewAuthService("admin", string(hash), tokenSvc, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Cards:  httpHandler.NewCardHandler(cardSvc, log),
		Ledger: httpHandler.NewLedgerHandler(ledgerSvc, log),
		Limits: httpHandler.NewLimitHandler(limitSvc, log),
		Admin:  httpHandler.NewAdminHandler(authSvc, ledgerSvc, log),
		Health: httpHandler.NewHealthHandler(log),
		Tokens: tokenSvc,
		Log:    log,
	})

	return &testEnv{router: router, cards: cardRepo, txns: txRepo, ledger: ledgerSvc}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestPaymentFlow(t *testing.T) {
	e := newTestEnv(t)
	const uid = "CARD-7A3F"

	// First scan creates the card with a zero balance.
	w := e.do(t, http.MethodPost, "/api/v1/scan", gin.H{"uid": uid})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.00", e.data(t, w)["balance"])

	// Top up 1000.
	w = e.do(t, http.MethodPost, "/api/v1/topup", gin.H{"uid": uid, "amount": "1000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1000.00", e.data(t, w)["new_balance"])

	// A 600 deduction needs a PIN, and none is registered yet.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "600"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "PAY_003")

	// Register a PIN.
	w = e.do(t, http.MethodPost, "/api/v1/register", gin.H{"uid": uid, "pin": "4321", "email": "rider@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	// Wrong PIN is rejected.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "600", "pin": "0000"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "PAY_004")

	// Correct PIN: 600 principal, 2% fee of 12, balance 1000-612=388.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "600", "pin": "4321"})
	require.Equal(t, http.StatusOK, w.Code)
	data := e.data(t, w)
	assert.Equal(t, "12.00", data["fee"])
	assert.Equal(t, "388.00", data["new_balance"])
	assert.Equal(t, false, data["reward_eligible"])

	// Balance endpoint agrees.
	w = e.do(t, http.MethodGet, "/api/v1/balance/"+uid, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "388.00", e.data(t, w)["balance"])

	// Insufficient funds: 388 cannot cover 380+7.60.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "385", "pin": "4321"})
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "PAY_001")
}

func TestSpendingLimitFlow(t *testing.T) {
	e := newTestEnv(t)
	const uid = "CARD-LIM"

	w := e.do(t, http.MethodPost, "/api/v1/topup", gin.H{"uid": uid, "amount": "1000"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/v1/register", gin.H{"uid": uid, "pin": "2468"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/limits", gin.H{"uid": uid, "kind": "daily", "amount": "200"})
	require.Equal(t, http.StatusOK, w.Code)

	// Spend 150 of today's 200.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "150", "pin": "2468"})
	require.Equal(t, http.StatusOK, w.Code)

	// 60 more would breach the cap.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "60"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "LIM_002")
	assert.Contains(t, w.Body.String(), `"current_spend":"150.00"`)

	// Exactly at the cap is allowed.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "50"})
	require.Equal(t, http.StatusOK, w.Code)

	// Removing the limit lifts the cap.
	w = e.do(t, http.MethodDelete, "/api/v1/limits/"+uid+"/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "60"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestConvertFlow(t *testing.T) {
	e := newTestEnv(t)
	const uid = "CARD-ETH"

	w := e.do(t, http.MethodPost, "/api/v1/scan", gin.H{"uid": uid})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/convert", gin.H{"uid": uid, "external_amount": "0.01", "rate": "250000"})
	require.Equal(t, http.StatusOK, w.Code)
	data := e.data(t, w)
	assert.Equal(t, "2500.00", data["credited_amount"])
	assert.Equal(t, "2500.00", data["new_balance"])

	// Conversion against an unknown card fails.
	w = e.do(t, http.MethodPost, "/api/v1/convert", gin.H{"uid": "CARD-NOPE", "external_amount": "1", "rate": "10"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "CARD_003")
}

func TestAdminFlow(t *testing.T) {
	e := newTestEnv(t)
	const uid = "CARD-ADM"

	w := e.do(t, http.MethodPost, "/api/v1/topup", gin.H{"uid": uid, "amount": "1000"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "600", "pin": ""})
	require.Equal(t, http.StatusBadRequest, w.Code) // no pin registered
	w = e.do(t, http.MethodPost, "/api/v1/register", gin.H{"uid": uid, "pin": "9999"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "600", "pin": "9999"})
	require.Equal(t, http.StatusOK, w.Code)

	// Dashboard endpoints reject anonymous callers.
	w = e.do(t, http.MethodGet, "/api/v1/fees", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Login.
	w = e.do(t, http.MethodPost, "/api/v1/admin/login", gin.H{"username": "admin", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := e.data(t, w)["token"].(string)
	require.NotEmpty(t, token)
	auth := []string{"Authorization", "Bearer " + token}

	// The 600 payment left a 12.00 fee in the log.
	w = e.do(t, http.MethodGet, "/api/v1/fees", nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fee":"12.00"`)

	// Full ledger has the topup and the payment.
	w = e.do(t, http.MethodGet, "/api/v1/transactions", nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"type":"topup"`)
	assert.Contains(t, w.Body.String(), `"type":"payment"`)

	// Per-card view filters to payments only.
	w = e.do(t, http.MethodGet, "/api/v1/transactions?uid="+uid, nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"type":"topup"`)

	// Reconcile reports a clean counter.
	w = e.do(t, http.MethodPost, "/api/v1/admin/reconcile/"+uid, nil, auth...)
	require.Equal(t, http.StatusOK, w.Code)
	data := e.data(t, w)
	assert.Equal(t, "600.00", data["recomputed"])
	assert.Equal(t, false, data["repaired"])

	// Bad credentials stay out.
	w = e.do(t, http.MethodPost, "/api/v1/admin/login", gin.H{"username": "admin", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRewardEligibility(t *testing.T) {
	e := newTestEnv(t)
	const uid = "CARD-VIP"

	w := e.do(t, http.MethodPost, "/api/v1/topup", gin.H{"uid": uid, "amount": "10000"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/v1/register", gin.H{"uid": uid, "pin": "1111"})
	require.Equal(t, http.StatusOK, w.Code)

	// 4000 lifetime spend: not eligible yet.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "4000", "pin": "1111"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, e.data(t, w)["reward_eligible"])

	// 5200 lifetime: strictly above the threshold.
	w = e.do(t, http.MethodPost, "/api/v1/deduct", gin.H{"uid": uid, "amount": "1200", "pin": "1111"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, e.data(t, w)["reward_eligible"])
}

func TestScanLog(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/scans/last", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/scan", gin.H{"uid": "CARD-A"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/v1/scan", gin.H{"uid": "CARD-B"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/v1/scans/last", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CARD-B", e.data(t, w)["uid"])
}
