package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"elitepay/internal/core/domain"
	"elitepay/internal/core/ports"
)

// --- In-Memory Card Repo ---

type inMemoryCardRepo struct {
	mu    sync.RWMutex
	cards map[string]*domain.Card
}

func newInMemoryCardRepo() *inMemoryCardRepo {
	return &inMemoryCardRepo{cards: make(map[string]*domain.Card)}
}

func (r *inMemoryCardRepo) Get(ctx context.Context, uid string) (*domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cards[uid]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCardRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, uid string) (*domain.Card, error) {
	return r.Get(ctx, uid)
}

func (r *inMemoryCardRepo) Insert(ctx context.Context, tx pgx.Tx, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *card
	r.cards[card.UID] = &cp
	return nil
}

func (r *inMemoryCardRepo) Upsert(ctx context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[card.UID]; ok {
		return nil
	}
	cp := *card
	r.cards[card.UID] = &cp
	return nil
}

func (r *inMemoryCardRepo) UpdateProfile(ctx context.Context, uid string, email, pin *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[uid]
	if !ok {
		return nil
	}
	if email != nil {
		c.Email = *email
	}
	if pin != nil {
		c.PIN = *pin
	}
	return nil
}

func (r *inMemoryCardRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, uid string, balance, totalSpent decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[uid]
	if !ok {
		return nil
	}
	c.Balance = balance
	c.TotalSpent = totalSpent
	return nil
}

// --- In-Memory Limit Repo ---

type inMemoryLimitRepo struct {
	mu     sync.RWMutex
	limits map[string]map[domain.PeriodKind]domain.Limit
}

func newInMemoryLimitRepo() *inMemoryLimitRepo {
	return &inMemoryLimitRepo{limits: make(map[string]map[domain.PeriodKind]domain.Limit)}
}

func (r *inMemoryLimitRepo) ListByUID(ctx context.Context, uid string) (map[domain.PeriodKind]domain.Limit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.PeriodKind]domain.Limit, len(r.limits[uid]))
	for k, v := range r.limits[uid] {
		out[k] = v
	}
	return out, nil
}

func (r *inMemoryLimitRepo) Upsert(ctx context.Context, uid string, kind domain.PeriodKind, limit domain.Limit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limits[uid] == nil {
		r.limits[uid] = make(map[domain.PeriodKind]domain.Limit)
	}
	r.limits[uid][kind] = limit
	return nil
}

func (r *inMemoryLimitRepo) Delete(ctx context.Context, uid string, kind domain.PeriodKind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.limits[uid][kind]; !ok {
		return false, nil
	}
	delete(r.limits[uid], kind)
	return true, nil
}

// --- In-Memory Scan Repo ---

type inMemoryScanRepo struct {
	mu    sync.RWMutex
	scans []domain.Scan
}

func newInMemoryScanRepo() *inMemoryScanRepo {
	return &inMemoryScanRepo{}
}

func (r *inMemoryScanRepo) Append(ctx context.Context, scan *domain.Scan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans = append(r.scans, *scan)
	return nil
}

func (r *inMemoryScanRepo) Last(ctx context.Context) (*domain.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.scans) == 0 {
		return nil, nil
	}
	cp := r.scans[len(r.scans)-1]
	return &cp, nil
}

// --- In-Memory Fee Repo ---

type inMemoryFeeRepo struct {
	mu   sync.RWMutex
	fees []domain.FeeRecord
}

func newInMemoryFeeRepo() *inMemoryFeeRepo {
	return &inMemoryFeeRepo{}
}

func (r *inMemoryFeeRepo) Append(ctx context.Context, tx pgx.Tx, fee *domain.FeeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fees = append(r.fees, *fee)
	return nil
}

func (r *inMemoryFeeRepo) List(ctx context.Context) ([]domain.FeeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.FeeRecord, len(r.fees))
	copy(out, r.fees)
	return out, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu   sync.RWMutex
	txns []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txns = append(r.txns, *t)
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Transaction, len(r.txns))
	copy(out, r.txns)
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (r *inMemoryTransactionRepo) ListPaymentsByUID(ctx context.Context, uid string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range r.txns {
		if t.UID == uid && t.IsPayment() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *inMemoryTransactionRepo) SumPaymentsSince(ctx context.Context, tx pgx.Tx, uid string, since time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, t := range r.txns {
		if t.UID == uid && t.IsPayment() && !t.Time.Before(since) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r *inMemoryTransactionRepo) SumPayments(ctx context.Context, tx pgx.Tx, uid string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, t := range r.txns {
		if t.UID == uid && t.IsPayment() {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

// --- In-Memory Transactor ---

// lockingTransactor serializes transactions with one global mutex, the
// in-memory stand-in for the per-card row lock.
type lockingTransactor struct {
	mu sync.Mutex
}

func newLockingTransactor() *lockingTransactor {
	return &lockingTransactor{}
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	tx := &lockedTx{}
	tx.release = func() { t.mu.Unlock() }
	return tx, nil
}

// lockedTx is a no-op pgx.Tx that releases the transactor lock exactly
// once, on whichever of Commit or Rollback runs first.
type lockedTx struct {
	once    sync.Once
	release func()
}

func (t *lockedTx) done() {
	t.once.Do(t.release)
}

func (t *lockedTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *lockedTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *lockedTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *lockedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *lockedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *lockedTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *lockedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *lockedTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *lockedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *lockedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *lockedTx) Conn() *pgx.Conn                                               { return nil }

// interface conformance
var (
	_ ports.CardRepository        = (*inMemoryCardRepo)(nil)
	_ ports.LimitRepository       = (*inMemoryLimitRepo)(nil)
	_ ports.ScanRepository        = (*inMemoryScanRepo)(nil)
	_ ports.FeeRepository         = (*inMemoryFeeRepo)(nil)
	_ ports.TransactionRepository = (*inMemoryTransactionRepo)(nil)
	_ ports.DBTransactor          = (*lockingTransactor)(nil)
)
