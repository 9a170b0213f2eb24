package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"

	"github.com/google/uuid"
)

// MemoryRepo is a concurrency-safe in-memory implementation of LedgerDB.
// Committed rows live in maps guarded by mu; each unit of work stages its
// writes and applies them in one critical section on commit. Row locks are
// one-slot channels keyed by table and id.
type MemoryRepo struct {
	mu sync.RWMutex

	users          map[uuid.UUID]model.User
	auctions       map[uuid.UUID]model.Auction
	bids           map[uuid.UUID]model.Bid
	holds          map[uuid.UUID]model.Hold
	escrowEntries  map[uuid.UUID]model.EscrowEntry
	transactions   map[uuid.UUID]model.Transaction
	sales          map[uuid.UUID]model.Sale
	payouts        map[uuid.UUID]model.Payout
	commissionLogs map[uuid.UUID]model.CommissionLog
	platform       map[uuid.UUID]model.PlatformBalance
	disputes       map[uuid.UUID]model.Dispute
	shipments      map[uuid.UUID]model.Shipment
	confirmations  map[uuid.UUID]model.DeliveryConfirmation

	lockMu      sync.Mutex
	rowLocks    map[string]chan struct{}
	lockTimeout time.Duration
}

var (
	_ LedgerDB = (*MemoryRepo)(nil)
	_ LedgerTx = (*memTx)(nil)
)

// NewMemoryRepo creates an empty store. A zero lockTimeout waits for a row
// lock until the context is done.
func NewMemoryRepo(lockTimeout time.Duration) *MemoryRepo {
	return &MemoryRepo{
		users:          make(map[uuid.UUID]model.User),
		auctions:       make(map[uuid.UUID]model.Auction),
		bids:           make(map[uuid.UUID]model.Bid),
		holds:          make(map[uuid.UUID]model.Hold),
		escrowEntries:  make(map[uuid.UUID]model.EscrowEntry),
		transactions:   make(map[uuid.UUID]model.Transaction),
		sales:          make(map[uuid.UUID]model.Sale),
		payouts:        make(map[uuid.UUID]model.Payout),
		commissionLogs: make(map[uuid.UUID]model.CommissionLog),
		platform:       make(map[uuid.UUID]model.PlatformBalance),
		disputes:       make(map[uuid.UUID]model.Dispute),
		shipments:      make(map[uuid.UUID]model.Shipment),
		confirmations:  make(map[uuid.UUID]model.DeliveryConfirmation),
		rowLocks:       make(map[string]chan struct{}),
		lockTimeout:    lockTimeout,
	}
}

// InTx runs fn in a unit of work. Row locks taken by fn are released after
// the staged writes are applied or discarded.
func (r *MemoryRepo) InTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	tx := newMemTx(ctx, r)
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx.commit()
	return nil
}

func (r *MemoryRepo) rowLock(key string) chan struct{} {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()

	ch, ok := r.rowLocks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		r.rowLocks[key] = ch
	}
	return ch
}

// staged holds one table's uncommitted writes.
type staged[T any] struct {
	writes  map[uuid.UUID]T
	deletes map[uuid.UUID]struct{}
}

func newStaged[T any]() *staged[T] {
	return &staged[T]{
		writes:  make(map[uuid.UUID]T),
		deletes: make(map[uuid.UUID]struct{}),
	}
}

func (s *staged[T]) put(id uuid.UUID, v T) {
	delete(s.deletes, id)
	s.writes[id] = v
}

func (s *staged[T]) del(id uuid.UUID) {
	delete(s.writes, id)
	s.deletes[id] = struct{}{}
}

func (s *staged[T]) get(mu *sync.RWMutex, base map[uuid.UUID]T, id uuid.UUID) (T, bool) {
	if _, gone := s.deletes[id]; gone {
		var zero T
		return zero, false
	}
	if v, ok := s.writes[id]; ok {
		return v, true
	}
	mu.RLock()
	defer mu.RUnlock()
	v, ok := base[id]
	return v, ok
}

func (s *staged[T]) scan(mu *sync.RWMutex, base map[uuid.UUID]T, keep func(T) bool) []T {
	var out []T

	mu.RLock()
	for id, v := range base {
		if _, gone := s.deletes[id]; gone {
			continue
		}
		if _, shadowed := s.writes[id]; shadowed {
			continue
		}
		if keep(v) {
			out = append(out, v)
		}
	}
	mu.RUnlock()

	for _, v := range s.writes {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func (s *staged[T]) apply(base map[uuid.UUID]T) {
	for id, v := range s.writes {
		base[id] = v
	}
	for id := range s.deletes {
		delete(base, id)
	}
}

type memTx struct {
	ctx  context.Context
	repo *MemoryRepo
	held map[string]chan struct{}

	users          *staged[model.User]
	auctions       *staged[model.Auction]
	bids           *staged[model.Bid]
	holds          *staged[model.Hold]
	escrowEntries  *staged[model.EscrowEntry]
	transactions   *staged[model.Transaction]
	sales          *staged[model.Sale]
	payouts        *staged[model.Payout]
	commissionLogs *staged[model.CommissionLog]
	platform       *staged[model.PlatformBalance]
	disputes       *staged[model.Dispute]
	shipments      *staged[model.Shipment]
	confirmations  *staged[model.DeliveryConfirmation]
}

func newMemTx(ctx context.Context, r *MemoryRepo) *memTx {
	return &memTx{
		ctx:            ctx,
		repo:           r,
		held:           make(map[string]chan struct{}),
		users:          newStaged[model.User](),
		auctions:       newStaged[model.Auction](),
		bids:           newStaged[model.Bid](),
		holds:          newStaged[model.Hold](),
		escrowEntries:  newStaged[model.EscrowEntry](),
		transactions:   newStaged[model.Transaction](),
		sales:          newStaged[model.Sale](),
		payouts:        newStaged[model.Payout](),
		commissionLogs: newStaged[model.CommissionLog](),
		platform:       newStaged[model.PlatformBalance](),
		disputes:       newStaged[model.Dispute](),
		shipments:      newStaged[model.Shipment](),
		confirmations:  newStaged[model.DeliveryConfirmation](),
	}
}

// lock acquires the row lock for table/id. Locks are re-entrant within a tx.
func (t *memTx) lock(table string, id uuid.UUID) error {
	key := table + ":" + id.String()
	if _, ok := t.held[key]; ok {
		return nil
	}
	ch := t.repo.rowLock(key)

	var timeout <-chan time.Time
	if t.repo.lockTimeout > 0 {
		timer := time.NewTimer(t.repo.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		t.held[key] = ch
		return nil
	case <-t.ctx.Done():
		return fmt.Errorf("lock %s: %w", key, t.ctx.Err())
	case <-timeout:
		return fmt.Errorf("lock %s: %w", key, auctionerrors.ErrLockTimeout)
	}
}

func (t *memTx) releaseLocks() {
	for key, ch := range t.held {
		<-ch
		delete(t.held, key)
	}
}

func (t *memTx) commit() {
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	t.users.apply(r.users)
	t.auctions.apply(r.auctions)
	t.bids.apply(r.bids)
	t.holds.apply(r.holds)
	t.escrowEntries.apply(r.escrowEntries)
	t.transactions.apply(r.transactions)
	t.sales.apply(r.sales)
	t.payouts.apply(r.payouts)
	t.commissionLogs.apply(r.commissionLogs)
	t.platform.apply(r.platform)
	t.disputes.apply(r.disputes)
	t.shipments.apply(r.shipments)
	t.confirmations.apply(r.confirmations)
}
