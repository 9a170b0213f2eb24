package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"
	"auction-escrow/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger implements repository.LedgerDB on Postgres. Lock* methods issue
// SELECT ... FOR UPDATE inside the unit of work's transaction.
type Ledger struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewLedger(db *gorm.DB, lockTimeout time.Duration) *Ledger {
	return &Ledger{db: db, lockTimeout: lockTimeout}
}

// lockNotAvailable is the SQLSTATE Postgres raises when lock_timeout expires.
const lockNotAvailable = "55P03"

func (l *Ledger) InTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if l.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("set lock timeout: %w", err)
			}
		}
		return fn(&gormTx{db: tx})
	})
	return mapLockError(err)
}

// mapLockError reports an expired lock_timeout as ErrLockTimeout.
func mapLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == lockNotAvailable {
		return fmt.Errorf("%w: %w", auctionerrors.ErrLockTimeout, err)
	}
	return err
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) forUpdate() *gorm.DB {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// take loads one row into dst, mapping a missing row to notFound.
func take[T any](q *gorm.DB, notFound error, op string, dst *T) error {
	err := q.Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func find[T any](q *gorm.DB, op string) ([]T, error) {
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func create(db *gorm.DB, op string, v any) error {
	if err := db.Create(v).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func save(db *gorm.DB, op string, v any) error {
	if err := db.Save(v).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// users

func (t *gormTx) CreateUser(u model.User) error { return create(t.db, "create user", &u) }

func (t *gormTx) GetUser(id uuid.UUID) (model.User, error) {
	var u model.User
	err := take(t.db.Where("id = ?", id), auctionerrors.ErrUserNotFound, "get user "+id.String(), &u)
	return u, err
}

func (t *gormTx) LockUser(id uuid.UUID) (model.User, error) {
	var u model.User
	err := take(t.forUpdate().Where("id = ?", id), auctionerrors.ErrUserNotFound, "lock user "+id.String(), &u)
	return u, err
}

func (t *gormTx) LockUsers(ids ...uuid.UUID) (map[uuid.UUID]model.User, error) {
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	users, err := find[model.User](t.forUpdate().Where("id IN ?", ids).Order("id"), "lock users")
	if err != nil {
		return nil, err
	}
	if len(users) != len(unique) {
		return nil, fmt.Errorf("lock users: %w", auctionerrors.ErrUserNotFound)
	}
	out := make(map[uuid.UUID]model.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (t *gormTx) UpdateUser(u model.User) error { return save(t.db, "update user", &u) }

// auctions

func (t *gormTx) CreateAuction(a model.Auction) error { return create(t.db, "create auction", &a) }

func (t *gormTx) GetAuction(id uuid.UUID) (model.Auction, error) {
	var a model.Auction
	err := take(t.db.Where("id = ?", id), auctionerrors.ErrAuctionNotFound, "get auction "+id.String(), &a)
	return a, err
}

func (t *gormTx) LockAuction(id uuid.UUID) (model.Auction, error) {
	var a model.Auction
	err := take(t.forUpdate().Where("id = ?", id), auctionerrors.ErrAuctionNotFound, "lock auction "+id.String(), &a)
	return a, err
}

func (t *gormTx) UpdateAuction(a model.Auction) error { return save(t.db, "update auction", &a) }

func (t *gormTx) ListEndedUnsettledAuctions(now time.Time) ([]model.Auction, error) {
	return find[model.Auction](t.db.Where("settled = ? AND end_at < ?", false, now).Order("end_at"), "list ended auctions")
}

func (t *gormTx) ListAuctionsAwaitingReview() ([]model.Auction, error) {
	q := t.db.Where("status = ? AND settled = ? AND winner_id IS NOT NULL", model.AuctionFinished, true).
		Where("NOT EXISTS (SELECT 1 FROM sales s WHERE s.auction_id = auctions.id)").
		Order("end_at")
	return find[model.Auction](q, "list auctions awaiting review")
}

// bids

func (t *gormTx) CreateBid(b model.Bid) error { return create(t.db, "record bid", &b) }

func (t *gormTx) ListBidsByAuction(auctionID uuid.UUID) ([]model.Bid, error) {
	return find[model.Bid](t.db.Where("auction_id = ?", auctionID).Order("created_at"), "list bids")
}

func (t *gormTx) GetWinningBid(auctionID uuid.UUID) (model.Bid, error) {
	var b model.Bid
	q := t.db.Where("auction_id = ?", auctionID).Order("amount DESC, created_at ASC")
	err := take(q, auctionerrors.ErrNoBids, "get winning bid for auction "+auctionID.String(), &b)
	return b, err
}

// holds

func (t *gormTx) CreateHold(h model.Hold) error { return create(t.db, "create hold", &h) }
func (t *gormTx) UpdateHold(h model.Hold) error { return save(t.db, "update hold", &h) }

func (t *gormTx) DeleteHold(id uuid.UUID) error {
	if err := t.db.Delete(&model.Hold{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete hold %s: %w", id, err)
	}
	return nil
}

func (t *gormTx) ListHoldsByUser(userID uuid.UUID, status model.HoldStatus) ([]model.Hold, error) {
	return find[model.Hold](t.db.Where("user_id = ? AND status = ?", userID, status).Order("created_at"), "list holds by user")
}

func (t *gormTx) ListHoldsByAuction(auctionID uuid.UUID, status model.HoldStatus) ([]model.Hold, error) {
	return find[model.Hold](t.db.Where("auction_id = ? AND status = ?", auctionID, status).Order("created_at"), "list holds by auction")
}

// sales and their satellites

func (t *gormTx) CreateSale(s model.Sale) error { return create(t.db, "create sale", &s) }

func (t *gormTx) GetSale(id uuid.UUID) (model.Sale, error) {
	var s model.Sale
	err := take(t.db.Where("id = ?", id), auctionerrors.ErrSaleNotFound, "get sale "+id.String(), &s)
	return s, err
}

func (t *gormTx) LockSale(id uuid.UUID) (model.Sale, error) {
	var s model.Sale
	err := take(t.forUpdate().Where("id = ?", id), auctionerrors.ErrSaleNotFound, "lock sale "+id.String(), &s)
	return s, err
}

func (t *gormTx) UpdateSale(s model.Sale) error { return save(t.db, "update sale", &s) }

func (t *gormTx) GetSaleByAuction(auctionID uuid.UUID) (model.Sale, error) {
	var s model.Sale
	err := take(t.db.Where("auction_id = ?", auctionID), auctionerrors.ErrSaleNotFound, "get sale for auction "+auctionID.String(), &s)
	return s, err
}

func (t *gormTx) ListSalesByStatus(status model.SaleStatus) ([]model.Sale, error) {
	return find[model.Sale](t.db.Where("status = ?", status).Order("created_at"), "list sales")
}

func (t *gormTx) CreatePayout(p model.Payout) error { return create(t.db, "create payout", &p) }

func (t *gormTx) GetPayout(id uuid.UUID) (model.Payout, error) {
	var p model.Payout
	err := take(t.db.Where("id = ?", id), auctionerrors.ErrPayoutNotFound, "get payout "+id.String(), &p)
	return p, err
}

func (t *gormTx) UpdatePayout(p model.Payout) error { return save(t.db, "update payout", &p) }

func (t *gormTx) CreateShipment(s model.Shipment) error { return create(t.db, "create shipment", &s) }

func (t *gormTx) LatestShipment(saleID uuid.UUID) (model.Shipment, error) {
	var s model.Shipment
	q := t.db.Where("sale_id = ?", saleID).Order("shipped_at DESC")
	err := take(q, auctionerrors.ErrShipmentNotFound, "latest shipment for sale "+saleID.String(), &s)
	return s, err
}

func (t *gormTx) CreateDeliveryConfirmation(d model.DeliveryConfirmation) error {
	return create(t.db, "create delivery confirmation", &d)
}

func (t *gormTx) HasDeliveryConfirmation(saleID uuid.UUID) (bool, error) {
	var n int64
	if err := t.db.Model(&model.DeliveryConfirmation{}).Where("sale_id = ?", saleID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count delivery confirmations: %w", err)
	}
	return n > 0, nil
}

// disputes

func (t *gormTx) CreateDispute(d model.Dispute) error { return create(t.db, "create dispute", &d) }

func (t *gormTx) GetDispute(id uuid.UUID) (model.Dispute, error) {
	var d model.Dispute
	err := take(t.db.Where("id = ?", id), auctionerrors.ErrDisputeNotFound, "get dispute "+id.String(), &d)
	return d, err
}

func (t *gormTx) LockDispute(id uuid.UUID) (model.Dispute, error) {
	var d model.Dispute
	err := take(t.forUpdate().Where("id = ?", id), auctionerrors.ErrDisputeNotFound, "lock dispute "+id.String(), &d)
	return d, err
}

func (t *gormTx) UpdateDispute(d model.Dispute) error { return save(t.db, "update dispute", &d) }

func (t *gormTx) ListDisputesBySale(saleID uuid.UUID) ([]model.Dispute, error) {
	return find[model.Dispute](t.db.Where("sale_id = ?", saleID).Order("created_at"), "list disputes")
}

// ledger lines

func (t *gormTx) AppendEscrowEntry(e model.EscrowEntry) error {
	return create(t.db, "append escrow entry", &e)
}

func (t *gormTx) ListEscrowEntriesBySale(saleID uuid.UUID) ([]model.EscrowEntry, error) {
	return find[model.EscrowEntry](t.db.Where("sale_id = ?", saleID).Order("created_at"), "list escrow entries")
}

func (t *gormTx) ListEscrowEntriesByReference(referenceID uuid.UUID) ([]model.EscrowEntry, error) {
	return find[model.EscrowEntry](t.db.Where("reference_id = ?", referenceID).Order("created_at"), "list escrow entries")
}

func (t *gormTx) AppendTransaction(tr model.Transaction) error {
	return create(t.db, "append transaction", &tr)
}

func (t *gormTx) ListTransactionsByUser(userID uuid.UUID) ([]model.Transaction, error) {
	return find[model.Transaction](t.db.Where("user_id = ?", userID).Order("created_at"), "list transactions")
}

func (t *gormTx) CreateCommissionLog(c model.CommissionLog) error {
	return create(t.db, "create commission log", &c)
}

func (t *gormTx) ListCommissionLogsByAuction(auctionID uuid.UUID) ([]model.CommissionLog, error) {
	return find[model.CommissionLog](t.db.Where("auction_id = ?", auctionID), "list commission logs")
}

func (t *gormTx) LockPlatformBalance() (model.PlatformBalance, error) {
	seed := model.PlatformBalance{ID: model.PlatformBalanceID, LastUpdated: time.Now().UTC()}
	if err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return model.PlatformBalance{}, fmt.Errorf("seed platform balance: %w", err)
	}
	var p model.PlatformBalance
	err := take(t.forUpdate().Where("id = ?", model.PlatformBalanceID), auctionerrors.ErrNotFound, "lock platform balance", &p)
	return p, err
}

func (t *gormTx) UpdatePlatformBalance(p model.PlatformBalance) error {
	return save(t.db, "update platform balance", &p)
}

var _ repository.LedgerDB = (*Ledger)(nil)
var _ repository.LedgerTx = (*gormTx)(nil)
