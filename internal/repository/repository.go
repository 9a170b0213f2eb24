package repository

import (
	"context"
	"time"

	model "auction-escrow/internal/models"

	"github.com/google/uuid"
)

// LedgerDB is the transactional store behind the auction engine.
// InTx commits when fn returns nil and rolls back every write otherwise.
type LedgerDB interface {
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is one unit of work. Lock* methods take an exclusive row lock that
// is held until the unit ends; plain reads see committed rows plus this unit's
// own writes. Callers lock in the order dispute, sale, auction, users
// (ascending id), platform balance.
type LedgerTx interface {
	UserStore
	AuctionStore
	BidStore
	HoldStore
	SaleStore
	DisputeStore
	LedgerLineStore
}

type UserStore interface {
	CreateUser(u model.User) error
	GetUser(id uuid.UUID) (model.User, error)
	LockUser(id uuid.UUID) (model.User, error)
	// LockUsers locks every id in ascending order.
	LockUsers(ids ...uuid.UUID) (map[uuid.UUID]model.User, error)
	UpdateUser(u model.User) error
}

type AuctionStore interface {
	CreateAuction(a model.Auction) error
	GetAuction(id uuid.UUID) (model.Auction, error)
	LockAuction(id uuid.UUID) (model.Auction, error)
	UpdateAuction(a model.Auction) error
	// ListEndedUnsettledAuctions returns auctions with EndAt before now and Settled false.
	ListEndedUnsettledAuctions(now time.Time) ([]model.Auction, error)
	// ListAuctionsAwaitingReview returns settled FINISHED auctions that have a
	// winner recorded but no sale.
	ListAuctionsAwaitingReview() ([]model.Auction, error)
}

type BidStore interface {
	CreateBid(b model.Bid) error
	// ListBidsByAuction returns bids oldest first.
	ListBidsByAuction(auctionID uuid.UUID) ([]model.Bid, error)
	// GetWinningBid returns the highest bid, the earliest one on ties.
	GetWinningBid(auctionID uuid.UUID) (model.Bid, error)
}

type HoldStore interface {
	CreateHold(h model.Hold) error
	UpdateHold(h model.Hold) error
	DeleteHold(id uuid.UUID) error
	ListHoldsByUser(userID uuid.UUID, status model.HoldStatus) ([]model.Hold, error)
	ListHoldsByAuction(auctionID uuid.UUID, status model.HoldStatus) ([]model.Hold, error)
}

type SaleStore interface {
	CreateSale(s model.Sale) error
	GetSale(id uuid.UUID) (model.Sale, error)
	LockSale(id uuid.UUID) (model.Sale, error)
	UpdateSale(s model.Sale) error
	GetSaleByAuction(auctionID uuid.UUID) (model.Sale, error)
	ListSalesByStatus(status model.SaleStatus) ([]model.Sale, error)

	CreatePayout(p model.Payout) error
	GetPayout(id uuid.UUID) (model.Payout, error)
	UpdatePayout(p model.Payout) error

	CreateShipment(s model.Shipment) error
	// LatestShipment returns the most recently shipped record for the sale.
	LatestShipment(saleID uuid.UUID) (model.Shipment, error)
	CreateDeliveryConfirmation(d model.DeliveryConfirmation) error
	HasDeliveryConfirmation(saleID uuid.UUID) (bool, error)
}

type DisputeStore interface {
	CreateDispute(d model.Dispute) error
	GetDispute(id uuid.UUID) (model.Dispute, error)
	LockDispute(id uuid.UUID) (model.Dispute, error)
	UpdateDispute(d model.Dispute) error
	ListDisputesBySale(saleID uuid.UUID) ([]model.Dispute, error)
}

// LedgerLineStore covers the append-only audit rows and the platform balance.
type LedgerLineStore interface {
	AppendEscrowEntry(e model.EscrowEntry) error
	ListEscrowEntriesBySale(saleID uuid.UUID) ([]model.EscrowEntry, error)
	ListEscrowEntriesByReference(referenceID uuid.UUID) ([]model.EscrowEntry, error)
	AppendTransaction(t model.Transaction) error
	// ListTransactionsByUser returns the user's transactions oldest first.
	ListTransactionsByUser(userID uuid.UUID) ([]model.Transaction, error)

	CreateCommissionLog(c model.CommissionLog) error
	ListCommissionLogsByAuction(auctionID uuid.UUID) ([]model.CommissionLog, error)

	// LockPlatformBalance locks the singleton row, creating it at zero on first use.
	LockPlatformBalance() (model.PlatformBalance, error)
	UpdatePlatformBalance(p model.PlatformBalance) error
}

// winningBid picks the highest amount, the earliest bid on ties.
func winningBid(bids []model.Bid) model.Bid {
	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(winning.Amount) || (b.Amount.Equal(winning.Amount) && b.CreatedAt.Before(winning.CreatedAt)) {
			winning = b
		}
	}
	return winning
}
