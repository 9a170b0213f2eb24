package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role of a platform user. The identity subsystem owns it; the engine only reads it.
type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

// User is the money-holding participant. Only Balance is written by this module.
type User struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string          `json:"email" gorm:"type:varchar(255)"`
	Role      Role            `json:"role" gorm:"type:varchar(20);not null;default:'BUYER'"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric(18,2);not null;default:0"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AuctionStatus string

const (
	AuctionPublished AuctionStatus = "PUBLISHED"
	AuctionFinished  AuctionStatus = "FINISHED"
	AuctionCancelled AuctionStatus = "CANCELLED"
)

// Auction represents an item put up for sale with ascending bids
type Auction struct {
	ID               uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	SellerID         uuid.UUID           `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title            string              `json:"title" gorm:"type:varchar(255)"`
	StartingPrice    decimal.Decimal     `json:"starting_price" gorm:"type:numeric(18,2);not null"`
	CurrentPrice     decimal.NullDecimal `json:"current_price" gorm:"type:numeric(18,2)"`
	MinIncrement     decimal.Decimal     `json:"min_increment" gorm:"type:numeric(18,2);not null"`
	StartAt          time.Time           `json:"start_at"`
	EndAt            time.Time           `json:"end_at" gorm:"index"`
	Status           AuctionStatus       `json:"status" gorm:"type:varchar(20);not null;index"`
	Settled          bool                `json:"settled" gorm:"not null;default:false;index"`
	WinnerID         uuid.NullUUID       `json:"winner_id" gorm:"type:uuid"`
	FinalPrice       decimal.NullDecimal `json:"final_price" gorm:"type:numeric(18,2)"`
	CommissionRate   decimal.NullDecimal `json:"commission_rate" gorm:"type:numeric(5,2)"`
	CommissionAmount decimal.NullDecimal `json:"commission_amount" gorm:"type:numeric(18,2)"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// Bid represents a user's accepted bid on an auction. Bids are never modified.
type Bid struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	AuctionID uuid.UUID       `json:"auction_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
}

type HoldStatus string

const (
	HoldHeld     HoldStatus = "HELD"
	HoldReleased HoldStatus = "RELEASED"
	HoldUsed     HoldStatus = "USED"
)

// Hold is the amount a bidder has committed to one auction but has not been charged for.
type Hold struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index:idx_holds_user_status"`
	AuctionID  uuid.UUID       `json:"auction_id" gorm:"type:uuid;not null;index:idx_holds_auction_status"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	Status     HoldStatus      `json:"status" gorm:"type:varchar(20);not null;index:idx_holds_user_status;index:idx_holds_auction_status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	ReleasedAt *time.Time      `json:"released_at,omitempty"`
}

type EscrowEntryType string

const (
	EscrowHold           EscrowEntryType = "HOLD"
	EscrowRefund         EscrowEntryType = "REFUND"
	EscrowIn             EscrowEntryType = "ESCROW_IN"
	EscrowOut            EscrowEntryType = "ESCROW_OUT"
	EscrowRelease        EscrowEntryType = "RELEASE"
	EscrowReleasePartial EscrowEntryType = "RELEASE_PARTIAL"
	EscrowRefundPartial  EscrowEntryType = "REFUND_PARTIAL"
)

// Related entity names used by ledger lines.
const (
	RelatedHold    = "HOLD"
	RelatedSale    = "SALE"
	RelatedDispute = "DISPUTE"
	RelatedWallet  = "WALLET"
)

// EscrowEntry is an append-only audit line for holds and escrowed sale funds.
type EscrowEntry struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	SaleID        uuid.NullUUID   `json:"sale_id" gorm:"type:uuid;index"`
	UserID        uuid.UUID       `json:"user_id" gorm:"type:uuid;not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	Type          EscrowEntryType `json:"type" gorm:"type:varchar(20);not null"`
	RelatedEntity string          `json:"related_entity" gorm:"type:varchar(20)"`
	ReferenceID   uuid.UUID       `json:"reference_id" gorm:"type:uuid;index"`
	CreatedAt     time.Time       `json:"created_at"`
}

type TransactionType string

const (
	TxTopUp   TransactionType = "TOPUP"
	TxHold    TransactionType = "HOLD"
	TxRelease TransactionType = "RELEASE"
	TxPayment TransactionType = "PAYMENT"
	TxPayout  TransactionType = "PAYOUT"
	TxRefund  TransactionType = "REFUND"
	TxFee     TransactionType = "FEE"
)

type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

const TxCompleted = "COMPLETED"

// Transaction is the per-user money movement record mirroring balance changes.
type Transaction struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Type          TransactionType `json:"type" gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:numeric(18,2);not null"`
	Direction     Direction       `json:"direction" gorm:"type:varchar(3);not null"`
	Status        string          `json:"status" gorm:"type:varchar(20);not null"`
	RelatedEntity string          `json:"related_entity" gorm:"type:varchar(20)"`
	ReferenceID   uuid.NullUUID   `json:"reference_id" gorm:"type:uuid"`
	Description   string          `json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
}

type SaleStatus string

const (
	SaleEscrowed SaleStatus = "ESCROWED"
	SaleReleased SaleStatus = "RELEASED"
	SaleRefunded SaleStatus = "REFUNDED"
	SaleDisputed SaleStatus = "DISPUTED"
)

// Sale is created once per auction settled with a winner.
// NetAmount + CommissionAmount always equals FinalPrice.
type Sale struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	AuctionID        uuid.UUID       `json:"auction_id" gorm:"type:uuid;not null;uniqueIndex"`
	BuyerID          uuid.UUID       `json:"buyer_id" gorm:"type:uuid;not null"`
	SellerID         uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null"`
	PayoutID         uuid.NullUUID   `json:"payout_id" gorm:"type:uuid"`
	FinalPrice       decimal.Decimal `json:"final_price" gorm:"type:numeric(18,2);not null"`
	CommissionRate   decimal.Decimal `json:"commission_rate" gorm:"type:numeric(5,2);not null"`
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"type:numeric(18,2);not null"`
	NetAmount        decimal.Decimal `json:"net_amount" gorm:"type:numeric(18,2);not null"`
	Status           SaleStatus      `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "PENDING"
	PayoutPaid    PayoutStatus = "PAID"
)

// Payout is the seller-facing record of the net amount owed for a sale.
type Payout struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	AuctionID        uuid.UUID       `json:"auction_id" gorm:"type:uuid;not null;index"`
	SellerID         uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null;index"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:numeric(18,2);not null"`
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"type:numeric(18,2);not null"`
	NetAmount        decimal.Decimal `json:"net_amount" gorm:"type:numeric(18,2);not null"`
	Status           PayoutStatus    `json:"status" gorm:"type:varchar(20);not null"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

type CommissionLog struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	AuctionID        uuid.UUID       `json:"auction_id" gorm:"type:uuid;not null;index"`
	PayoutID         uuid.UUID       `json:"payout_id" gorm:"type:uuid;not null"`
	SellerID         uuid.UUID       `json:"seller_id" gorm:"type:uuid;not null"`
	CommissionAmount decimal.Decimal `json:"commission_amount" gorm:"type:numeric(18,2);not null"`
	CommissionRate   decimal.Decimal `json:"commission_rate" gorm:"type:numeric(5,2);not null"`
	Note             string          `json:"note"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PlatformBalanceID is the well-known key of the singleton platform balance row.
var PlatformBalanceID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type PlatformBalance struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Balance         decimal.Decimal `json:"balance" gorm:"type:numeric(18,2);not null;default:0"`
	TotalCommission decimal.Decimal `json:"total_commission" gorm:"type:numeric(18,2);not null;default:0"`
	LastUpdated     time.Time       `json:"last_updated"`
}

type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "OPEN"
	DisputeUnderReview DisputeStatus = "UNDER_REVIEW"
	DisputeResolved    DisputeStatus = "RESOLVED"
)

// Dispute blocks the release of a sale's funds while it is open or under review.
type Dispute struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	SaleID     uuid.UUID     `json:"sale_id" gorm:"type:uuid;not null;index"`
	OpenerID   uuid.UUID     `json:"opener_id" gorm:"type:uuid;not null"`
	Reason     string        `json:"reason"`
	Details    string        `json:"details"`
	Status     DisputeStatus `json:"status" gorm:"type:varchar(20);not null"`
	Resolution string        `json:"resolution"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Blocking reports whether the dispute still prevents funds from moving.
func (d Dispute) Blocking() bool {
	return d.Status == DisputeOpen || d.Status == DisputeUnderReview
}

type Shipment struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SaleID         uuid.UUID `json:"sale_id" gorm:"type:uuid;not null;index"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	ShippedAt      time.Time `json:"shipped_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type DeliveryConfirmation struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID `json:"sale_id" gorm:"type:uuid;not null;index"`
	BuyerID     uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null"`
	Note        string    `json:"note"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Wallet is a read view of a user's funds.
type Wallet struct {
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	Held      decimal.Decimal `json:"held"`
	Available decimal.Decimal `json:"available"`
}

// MoneyScale is the number of decimal places every stored amount carries.
const MoneyScale = 2

// HasMoneyScale reports whether d is representable with MoneyScale places.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}
