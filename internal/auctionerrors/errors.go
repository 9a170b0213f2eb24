package auctionerrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Repository-level errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrDisputeNotFound  = errors.New("dispute not found")
	ErrPayoutNotFound   = errors.New("payout not found")
	ErrHoldNotFound     = errors.New("hold not found")
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrNoBids           = errors.New("no bids found for auction")
	ErrLockTimeout      = errors.New("timed out waiting for row lock")
)

// validation errors, raised before any lock is taken
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAction      = errors.New("invalid dispute action")
	ErrInvalidSplitAmount = errors.New("invalid split amount")
)

// business logic errors, detected under lock
var (
	ErrInvalidBid        = errors.New("invalid bid")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrAuctionNotOpen    = errors.New("auction not open for bidding")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotBuyer          = errors.New("caller is not the buyer of this sale")
	ErrNotSeller         = errors.New("caller is not the seller of this sale")
	ErrNotParticipant    = errors.New("caller is not a party to this sale")
	ErrWrongSaleState    = errors.New("sale is not in the required state")
	ErrOpenDispute       = errors.New("sale has an open dispute")
	ErrAlreadyReleased   = errors.New("sale funds already released")
	ErrDisputeResolved   = errors.New("dispute already resolved")
	ErrDisputeState      = errors.New("dispute is not in the required state")
)

// MinimumBidError reports a bid below the auction's next acceptable amount.
type MinimumBidError struct {
	Minimum decimal.Decimal
}

func (e *MinimumBidError) Error() string {
	return fmt.Sprintf("%s; minimum is %s", ErrBidTooLow, e.Minimum.String())
}

func (e *MinimumBidError) Is(target error) bool {
	return target == ErrBidTooLow || target == ErrInvalidBid
}
