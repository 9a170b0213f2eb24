package helpers

import (
	"time"

	model "auction-escrow/internal/models"
)

// Request/Response DTOs. Amounts travel as decimal strings.
type PlaceBidRequest struct {
	AuctionID string `json:"auction_id" binding:"required,uuid"`
	UserID    string `json:"user_id" binding:"required,uuid"`
	Amount    string `json:"amount" binding:"required"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	CreatedAt string `json:"created_at"`
}

func NewBidResponse(b model.Bid) BidResponse {
	return BidResponse{
		BidID:     b.ID.String(),
		AuctionID: b.AuctionID.String(),
		UserID:    b.UserID.String(),
		Amount:    b.Amount.StringFixed(2),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type ConfirmDeliveryRequest struct {
	BuyerID string `json:"buyer_id" binding:"required,uuid"`
	Note    string `json:"note"`
}

type RecordShipmentRequest struct {
	SellerID       string `json:"seller_id" binding:"required,uuid"`
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

type OpenDisputeRequest struct {
	OpenerID string `json:"opener_id" binding:"required,uuid"`
	Reason   string `json:"reason" binding:"required"`
	Details  string `json:"details"`
}

// AdminRequest carries the acting admin for admin-only routes.
type AdminRequest struct {
	AdminID string `json:"admin_id" binding:"required,uuid"`
}

type ResolveDisputeRequest struct {
	AdminID        string `json:"admin_id" binding:"required,uuid"`
	Action         string `json:"action" binding:"required,oneof=release refund split RELEASE REFUND SPLIT"`
	AmountToSeller string `json:"amount_to_seller"`
	Note           string `json:"note"`
}

type TopUpRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type TopUpResponse struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}
