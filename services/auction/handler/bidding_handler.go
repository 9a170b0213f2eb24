package handler

import (
	"context"
	"errors"
	"net/http"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"
	"auction-escrow/services/auction/helpers"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=bidding_handler.go -destination=mock_bidding_service_test.go -package=handler

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, userID, auctionID uuid.UUID, amount decimal.Decimal) (model.Bid, error)
	GetBidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]model.Bid, error)
	GetLeadingBid(ctx context.Context, auctionID uuid.UUID) (model.Bid, error)
}

type BiddingHandler struct {
	service BiddingServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface) *BiddingHandler {
	return &BiddingHandler{service: service}
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}
	amount, err := helpers.ParseAmount(req.Amount)
	if err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), uuid.MustParse(req.UserID), uuid.MustParse(req.AuctionID), amount)
	if err != nil {
		helpers.HandleServiceError(c, "RecordBidHandler", err, map[string]any{
			"auction_id": req.AuctionID,
			"user_id":    req.UserID,
			"amount":     req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": bid.AuctionID,
		"user_id":    bid.UserID,
		"amount":     bid.Amount.String(),
	})
}

// GetBidsByAuctionHandler handles GET /auctions/:auction_id/bids
func (h *BiddingHandler) GetBidsByAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "GetBidsByAuctionHandler", "auction_id")
	if !ok {
		return
	}

	bids, err := h.service.GetBidsForAuction(c.Request.Context(), auctionID)
	if err != nil && !errors.Is(err, auctionerrors.ErrNoBids) {
		helpers.HandleServiceError(c, "GetBidsByAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	resp := make([]helpers.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, helpers.NewBidResponse(b))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByAuctionHandler", "bids retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(resp),
	})
}

// GetLeadingBidHandler handles GET /auctions/:auction_id/leading
func (h *BiddingHandler) GetLeadingBidHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "GetLeadingBidHandler", "auction_id")
	if !ok {
		return
	}

	bid, err := h.service.GetLeadingBid(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNoBids) {
			utils.JSONError(c, http.StatusNotFound, err, "no leading bid found")
			utils.Info("GetLeadingBidHandler: no leading bid found", map[string]any{"auction_id": auctionID})
			return
		}
		helpers.HandleServiceError(c, "GetLeadingBidHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewBidResponse(bid), "leading bid retrieved successfully")
	helpers.LogSuccess("GetLeadingBidHandler", "leading bid retrieved successfully", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": bid.AuctionID,
		"amount":     bid.Amount.String(),
	})
}
