package handler

import (
	"context"
	"net/http"

	"auction-escrow/internal/escrow"
	"auction-escrow/internal/finalizer"
	model "auction-escrow/internal/models"
	"auction-escrow/services/auction/helpers"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=settlement_handler.go -destination=mock_settlement_test.go -package=handler

type FinalizerInterface interface {
	FinalizeAuction(ctx context.Context, auctionID uuid.UUID) (finalizer.Result, error)
	AuctionsAwaitingReview(ctx context.Context) ([]model.Auction, error)
}

type EscrowServiceInterface interface {
	ConfirmDelivery(ctx context.Context, buyerID, saleID uuid.UUID, note string) (model.Sale, error)
	ReleaseFunds(ctx context.Context, actorID, saleID uuid.UUID) (model.Sale, error)
	RecordShipment(ctx context.Context, sellerID, saleID uuid.UUID, carrier, trackingNumber string) (model.Shipment, error)
	OpenDispute(ctx context.Context, openerID, saleID uuid.UUID, reason, details string) (model.Dispute, error)
	ReviewDispute(ctx context.Context, adminID, disputeID uuid.UUID) (model.Dispute, error)
	ResolveDispute(ctx context.Context, adminID, disputeID uuid.UUID, action escrow.Action, amountToSeller decimal.NullDecimal, note string) (model.Dispute, error)
}

// SettlementHandler serves auction close-out, sale settlement and disputes.
type SettlementHandler struct {
	finalizer FinalizerInterface
	escrow    EscrowServiceInterface
}

func NewSettlementHandler(f FinalizerInterface, e EscrowServiceInterface) *SettlementHandler {
	return &SettlementHandler{finalizer: f, escrow: e}
}

// FinalizeAuctionHandler handles POST /admin/auctions/:auction_id/finalize
func (h *SettlementHandler) FinalizeAuctionHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseIDParam(c, "FinalizeAuctionHandler", "auction_id")
	if !ok {
		return
	}

	res, err := h.finalizer.FinalizeAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "FinalizeAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, res, "auction finalized")
	helpers.LogSuccess("FinalizeAuctionHandler", "auction finalized", map[string]any{"auction_id": auctionID, "outcome": res.Outcome})
}

// ReviewQueueHandler handles GET /admin/auctions/review
func (h *SettlementHandler) ReviewQueueHandler(c *gin.Context) {
	auctions, err := h.finalizer.AuctionsAwaitingReview(c.Request.Context())
	if err != nil {
		helpers.HandleServiceError(c, "ReviewQueueHandler", err, nil)
		return
	}
	if auctions == nil {
		auctions = []model.Auction{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions awaiting review retrieved successfully")
	helpers.LogSuccess("ReviewQueueHandler", "auctions awaiting review retrieved", map[string]any{"count": len(auctions)})
}

// ConfirmDeliveryHandler handles POST /sales/:sale_id/confirm-delivery
func (h *SettlementHandler) ConfirmDeliveryHandler(c *gin.Context) {
	saleID, ok := helpers.ParseIDParam(c, "ConfirmDeliveryHandler", "sale_id")
	if !ok {
		return
	}
	var req helpers.ConfirmDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ConfirmDeliveryHandler", err)
		return
	}

	sale, err := h.escrow.ConfirmDelivery(c.Request.Context(), uuid.MustParse(req.BuyerID), saleID, req.Note)
	if err != nil {
		helpers.HandleServiceError(c, "ConfirmDeliveryHandler", err, map[string]any{"sale_id": saleID, "buyer_id": req.BuyerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, sale, "delivery confirmed and funds released")
	helpers.LogSuccess("ConfirmDeliveryHandler", "delivery confirmed", map[string]any{"sale_id": saleID})
}

// RecordShipmentHandler handles POST /sales/:sale_id/shipment
func (h *SettlementHandler) RecordShipmentHandler(c *gin.Context) {
	saleID, ok := helpers.ParseIDParam(c, "RecordShipmentHandler", "sale_id")
	if !ok {
		return
	}
	var req helpers.RecordShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordShipmentHandler", err)
		return
	}

	shipment, err := h.escrow.RecordShipment(c.Request.Context(), uuid.MustParse(req.SellerID), saleID, req.Carrier, req.TrackingNumber)
	if err != nil {
		helpers.HandleServiceError(c, "RecordShipmentHandler", err, map[string]any{"sale_id": saleID, "seller_id": req.SellerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, shipment, "shipment recorded")
	helpers.LogSuccess("RecordShipmentHandler", "shipment recorded", map[string]any{"sale_id": saleID, "shipment_id": shipment.ID})
}

// OpenDisputeHandler handles POST /sales/:sale_id/disputes
func (h *SettlementHandler) OpenDisputeHandler(c *gin.Context) {
	saleID, ok := helpers.ParseIDParam(c, "OpenDisputeHandler", "sale_id")
	if !ok {
		return
	}
	var req helpers.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "OpenDisputeHandler", err)
		return
	}

	dispute, err := h.escrow.OpenDispute(c.Request.Context(), uuid.MustParse(req.OpenerID), saleID, req.Reason, req.Details)
	if err != nil {
		helpers.HandleServiceError(c, "OpenDisputeHandler", err, map[string]any{"sale_id": saleID, "opener_id": req.OpenerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, dispute, "dispute opened")
	helpers.LogSuccess("OpenDisputeHandler", "dispute opened", map[string]any{"sale_id": saleID, "dispute_id": dispute.ID})
}

// ReleaseFundsHandler handles POST /admin/sales/:sale_id/release
func (h *SettlementHandler) ReleaseFundsHandler(c *gin.Context) {
	saleID, ok := helpers.ParseIDParam(c, "ReleaseFundsHandler", "sale_id")
	if !ok {
		return
	}
	var req helpers.AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ReleaseFundsHandler", err)
		return
	}

	sale, err := h.escrow.ReleaseFunds(c.Request.Context(), uuid.MustParse(req.AdminID), saleID)
	if err != nil {
		helpers.HandleServiceError(c, "ReleaseFundsHandler", err, map[string]any{"sale_id": saleID, "admin_id": req.AdminID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, sale, "funds released")
	helpers.LogSuccess("ReleaseFundsHandler", "funds released", map[string]any{"sale_id": saleID})
}

// ReviewDisputeHandler handles POST /admin/disputes/:dispute_id/review
func (h *SettlementHandler) ReviewDisputeHandler(c *gin.Context) {
	disputeID, ok := helpers.ParseIDParam(c, "ReviewDisputeHandler", "dispute_id")
	if !ok {
		return
	}
	var req helpers.AdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ReviewDisputeHandler", err)
		return
	}

	dispute, err := h.escrow.ReviewDispute(c.Request.Context(), uuid.MustParse(req.AdminID), disputeID)
	if err != nil {
		helpers.HandleServiceError(c, "ReviewDisputeHandler", err, map[string]any{"dispute_id": disputeID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, dispute, "dispute under review")
	helpers.LogSuccess("ReviewDisputeHandler", "dispute under review", map[string]any{"dispute_id": disputeID})
}

// ResolveDisputeHandler handles POST /admin/disputes/:dispute_id/resolve
func (h *SettlementHandler) ResolveDisputeHandler(c *gin.Context) {
	disputeID, ok := helpers.ParseIDParam(c, "ResolveDisputeHandler", "dispute_id")
	if !ok {
		return
	}
	var req helpers.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ResolveDisputeHandler", err)
		return
	}
	action, err := escrow.ParseAction(req.Action)
	if err != nil {
		helpers.HandleBindError(c, "ResolveDisputeHandler", err)
		return
	}
	amount, err := helpers.ParseOptionalAmount(req.AmountToSeller)
	if err != nil {
		helpers.HandleBindError(c, "ResolveDisputeHandler", err)
		return
	}

	dispute, err := h.escrow.ResolveDispute(c.Request.Context(), uuid.MustParse(req.AdminID), disputeID, action, amount, req.Note)
	if err != nil {
		helpers.HandleServiceError(c, "ResolveDisputeHandler", err, map[string]any{"dispute_id": disputeID, "action": action})
		return
	}

	utils.JSONResponse(c, http.StatusOK, dispute, "dispute resolved")
	helpers.LogSuccess("ResolveDisputeHandler", "dispute resolved", map[string]any{"dispute_id": disputeID, "action": action})
}
