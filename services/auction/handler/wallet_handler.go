package handler

import (
	"context"
	"net/http"

	model "auction-escrow/internal/models"
	"auction-escrow/services/auction/helpers"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=wallet_handler.go -destination=mock_wallet_service_test.go -package=handler

type WalletServiceInterface interface {
	TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (model.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]model.Transaction, error)
}

type WalletHandler struct {
	service WalletServiceInterface
}

func NewWalletHandler(service WalletServiceInterface) *WalletHandler {
	return &WalletHandler{service: service}
}

// TopUpHandler handles POST /wallets/:user_id/topup
func (h *WalletHandler) TopUpHandler(c *gin.Context) {
	userID, ok := helpers.ParseIDParam(c, "TopUpHandler", "user_id")
	if !ok {
		return
	}
	var req helpers.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "TopUpHandler", err)
		return
	}
	amount, err := helpers.ParseAmount(req.Amount)
	if err != nil {
		helpers.HandleBindError(c, "TopUpHandler", err)
		return
	}

	balance, err := h.service.TopUp(c.Request.Context(), userID, amount)
	if err != nil {
		helpers.HandleServiceError(c, "TopUpHandler", err, map[string]any{"user_id": userID, "amount": req.Amount})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.TopUpResponse{UserID: userID.String(), Balance: balance.StringFixed(2)}, "wallet topped up")
	helpers.LogSuccess("TopUpHandler", "wallet topped up", map[string]any{"user_id": userID, "amount": amount.String()})
}

// GetWalletHandler handles GET /wallets/:user_id
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	userID, ok := helpers.ParseIDParam(c, "GetWalletHandler", "user_id")
	if !ok {
		return
	}

	w, err := h.service.GetWallet(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetWalletHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, w, "wallet retrieved successfully")
}

// ListTransactionsHandler handles GET /wallets/:user_id/transactions
func (h *WalletHandler) ListTransactionsHandler(c *gin.Context) {
	userID, ok := helpers.ParseIDParam(c, "ListTransactionsHandler", "user_id")
	if !ok {
		return
	}

	txns, err := h.service.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "ListTransactionsHandler", err, map[string]any{"user_id": userID})
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}

	utils.JSONResponse(c, http.StatusOK, txns, "transactions retrieved successfully")
	helpers.LogSuccess("ListTransactionsHandler", "transactions retrieved successfully", map[string]any{"user_id": userID, "count": len(txns)})
}
