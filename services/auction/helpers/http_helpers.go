package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"
	"auction-escrow/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, auctionerrors.ErrInvalidAction):
		return http.StatusBadRequest, "invalid dispute action"
	case errors.Is(err, auctionerrors.ErrInvalidSplitAmount):
		return http.StatusBadRequest, "invalid split amount"
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrSaleNotFound):
		return http.StatusNotFound, "sale not found"
	case errors.Is(err, auctionerrors.ErrDisputeNotFound):
		return http.StatusNotFound, "dispute not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrAuctionNotOpen):
		return http.StatusConflict, "auction not open for bidding"
	case errors.Is(err, auctionerrors.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient funds"
	case errors.Is(err, auctionerrors.ErrNotBuyer),
		errors.Is(err, auctionerrors.ErrNotSeller),
		errors.Is(err, auctionerrors.ErrNotParticipant):
		return http.StatusForbidden, "caller not allowed on this sale"
	case errors.Is(err, auctionerrors.ErrOpenDispute):
		return http.StatusConflict, "sale has an open dispute"
	case errors.Is(err, auctionerrors.ErrAlreadyReleased):
		return http.StatusConflict, "sale funds already released"
	case errors.Is(err, auctionerrors.ErrWrongSaleState):
		return http.StatusConflict, "sale is not in the required state"
	case errors.Is(err, auctionerrors.ErrDisputeResolved):
		return http.StatusConflict, "dispute already resolved"
	case errors.Is(err, auctionerrors.ErrDisputeState):
		return http.StatusConflict, "dispute is not in the required state"
	case errors.Is(err, auctionerrors.ErrLockTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "resource busy, retry later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// HandleServiceError writes the mapped error response and logs it. A bid
// below the minimum also reports the minimum.
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)

	var minErr *auctionerrors.MinimumBidError
	if errors.As(err, &minErr) {
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message, gin.H{"minimum_bid": minErr.Minimum.StringFixed(2)})
	} else {
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
	}

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// ParseIDParam reads a UUID path parameter, answering 400 when it is malformed.
func ParseIDParam(c *gin.Context, handlerName, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("invalid %s: %w", name, err), "invalid "+name)
		utils.Warn(handlerName+": bad path parameter", map[string]any{"param": name, "value": c.Param(name)})
		return uuid.Nil, false
	}
	return id, true
}

// ParseAmount parses a decimal string that must be strictly positive.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %s must be positive", raw)
	}
	if !model.HasMoneyScale(amount) {
		return decimal.Zero, fmt.Errorf("amount %s has more than %d decimal places", raw, model.MoneyScale)
	}
	return amount, nil
}

// ParseOptionalAmount parses a decimal string, treating empty as absent.
func ParseOptionalAmount(raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if !model.HasMoneyScale(amount) {
		return decimal.NullDecimal{}, fmt.Errorf("amount %s has more than %d decimal places", raw, model.MoneyScale)
	}
	return decimal.NewNullDecimal(amount), nil
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
