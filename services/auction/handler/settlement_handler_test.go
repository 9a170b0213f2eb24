package handler

import (
	"net/http"
	"testing"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/escrow"
	"auction-escrow/internal/finalizer"
	model "auction-escrow/internal/models"
	"auction-escrow/services/auction/helpers"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type settlementMocks struct {
	finalizer *MockFinalizerInterface
	escrow    *MockEscrowServiceInterface
}

func newSettlementRouter(t *testing.T) (*gin.Engine, settlementMocks) {
	ctrl := gomock.NewController(t)
	m := settlementMocks{
		finalizer: NewMockFinalizerInterface(ctrl),
		escrow:    NewMockEscrowServiceInterface(ctrl),
	}
	h := NewSettlementHandler(m.finalizer, m.escrow)

	router := gin.New()
	router.POST("/admin/auctions/:auction_id/finalize", h.FinalizeAuctionHandler)
	router.GET("/admin/auctions/review", h.ReviewQueueHandler)
	router.POST("/sales/:sale_id/confirm-delivery", h.ConfirmDeliveryHandler)
	router.POST("/sales/:sale_id/shipment", h.RecordShipmentHandler)
	router.POST("/sales/:sale_id/disputes", h.OpenDisputeHandler)
	router.POST("/admin/sales/:sale_id/release", h.ReleaseFundsHandler)
	router.POST("/admin/disputes/:dispute_id/review", h.ReviewDisputeHandler)
	router.POST("/admin/disputes/:dispute_id/resolve", h.ResolveDisputeHandler)
	return router, m
}

func TestSettlementHandlers(t *testing.T) {
	t.Parallel()

	auctionID, saleID, disputeID := uuid.New(), uuid.New(), uuid.New()
	buyerID, sellerID, adminID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		mockSetup      func(m settlementMocks)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:   "finalize_settled",
			method: http.MethodPost,
			path:   "/admin/auctions/" + auctionID.String() + "/finalize",
			mockSetup: func(m settlementMocks) {
				m.finalizer.EXPECT().FinalizeAuction(gomock.Any(), auctionID).
					Return(finalizer.Result{AuctionID: auctionID, Outcome: finalizer.OutcomeSettled}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auction finalized",
		},
		{
			name:   "finalize_unknown_auction",
			method: http.MethodPost,
			path:   "/admin/auctions/" + auctionID.String() + "/finalize",
			mockSetup: func(m settlementMocks) {
				m.finalizer.EXPECT().FinalizeAuction(gomock.Any(), auctionID).
					Return(finalizer.Result{}, auctionerrors.ErrAuctionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "auction not found",
		},
		{
			name:   "review_queue_empty",
			method: http.MethodGet,
			path:   "/admin/auctions/review",
			mockSetup: func(m settlementMocks) {
				m.finalizer.EXPECT().AuctionsAwaitingReview(gomock.Any()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auctions awaiting review",
		},
		{
			name:   "confirm_delivery_released",
			method: http.MethodPost,
			path:   "/sales/" + saleID.String() + "/confirm-delivery",
			body:   helpers.ConfirmDeliveryRequest{BuyerID: buyerID.String(), Note: "arrived"},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().ConfirmDelivery(gomock.Any(), buyerID, saleID, "arrived").
					Return(model.Sale{ID: saleID, Status: model.SaleReleased}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "delivery confirmed",
		},
		{
			name:   "confirm_delivery_wrong_buyer",
			method: http.MethodPost,
			path:   "/sales/" + saleID.String() + "/confirm-delivery",
			body:   helpers.ConfirmDeliveryRequest{BuyerID: sellerID.String()},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().ConfirmDelivery(gomock.Any(), sellerID, saleID, "").
					Return(model.Sale{}, auctionerrors.ErrNotBuyer)
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "caller not allowed",
		},
		{
			name:           "confirm_delivery_bad_sale_id",
			method:         http.MethodPost,
			path:           "/sales/sale-1/confirm-delivery",
			body:           helpers.ConfirmDeliveryRequest{BuyerID: buyerID.String()},
			mockSetup:      func(settlementMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid sale_id",
		},
		{
			name:   "record_shipment",
			method: http.MethodPost,
			path:   "/sales/" + saleID.String() + "/shipment",
			body:   helpers.RecordShipmentRequest{SellerID: sellerID.String(), Carrier: "DHL", TrackingNumber: "JD01"},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().RecordShipment(gomock.Any(), sellerID, saleID, "DHL", "JD01").
					Return(model.Shipment{ID: uuid.New(), SaleID: saleID}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "shipment recorded",
		},
		{
			name:   "open_dispute_already_open",
			method: http.MethodPost,
			path:   "/sales/" + saleID.String() + "/disputes",
			body:   helpers.OpenDisputeRequest{OpenerID: buyerID.String(), Reason: "damaged"},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().OpenDispute(gomock.Any(), buyerID, saleID, "damaged", "").
					Return(model.Dispute{}, auctionerrors.ErrOpenDispute)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "open dispute",
		},
		{
			name:   "release_already_released",
			method: http.MethodPost,
			path:   "/admin/sales/" + saleID.String() + "/release",
			body:   helpers.AdminRequest{AdminID: adminID.String()},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().ReleaseFunds(gomock.Any(), adminID, saleID).
					Return(model.Sale{}, auctionerrors.ErrAlreadyReleased)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "already released",
		},
		{
			name:           "release_missing_admin",
			method:         http.MethodPost,
			path:           "/admin/sales/" + saleID.String() + "/release",
			body:           `{}`,
			mockSetup:      func(settlementMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:   "review_dispute",
			method: http.MethodPost,
			path:   "/admin/disputes/" + disputeID.String() + "/review",
			body:   helpers.AdminRequest{AdminID: adminID.String()},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().ReviewDispute(gomock.Any(), adminID, disputeID).
					Return(model.Dispute{ID: disputeID, Status: model.DisputeUnderReview}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "dispute under review",
		},
		{
			name:   "resolve_split",
			method: http.MethodPost,
			path:   "/admin/disputes/" + disputeID.String() + "/resolve",
			body:   helpers.ResolveDisputeRequest{AdminID: adminID.String(), Action: "split", AmountToSeller: "120000", Note: "shared fault"},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().
					ResolveDispute(gomock.Any(), adminID, disputeID, escrow.ActionSplit, decimal.NewNullDecimal(decimal.RequireFromString("120000")), "shared fault").
					Return(model.Dispute{ID: disputeID, Status: model.DisputeResolved}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "dispute resolved",
		},
		{
			name:   "resolve_refund_upper_case",
			method: http.MethodPost,
			path:   "/admin/disputes/" + disputeID.String() + "/resolve",
			body:   helpers.ResolveDisputeRequest{AdminID: adminID.String(), Action: "REFUND"},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().
					ResolveDispute(gomock.Any(), adminID, disputeID, escrow.ActionRefund, decimal.NullDecimal{}, "").
					Return(model.Dispute{ID: disputeID, Status: model.DisputeResolved}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "dispute resolved",
		},
		{
			name:           "resolve_unknown_action",
			method:         http.MethodPost,
			path:           "/admin/disputes/" + disputeID.String() + "/resolve",
			body:           helpers.ResolveDisputeRequest{AdminID: adminID.String(), Action: "burn"},
			mockSetup:      func(settlementMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "resolve_unparsable_amount",
			method:         http.MethodPost,
			path:           "/admin/disputes/" + disputeID.String() + "/resolve",
			body:           helpers.ResolveDisputeRequest{AdminID: adminID.String(), Action: "split", AmountToSeller: "lots"},
			mockSetup:      func(settlementMocks) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:   "resolve_split_too_large",
			method: http.MethodPost,
			path:   "/admin/disputes/" + disputeID.String() + "/resolve",
			body:   helpers.ResolveDisputeRequest{AdminID: adminID.String(), Action: "split", AmountToSeller: "999999"},
			mockSetup: func(m settlementMocks) {
				m.escrow.EXPECT().
					ResolveDispute(gomock.Any(), adminID, disputeID, escrow.ActionSplit, gomock.Any(), "").
					Return(model.Dispute{}, auctionerrors.ErrInvalidSplitAmount)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid split amount",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router, mocks := newSettlementRouter(t)
			tc.mockSetup(mocks)

			status, resp := doRequest(t, router, tc.method, tc.path, tc.body)
			require.Equal(t, tc.expectedStatus, status)
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}
