package server

import (
	handler "auction-escrow/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP surface calls into.
type Services struct {
	Bidding   handler.BiddingServiceInterface
	Finalizer handler.FinalizerInterface
	Escrow    handler.EscrowServiceInterface
	Wallet    handler.WalletServiceInterface
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	settlementHandler := handler.NewSettlementHandler(svc.Finalizer, svc.Escrow)
	walletHandler := handler.NewWalletHandler(svc.Wallet)

	router.GET("/healthz", HealthHandler)

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/leading", biddingHandler.GetLeadingBidHandler)
	}

	sales := router.Group("/sales")
	{
		sales.POST("/:sale_id/confirm-delivery", settlementHandler.ConfirmDeliveryHandler)
		sales.POST("/:sale_id/shipment", settlementHandler.RecordShipmentHandler)
		sales.POST("/:sale_id/disputes", settlementHandler.OpenDisputeHandler)
	}

	wallets := router.Group("/wallets")
	{
		wallets.POST("/:user_id/topup", walletHandler.TopUpHandler)
		wallets.GET("/:user_id", walletHandler.GetWalletHandler)
		wallets.GET("/:user_id/transactions", walletHandler.ListTransactionsHandler)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/auctions/:auction_id/finalize", settlementHandler.FinalizeAuctionHandler)
		admin.GET("/auctions/review", settlementHandler.ReviewQueueHandler)
		admin.POST("/sales/:sale_id/release", settlementHandler.ReleaseFundsHandler)
		admin.POST("/disputes/:dispute_id/review", settlementHandler.ReviewDisputeHandler)
		admin.POST("/disputes/:dispute_id/resolve", settlementHandler.ResolveDisputeHandler)
	}

	return router
}
