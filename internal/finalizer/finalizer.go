package finalizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/events"
	"auction-escrow/internal/journal"
	"auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/workpool"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is applied when neither the auction nor the config sets one.
var DefaultCommissionRate = decimal.NewFromInt(5)

type Outcome string

const (
	OutcomeNoBids         Outcome = "NO_BIDS"
	OutcomeSettled        Outcome = "SETTLED"
	OutcomeReviewRequired Outcome = "REVIEW_REQUIRED"
	OutcomeAlreadySettled Outcome = "ALREADY_SETTLED"
	OutcomeCancelled      Outcome = "CANCELLED"
)

// Result describes what one finalize call did.
type Result struct {
	AuctionID  uuid.UUID       `json:"auction_id"`
	Outcome    Outcome         `json:"outcome"`
	WinnerID   uuid.UUID       `json:"winner_id,omitempty"`
	FinalPrice decimal.Decimal `json:"final_price"`
	SaleID     uuid.UUID       `json:"sale_id,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// BatchReport summarizes one FinalizeEndedAuctions pass.
type BatchReport struct {
	Attempted int                  `json:"attempted"`
	Outcomes  map[Outcome]int      `json:"outcomes"`
	Failed    map[uuid.UUID]string `json:"failed"`
}

type Options struct {
	// CommissionRate is the percentage used when an auction has none.
	CommissionRate decimal.Decimal
	// Workers bounds how many auctions one batch finalizes at once.
	Workers int
}

type Finalizer struct {
	db      repository.LedgerDB
	clock   clock.Clock
	emitter *events.Emitter
	rate    decimal.Decimal
	workers int
}

func New(db repository.LedgerDB, clk clock.Clock, emitter *events.Emitter, opts Options) *Finalizer {
	rate := opts.CommissionRate
	if !rate.IsPositive() {
		rate = DefaultCommissionRate
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Finalizer{db: db, clock: clk, emitter: emitter, rate: rate, workers: workers}
}

// FinalizeAuction closes one auction. Calling it again on a settled auction
// is a no-op reported as OutcomeAlreadySettled.
func (f *Finalizer) FinalizeAuction(ctx context.Context, auctionID uuid.UUID) (Result, error) {
	if auctionID == uuid.Nil {
		return Result{}, fmt.Errorf("finalizer: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	now := f.clock.Now().UTC()
	res := Result{AuctionID: auctionID}

	err := f.db.InTx(ctx, func(tx repository.LedgerTx) error {
		res = Result{AuctionID: auctionID}

		auction, err := tx.LockAuction(auctionID)
		if err != nil {
			return err
		}
		if auction.Settled {
			res.Outcome = OutcomeAlreadySettled
			return nil
		}
		if auction.Status == models.AuctionCancelled {
			res.Outcome = OutcomeCancelled
			return f.closeCancelled(tx, auction)
		}

		winning, err := tx.GetWinningBid(auctionID)
		if errors.Is(err, auctionerrors.ErrNoBids) {
			res.Outcome = OutcomeNoBids
			auction.Status = models.AuctionFinished
			auction.Settled = true
			auction.UpdatedAt = now
			return tx.UpdateAuction(auction)
		}
		if err != nil {
			return err
		}

		res.WinnerID = winning.UserID
		res.FinalPrice = winning.Amount
		auction.Status = models.AuctionFinished
		auction.Settled = true
		auction.WinnerID = utils.NullID(winning.UserID)
		auction.FinalPrice = decimal.NewNullDecimal(winning.Amount)
		auction.UpdatedAt = now

		held, err := tx.ListHoldsByAuction(auctionID, models.HoldHeld)
		if err != nil {
			return fmt.Errorf("list holds for auction %s: %w", auctionID, err)
		}
		winnerHold, ok := findWinnerHold(held, winning)
		if !ok {
			res.Outcome = OutcomeReviewRequired
			res.Reason = "no held funds cover the winning bid"
			return tx.UpdateAuction(auction)
		}

		winner, err := tx.LockUser(winning.UserID)
		if err != nil {
			return err
		}
		if winner.Balance.LessThan(winning.Amount) {
			res.Outcome = OutcomeReviewRequired
			res.Reason = fmt.Sprintf("winner balance %s below final price %s", winner.Balance, winning.Amount)
			return tx.UpdateAuction(auction)
		}

		sale, err := f.settle(tx, &auction, winner, winnerHold, winning.Amount)
		if err != nil {
			return err
		}
		res.SaleID = sale.ID

		for _, h := range held {
			if h.ID == winnerHold.ID {
				continue
			}
			if err := journal.ReleaseHold(tx, now, h, "auction "+auctionID.String()+" closed"); err != nil {
				return err
			}
		}

		res.Outcome = OutcomeSettled
		return tx.UpdateAuction(auction)
	})
	if err != nil {
		return Result{}, fmt.Errorf("finalizer: failed to finalize auction %s: %w", auctionID, err)
	}

	f.report(ctx, res)
	return res, nil
}

// findWinnerHold returns the winner's HELD hold covering the final price.
func findWinnerHold(held []models.Hold, winning models.Bid) (models.Hold, bool) {
	for _, h := range held {
		if h.UserID == winning.UserID && h.Amount.GreaterThanOrEqual(winning.Amount) {
			return h, true
		}
	}
	return models.Hold{}, false
}

// settle charges the winner and creates the sale, payout and commission rows.
// The winner's row is locked by the caller; the platform balance is locked here, last.
func (f *Finalizer) settle(tx repository.LedgerTx, auction *models.Auction, winner models.User, hold models.Hold, finalPrice decimal.Decimal) (models.Sale, error) {
	now := f.clock.Now().UTC()

	winner.Balance = winner.Balance.Sub(finalPrice)
	winner.UpdatedAt = now
	if err := tx.UpdateUser(winner); err != nil {
		return models.Sale{}, fmt.Errorf("charge winner %s: %w", winner.ID, err)
	}

	rate := f.rate
	if auction.CommissionRate.Valid {
		rate = auction.CommissionRate.Decimal
	}
	commission, net := Commission(finalPrice, rate)

	payout := models.Payout{
		ID:               utils.GenerateID(),
		AuctionID:        auction.ID,
		SellerID:         auction.SellerID,
		TotalAmount:      finalPrice,
		CommissionAmount: commission,
		NetAmount:        net,
		Status:           models.PayoutPending,
		CreatedAt:        now,
	}
	if err := tx.CreatePayout(payout); err != nil {
		return models.Sale{}, fmt.Errorf("create payout: %w", err)
	}

	sale := models.Sale{
		ID:               utils.GenerateID(),
		AuctionID:        auction.ID,
		BuyerID:          winner.ID,
		SellerID:         auction.SellerID,
		PayoutID:         utils.NullID(payout.ID),
		FinalPrice:       finalPrice,
		CommissionRate:   rate,
		CommissionAmount: commission,
		NetAmount:        net,
		Status:           models.SaleEscrowed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.CreateSale(sale); err != nil {
		return models.Sale{}, fmt.Errorf("create sale: %w", err)
	}

	hold.Status = models.HoldUsed
	hold.ReleasedAt = &now
	hold.UpdatedAt = now
	if err := tx.UpdateHold(hold); err != nil {
		return models.Sale{}, fmt.Errorf("use hold %s: %w", hold.ID, err)
	}

	if err := journal.Record(tx, now, journal.Line{
		UserID:      winner.ID,
		Amount:      finalPrice,
		SaleID:      utils.NullID(sale.ID),
		EscrowType:  models.EscrowIn,
		TxType:      models.TxPayment,
		Direction:   models.DirectionOut,
		Related:     models.RelatedSale,
		ReferenceID: sale.ID,
		Description: "charge for auction " + auction.ID.String(),
	}); err != nil {
		return models.Sale{}, err
	}

	if err := tx.CreateCommissionLog(models.CommissionLog{
		ID:               utils.GenerateID(),
		AuctionID:        auction.ID,
		PayoutID:         payout.ID,
		SellerID:         auction.SellerID,
		CommissionAmount: commission,
		CommissionRate:   rate,
		Note:             "auction finalized",
		CreatedAt:        now,
	}); err != nil {
		return models.Sale{}, fmt.Errorf("create commission log: %w", err)
	}

	platform, err := tx.LockPlatformBalance()
	if err != nil {
		return models.Sale{}, err
	}
	platform.Balance = platform.Balance.Add(commission)
	platform.TotalCommission = platform.TotalCommission.Add(commission)
	platform.LastUpdated = now
	if err := tx.UpdatePlatformBalance(platform); err != nil {
		return models.Sale{}, fmt.Errorf("credit platform commission: %w", err)
	}

	auction.CommissionRate = decimal.NewNullDecimal(rate)
	auction.CommissionAmount = decimal.NewNullDecimal(commission)
	return sale, nil
}

// Commission splits finalPrice at rate percent. Commission is rounded to cents
// and net takes the remainder, so the two always sum to finalPrice.
func Commission(finalPrice, rate decimal.Decimal) (commission, net decimal.Decimal) {
	commission = finalPrice.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	return commission, finalPrice.Sub(commission)
}

// closeCancelled releases every HELD hold of a cancelled auction and marks it settled.
func (f *Finalizer) closeCancelled(tx repository.LedgerTx, auction models.Auction) error {
	now := f.clock.Now().UTC()
	held, err := tx.ListHoldsByAuction(auction.ID, models.HoldHeld)
	if err != nil {
		return fmt.Errorf("list holds for auction %s: %w", auction.ID, err)
	}
	for _, h := range held {
		if err := journal.ReleaseHold(tx, now, h, "auction "+auction.ID.String()+" cancelled"); err != nil {
			return err
		}
	}
	auction.Settled = true
	auction.UpdatedAt = now
	return tx.UpdateAuction(auction)
}

func (f *Finalizer) report(ctx context.Context, res Result) {
	fields := map[string]any{"auction_id": res.AuctionID, "outcome": res.Outcome}
	switch res.Outcome {
	case OutcomeSettled:
		fields["winner_id"] = res.WinnerID
		fields["final_price"] = res.FinalPrice.String()
		fields["sale_id"] = res.SaleID
		utils.Info("Auction settled", fields)
		f.emitter.Emit(ctx, events.AuctionFinalized, res.AuctionID.String(), res)
	case OutcomeReviewRequired:
		fields["winner_id"] = res.WinnerID
		fields["final_price"] = res.FinalPrice.String()
		fields["reason"] = res.Reason
		utils.Error("Auction finished without settlement; manual review required", fields)
		f.emitter.Emit(ctx, events.AuctionReviewRequired, res.AuctionID.String(), res)
	case OutcomeAlreadySettled:
		utils.Debug("Auction already settled", fields)
	default:
		utils.Info("Auction closed", fields)
		f.emitter.Emit(ctx, events.AuctionFinalized, res.AuctionID.String(), res)
	}
}

// FinalizeEndedAuctions finalizes every auction past its end that is not yet
// settled. Each auction runs in its own unit of work; failures are logged per
// auction and do not stop the others.
func (f *Finalizer) FinalizeEndedAuctions(ctx context.Context) (BatchReport, error) {
	now := f.clock.Now().UTC()

	var ended []models.Auction
	err := f.db.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		ended, err = tx.ListEndedUnsettledAuctions(now)
		return err
	})
	if err != nil {
		return BatchReport{}, fmt.Errorf("finalizer: list ended auctions: %w", err)
	}

	report := BatchReport{Outcomes: map[Outcome]int{}, Failed: map[uuid.UUID]string{}}
	if len(ended) == 0 {
		return report, nil
	}

	pool, err := workpool.NewWorkPool(f.workers)
	if err != nil {
		return report, fmt.Errorf("finalizer: start work pool: %w", err)
	}
	defer pool.Stop()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, a := range ended {
		id := a.ID
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			res, err := f.FinalizeAuction(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			report.Attempted++
			if err != nil {
				report.Failed[id] = err.Error()
				utils.Error("Error finalizing auction", map[string]any{"auction_id": id, "error": err.Error()})
				return
			}
			report.Outcomes[res.Outcome]++
		})
	}
	wg.Wait()

	utils.Info("Finalize pass completed", map[string]any{
		"attempted": report.Attempted,
		"failed":    len(report.Failed),
		"settled":   report.Outcomes[OutcomeSettled],
		"review":    report.Outcomes[OutcomeReviewRequired],
	})
	return report, nil
}

// AuctionsAwaitingReview lists auctions that finished with a winner but no sale.
func (f *Finalizer) AuctionsAwaitingReview(ctx context.Context) ([]models.Auction, error) {
	var out []models.Auction
	err := f.db.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		out, err = tx.ListAuctionsAwaitingReview()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("finalizer: list auctions awaiting review: %w", err)
	}
	return out, nil
}
