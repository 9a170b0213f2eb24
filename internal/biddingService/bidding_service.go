package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/events"
	"auction-escrow/internal/journal"
	"auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BiddingService records bids and keeps one committed hold per leading bidder.
type BiddingService struct {
	db      repository.LedgerDB
	clock   clock.Clock
	emitter *events.Emitter
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(db repository.LedgerDB, clk clock.Clock, emitter *events.Emitter) *BiddingService {
	return &BiddingService{
		db:      db,
		clock:   clk,
		emitter: emitter,
	}
}

// MinimumBid returns the lowest amount the auction accepts next. The opening
// bid may equal the starting price, so an auction starting at 100,000 opens
// with a 100,000 bid; later bids must beat the current price by the minimum
// increment.
func MinimumBid(a models.Auction) decimal.Decimal {
	if !a.CurrentPrice.Valid {
		return a.StartingPrice
	}
	inc := a.MinIncrement
	if !inc.IsPositive() {
		inc = decimal.NewFromInt(1)
	}
	return a.CurrentPrice.Decimal.Add(inc)
}

// PlaceBid validates and records a user's bid, moving the auction's single
// committed hold to this bidder. Balances are not touched here.
func (s *BiddingService) PlaceBid(ctx context.Context, userID, auctionID uuid.UUID, amount decimal.Decimal) (models.Bid, error) {
	if err := validateBid(userID, auctionID, amount); err != nil {
		return models.Bid{}, err
	}

	now := s.clock.Now().UTC()
	bid := models.Bid{
		ID:        utils.GenerateID(),
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: now,
	}

	var released *models.Hold
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		auction, err := tx.LockAuction(auctionID)
		if err != nil {
			return err
		}
		if err := checkOpen(auction, now); err != nil {
			return err
		}
		if minimum := MinimumBid(auction); amount.LessThan(minimum) {
			return &auctionerrors.MinimumBidError{Minimum: minimum}
		}

		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}

		held, err := tx.ListHoldsByUser(userID, models.HoldHeld)
		if err != nil {
			return fmt.Errorf("list holds for user %s: %w", userID, err)
		}
		totalHeld, heldHere := decimal.Zero, decimal.Zero
		var mine []models.Hold
		for _, h := range held {
			totalHeld = totalHeld.Add(h.Amount)
			if h.AuctionID == auctionID {
				heldHere = heldHere.Add(h.Amount)
				mine = append(mine, h)
			}
		}

		increment := decimal.Max(amount.Sub(heldHere), decimal.Zero)
		available := user.Balance.Sub(totalHeld)
		if available.LessThan(increment) {
			return fmt.Errorf("service: %w - available %s, needed %s", auctionerrors.ErrInsufficientFunds, available, increment)
		}

		prevTop, err := previousTopHold(tx, auctionID, userID)
		if err != nil {
			return err
		}

		if err := tx.CreateBid(bid); err != nil {
			return err
		}

		if err := upsertHold(tx, now, userID, auctionID, amount, mine, increment); err != nil {
			return err
		}

		if prevTop != nil {
			if err := journal.ReleaseHold(tx, now, *prevTop, "outbid on auction "+auctionID.String()); err != nil {
				return err
			}
			released = prevTop
		}

		auction.CurrentPrice = decimal.NewNullDecimal(amount)
		auction.UpdatedAt = now
		return tx.UpdateAuction(auction)
	})
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to place bid on auction %s by user %s: %w", auctionID, userID, err)
	}

	fields := map[string]any{"auction_id": auctionID, "user_id": userID, "amount": amount.String()}
	if released != nil {
		fields["released_hold_id"] = released.ID
		fields["outbid_user_id"] = released.UserID
	}
	utils.Info("Bid placed", fields)
	s.emitter.Emit(ctx, events.BidPlaced, auctionID.String(), bid)

	return bid, nil
}

// validateBid rejects malformed input before any lock is taken
func validateBid(userID, auctionID uuid.UUID, amount decimal.Decimal) error {
	if userID == uuid.Nil || auctionID == uuid.Nil {
		return fmt.Errorf("service: %w - missing auctionID or userID", auctionerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}
	if !models.HasMoneyScale(amount) {
		return fmt.Errorf("service: %w - bid amount %s has more than %d decimal places", auctionerrors.ErrInvalidBid, amount, models.MoneyScale)
	}
	return nil
}

func checkOpen(a models.Auction, now time.Time) error {
	if a.Status != models.AuctionPublished {
		return fmt.Errorf("service: %w - status %s", auctionerrors.ErrAuctionNotOpen, a.Status)
	}
	if now.Before(a.StartAt) || now.After(a.EndAt) {
		return fmt.Errorf("service: %w - outside bidding window", auctionerrors.ErrAuctionNotOpen)
	}
	return nil
}

// previousTopHold is the other bidders' HELD hold with the greatest amount,
// the most recent on ties.
func previousTopHold(tx repository.LedgerTx, auctionID, bidderID uuid.UUID) (*models.Hold, error) {
	holds, err := tx.ListHoldsByAuction(auctionID, models.HoldHeld)
	if err != nil {
		return nil, fmt.Errorf("list holds for auction %s: %w", auctionID, err)
	}

	var top *models.Hold
	for i := range holds {
		h := holds[i]
		if h.UserID == bidderID {
			continue
		}
		if top == nil || h.Amount.GreaterThan(top.Amount) ||
			(h.Amount.Equal(top.Amount) && h.CreatedAt.After(top.CreatedAt)) {
			top = &h
		}
	}
	return top, nil
}

// upsertHold raises the bidder's hold on the auction to amount, collapsing
// duplicate HELD rows into the newest one first.
func upsertHold(tx repository.LedgerTx, now time.Time, userID, auctionID uuid.UUID, amount decimal.Decimal, mine []models.Hold, increment decimal.Decimal) error {
	if len(mine) == 0 {
		hold := models.Hold{
			ID:        utils.GenerateID(),
			UserID:    userID,
			AuctionID: auctionID,
			Amount:    amount,
			Status:    models.HoldHeld,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreateHold(hold); err != nil {
			return fmt.Errorf("create hold: %w", err)
		}
		return journalHold(tx, now, hold, amount)
	}

	hold, err := mergeDuplicates(tx, mine)
	if err != nil {
		return err
	}
	if len(mine) == 1 && !increment.IsPositive() {
		return nil
	}
	hold.Amount = hold.Amount.Add(increment)
	hold.UpdatedAt = now
	if err := tx.UpdateHold(hold); err != nil {
		return fmt.Errorf("raise hold %s: %w", hold.ID, err)
	}
	return journalHold(tx, now, hold, increment)
}

func mergeDuplicates(tx repository.LedgerTx, mine []models.Hold) (models.Hold, error) {
	newest := mine[0]
	for _, h := range mine[1:] {
		if h.CreatedAt.After(newest.CreatedAt) {
			newest = h
		}
	}
	if len(mine) == 1 {
		return newest, nil
	}

	total := decimal.Zero
	for _, h := range mine {
		total = total.Add(h.Amount)
		if h.ID == newest.ID {
			continue
		}
		if err := tx.DeleteHold(h.ID); err != nil {
			return models.Hold{}, fmt.Errorf("delete duplicate hold %s: %w", h.ID, err)
		}
	}
	utils.Warn("Merged duplicate held holds", map[string]any{
		"user_id":    newest.UserID,
		"auction_id": newest.AuctionID,
		"duplicates": len(mine),
		"kept":       newest.ID,
		"amount":     total.String(),
	})
	newest.Amount = total
	return newest, nil
}

func journalHold(tx repository.LedgerTx, now time.Time, h models.Hold, amount decimal.Decimal) error {
	return journal.Record(tx, now, journal.Line{
		UserID:      h.UserID,
		Amount:      amount,
		EscrowType:  models.EscrowHold,
		TxType:      models.TxHold,
		Direction:   models.DirectionOut,
		Related:     models.RelatedHold,
		ReferenceID: h.ID,
		Description: "hold for auction " + h.AuctionID.String(),
	})
}

// GetBidsForAuction returns all bids for an auction, oldest first
func (s *BiddingService) GetBidsForAuction(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	if auctionID == uuid.Nil {
		return nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	var bids []models.Bid
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		if _, err := tx.GetAuction(auctionID); err != nil {
			return err
		}
		var err error
		bids, err = tx.ListBidsByAuction(auctionID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	if len(bids) == 0 {
		return nil, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return bids, nil
}

// GetLeadingBid returns the bid that would win if the auction closed now
func (s *BiddingService) GetLeadingBid(ctx context.Context, auctionID uuid.UUID) (models.Bid, error) {
	if auctionID == uuid.Nil {
		return models.Bid{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	var leading models.Bid
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		leading, err = tx.GetWinningBid(auctionID)
		return err
	})
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNoBids) {
			return models.Bid{}, fmt.Errorf("service: auction %s: %w", auctionID, err)
		}
		return models.Bid{}, fmt.Errorf("service: failed to get leading bid for auction %s: %w", auctionID, err)
	}
	return leading, nil
}
