package escrow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/events"
	"auction-escrow/internal/journal"
	"auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Action is an admin's decision on a dispute.
type Action string

const (
	ActionRelease Action = "release"
	ActionRefund  Action = "refund"
	ActionSplit   Action = "split"
)

// ParseAction accepts an action name in any case.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionRelease, ActionRefund, ActionSplit:
		return a, nil
	}
	return "", fmt.Errorf("escrow: %w - %q", auctionerrors.ErrInvalidAction, s)
}

// OpenDispute lets the buyer or seller contest an escrowed sale. At most one
// dispute per sale can be open at a time.
func (s *Service) OpenDispute(ctx context.Context, openerID, saleID uuid.UUID, reason, details string) (models.Dispute, error) {
	if openerID == uuid.Nil || saleID == uuid.Nil {
		return models.Dispute{}, fmt.Errorf("escrow: %w - missing openerID or saleID", auctionerrors.ErrInvalidInput)
	}
	if strings.TrimSpace(reason) == "" {
		return models.Dispute{}, fmt.Errorf("escrow: %w - empty reason", auctionerrors.ErrInvalidInput)
	}

	now := s.clock.Now().UTC()
	dispute := models.Dispute{
		ID:        utils.GenerateID(),
		SaleID:    saleID,
		OpenerID:  openerID,
		Reason:    reason,
		Details:   details,
		Status:    models.DisputeOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		sale, err := tx.LockSale(saleID)
		if err != nil {
			return err
		}
		if openerID != sale.BuyerID && openerID != sale.SellerID {
			return fmt.Errorf("escrow: %w", auctionerrors.ErrNotParticipant)
		}
		if sale.Status != models.SaleEscrowed {
			return fmt.Errorf("escrow: %w - status %s", auctionerrors.ErrWrongSaleState, sale.Status)
		}
		open, err := hasOpenDispute(tx, saleID)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("escrow: %w", auctionerrors.ErrOpenDispute)
		}
		return tx.CreateDispute(dispute)
	})
	if err != nil {
		return models.Dispute{}, fmt.Errorf("escrow: failed to open dispute on sale %s: %w", saleID, err)
	}

	utils.Info("Dispute opened", map[string]any{"dispute_id": dispute.ID, "sale_id": saleID, "opener_id": openerID})
	s.emitter.Emit(ctx, events.DisputeOpened, saleID.String(), dispute)
	return dispute, nil
}

// ReviewDispute moves an OPEN dispute to UNDER_REVIEW.
func (s *Service) ReviewDispute(ctx context.Context, adminID, disputeID uuid.UUID) (models.Dispute, error) {
	if adminID == uuid.Nil || disputeID == uuid.Nil {
		return models.Dispute{}, fmt.Errorf("escrow: %w - missing adminID or disputeID", auctionerrors.ErrInvalidInput)
	}

	now := s.clock.Now().UTC()
	var dispute models.Dispute
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		dispute, err = tx.LockDispute(disputeID)
		if err != nil {
			return err
		}
		switch dispute.Status {
		case models.DisputeOpen:
		case models.DisputeResolved:
			return fmt.Errorf("escrow: %w", auctionerrors.ErrDisputeResolved)
		default:
			return fmt.Errorf("escrow: %w - status %s", auctionerrors.ErrDisputeState, dispute.Status)
		}
		dispute.Status = models.DisputeUnderReview
		dispute.UpdatedAt = now
		return tx.UpdateDispute(dispute)
	})
	if err != nil {
		return models.Dispute{}, fmt.Errorf("escrow: failed to review dispute %s: %w", disputeID, err)
	}

	utils.Info("Dispute under review", map[string]any{"dispute_id": disputeID, "admin_id": adminID})
	return dispute, nil
}

// ResolveDispute closes a dispute and moves the sale's funds per action.
// amountToSeller is required for ActionSplit and ignored otherwise.
func (s *Service) ResolveDispute(ctx context.Context, adminID, disputeID uuid.UUID, action Action, amountToSeller decimal.NullDecimal, note string) (models.Dispute, error) {
	if adminID == uuid.Nil || disputeID == uuid.Nil {
		return models.Dispute{}, fmt.Errorf("escrow: %w - missing adminID or disputeID", auctionerrors.ErrInvalidInput)
	}
	if _, err := ParseAction(string(action)); err != nil {
		return models.Dispute{}, err
	}
	if action == ActionSplit && (!amountToSeller.Valid || amountToSeller.Decimal.IsNegative() || !models.HasMoneyScale(amountToSeller.Decimal)) {
		return models.Dispute{}, fmt.Errorf("escrow: %w - amountToSeller must be a non-negative amount with at most %d decimal places", auctionerrors.ErrInvalidSplitAmount, models.MoneyScale)
	}

	now := s.clock.Now().UTC()
	var (
		dispute models.Dispute
		sale    models.Sale
	)
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		dispute, err = tx.LockDispute(disputeID)
		if err != nil {
			return err
		}
		if !dispute.Blocking() {
			return fmt.Errorf("escrow: %w", auctionerrors.ErrDisputeResolved)
		}

		sale, err = tx.LockSale(dispute.SaleID)
		if err != nil {
			return err
		}
		switch sale.Status {
		case models.SaleEscrowed:
		case models.SaleReleased:
			return fmt.Errorf("escrow: %w", auctionerrors.ErrAlreadyReleased)
		default:
			return fmt.Errorf("escrow: %w - status %s", auctionerrors.ErrWrongSaleState, sale.Status)
		}
		if action == ActionSplit && amountToSeller.Decimal.GreaterThan(sale.FinalPrice) {
			return fmt.Errorf("escrow: %w - %s exceeds final price %s", auctionerrors.ErrInvalidSplitAmount, amountToSeller.Decimal, sale.FinalPrice)
		}

		dispute.Status = models.DisputeResolved
		dispute.Resolution = resolution(action, adminID, note, amountToSeller)
		dispute.UpdatedAt = now
		if err := tx.UpdateDispute(dispute); err != nil {
			return err
		}

		switch action {
		case ActionRelease:
			sale, err = releaseLocked(tx, now, sale)
		case ActionRefund:
			sale, err = refundLocked(tx, now, sale)
		case ActionSplit:
			sale, err = splitLocked(tx, now, sale, amountToSeller.Decimal)
		}
		return err
	})
	if err != nil {
		return models.Dispute{}, fmt.Errorf("escrow: failed to resolve dispute %s: %w", disputeID, err)
	}

	utils.Info("Dispute resolved", map[string]any{
		"dispute_id":  disputeID,
		"sale_id":     sale.ID,
		"action":      action,
		"admin_id":    adminID,
		"sale_status": sale.Status,
	})
	s.emitter.Emit(ctx, events.DisputeResolved, sale.ID.String(), dispute)
	if sale.Status == models.SaleReleased {
		s.emitter.Emit(ctx, events.SaleReleased, sale.ID.String(), sale)
	} else {
		s.emitter.Emit(ctx, events.SaleRefunded, sale.ID.String(), sale)
	}
	return dispute, nil
}

func resolution(action Action, adminID uuid.UUID, note string, amountToSeller decimal.NullDecimal) string {
	r := fmt.Sprintf("%s: admin=%s note=%s", action, adminID, note)
	if action == ActionSplit {
		r += " sellerAmount=" + amountToSeller.Decimal.String()
	}
	return r
}

// refundLocked returns the full final price to the buyer.
func refundLocked(tx repository.LedgerTx, now time.Time, sale models.Sale) (models.Sale, error) {
	buyer, err := tx.LockUser(sale.BuyerID)
	if err != nil {
		return models.Sale{}, err
	}
	if _, err := journal.Credit(tx, now, buyer, journal.Line{
		Amount:      sale.FinalPrice,
		SaleID:      utils.NullID(sale.ID),
		EscrowType:  models.EscrowRefund,
		TxType:      models.TxRefund,
		Related:     models.RelatedDispute,
		ReferenceID: sale.ID,
		Description: "refund for sale " + sale.ID.String(),
	}); err != nil {
		return models.Sale{}, err
	}

	sale.Status = models.SaleRefunded
	sale.UpdatedAt = now
	return sale, tx.UpdateSale(sale)
}

// splitLocked pays toSeller to the seller and the rest of the final price to the buyer.
func splitLocked(tx repository.LedgerTx, now time.Time, sale models.Sale, toSeller decimal.Decimal) (models.Sale, error) {
	users, err := tx.LockUsers(sale.BuyerID, sale.SellerID)
	if err != nil {
		return models.Sale{}, err
	}
	toBuyer := sale.FinalPrice.Sub(toSeller)

	if _, err := journal.Credit(tx, now, users[sale.SellerID], journal.Line{
		Amount:      toSeller,
		SaleID:      utils.NullID(sale.ID),
		EscrowType:  models.EscrowReleasePartial,
		TxType:      models.TxPayout,
		Related:     models.RelatedDispute,
		ReferenceID: sale.ID,
		Description: "partial release for sale " + sale.ID.String(),
	}); err != nil {
		return models.Sale{}, err
	}
	if _, err := journal.Credit(tx, now, users[sale.BuyerID], journal.Line{
		Amount:      toBuyer,
		SaleID:      utils.NullID(sale.ID),
		EscrowType:  models.EscrowRefundPartial,
		TxType:      models.TxRefund,
		Related:     models.RelatedDispute,
		ReferenceID: sale.ID,
		Description: "partial refund for sale " + sale.ID.String(),
	}); err != nil {
		return models.Sale{}, err
	}

	sale.Status = models.SaleRefunded
	sale.UpdatedAt = now
	return sale, tx.UpdateSale(sale)
}
