package escrow

import (
	"context"
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
)

// DefaultAutoReleaseAfter is how long after shipment an unconfirmed sale is released.
const DefaultAutoReleaseAfter = 14 * 24 * time.Hour

type Options struct {
	AutoReleaseAfter time.Duration
}

// Service moves escrowed sale funds to the seller or back to the buyer.
type Service struct {
	db           repository.LedgerDB
	clock        clock.Clock
	emitter      *events.Emitter
	releaseAfter time.Duration
}

func New(db repository.LedgerDB, clk clock.Clock, emitter *events.Emitter, opts Options) *Service {
	after := opts.AutoReleaseAfter
	if after <= 0 {
		after = DefaultAutoReleaseAfter
	}
	return &Service{db: db, clock: clk, emitter: emitter, releaseAfter: after}
}

// ConfirmDelivery records the buyer's confirmation and releases the funds in
// the same unit of work.
func (s *Service) ConfirmDelivery(ctx context.Context, buyerID, saleID uuid.UUID, note string) (models.Sale, error) {
	if buyerID == uuid.Nil || saleID == uuid.Nil {
		return models.Sale{}, fmt.Errorf("escrow: %w - missing buyerID or saleID", auctionerrors.ErrInvalidInput)
	}

	now := s.clock.Now().UTC()
	var sale models.Sale
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		locked, err := tx.LockSale(saleID)
		if err != nil {
			return err
		}
		if locked.BuyerID != buyerID {
			return fmt.Errorf("escrow: %w", auctionerrors.ErrNotBuyer)
		}
		if err := requireReleasable(tx, locked); err != nil {
			return err
		}

		if err := tx.CreateDeliveryConfirmation(models.DeliveryConfirmation{
			ID:          utils.GenerateID(),
			SaleID:      saleID,
			BuyerID:     buyerID,
			Note:        note,
			ConfirmedAt: now,
		}); err != nil {
			return fmt.Errorf("record delivery confirmation: %w", err)
		}

		sale, err = releaseLocked(tx, now, locked)
		return err
	})
	if err != nil {
		return models.Sale{}, fmt.Errorf("escrow: failed to confirm delivery of sale %s: %w", saleID, err)
	}

	s.released(ctx, sale, buyerID, "delivery confirmed")
	return sale, nil
}

// ReleaseFunds credits the seller with the sale's net amount. A sale that is
// already released fails with ErrAlreadyReleased.
func (s *Service) ReleaseFunds(ctx context.Context, actorID, saleID uuid.UUID) (models.Sale, error) {
	if saleID == uuid.Nil {
		return models.Sale{}, fmt.Errorf("escrow: %w - missing saleID", auctionerrors.ErrInvalidInput)
	}

	now := s.clock.Now().UTC()
	var sale models.Sale
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		locked, err := tx.LockSale(saleID)
		if err != nil {
			return err
		}
		sale, err = releaseLocked(tx, now, locked)
		return err
	})
	if err != nil {
		return models.Sale{}, fmt.Errorf("escrow: failed to release sale %s: %w", saleID, err)
	}

	s.released(ctx, sale, actorID, "manual release")
	return sale, nil
}

// requireReleasable checks state under the sale lock.
func requireReleasable(tx repository.LedgerTx, sale models.Sale) error {
	switch sale.Status {
	case models.SaleEscrowed:
	case models.SaleReleased:
		return fmt.Errorf("escrow: %w", auctionerrors.ErrAlreadyReleased)
	default:
		return fmt.Errorf("escrow: %w - status %s", auctionerrors.ErrWrongSaleState, sale.Status)
	}

	open, err := hasOpenDispute(tx, sale.ID)
	if err != nil {
		return err
	}
	if open {
		return fmt.Errorf("escrow: %w", auctionerrors.ErrOpenDispute)
	}
	return nil
}

func hasOpenDispute(tx repository.LedgerTx, saleID uuid.UUID) (bool, error) {
	disputes, err := tx.ListDisputesBySale(saleID)
	if err != nil {
		return false, fmt.Errorf("list disputes for sale %s: %w", saleID, err)
	}
	for _, d := range disputes {
		if d.Blocking() {
			return true, nil
		}
	}
	return false, nil
}

// releaseLocked pays the seller out of escrow. The caller holds the sale lock.
func releaseLocked(tx repository.LedgerTx, now time.Time, sale models.Sale) (models.Sale, error) {
	if err := requireReleasable(tx, sale); err != nil {
		return models.Sale{}, err
	}

	seller, err := tx.LockUser(sale.SellerID)
	if err != nil {
		return models.Sale{}, err
	}
	if _, err := journal.Credit(tx, now, seller, journal.Line{
		Amount:      sale.NetAmount,
		SaleID:      utils.NullID(sale.ID),
		EscrowType:  models.EscrowRelease,
		TxType:      models.TxPayout,
		Related:     models.RelatedSale,
		ReferenceID: sale.ID,
		Description: "release funds for sale " + sale.ID.String(),
	}); err != nil {
		return models.Sale{}, err
	}

	if sale.PayoutID.Valid {
		payout, err := tx.GetPayout(sale.PayoutID.UUID)
		if err != nil {
			return models.Sale{}, err
		}
		payout.Status = models.PayoutPaid
		payout.ProcessedAt = &now
		if err := tx.UpdatePayout(payout); err != nil {
			return models.Sale{}, err
		}
	}

	sale.Status = models.SaleReleased
	sale.UpdatedAt = now
	if err := tx.UpdateSale(sale); err != nil {
		return models.Sale{}, err
	}
	return sale, nil
}

func (s *Service) released(ctx context.Context, sale models.Sale, actorID uuid.UUID, reason string) {
	utils.Info("Sale released", map[string]any{
		"sale_id":   sale.ID,
		"seller_id": sale.SellerID,
		"net":       sale.NetAmount.String(),
		"actor_id":  actorID,
		"reason":    reason,
	})
	s.emitter.Emit(ctx, events.SaleReleased, sale.ID.String(), sale)
}

// RecordShipment stores the seller's shipment, which starts the auto-release clock.
func (s *Service) RecordShipment(ctx context.Context, sellerID, saleID uuid.UUID, carrier, trackingNumber string) (models.Shipment, error) {
	if sellerID == uuid.Nil || saleID == uuid.Nil {
		return models.Shipment{}, fmt.Errorf("escrow: %w - missing sellerID or saleID", auctionerrors.ErrInvalidInput)
	}

	now := s.clock.Now().UTC()
	shipment := models.Shipment{
		ID:             utils.GenerateID(),
		SaleID:         saleID,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
		ShippedAt:      now,
		CreatedAt:      now,
	}
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		sale, err := tx.LockSale(saleID)
		if err != nil {
			return err
		}
		if sale.SellerID != sellerID {
			return fmt.Errorf("escrow: %w", auctionerrors.ErrNotSeller)
		}
		if sale.Status != models.SaleEscrowed {
			return fmt.Errorf("escrow: %w - status %s", auctionerrors.ErrWrongSaleState, sale.Status)
		}
		return tx.CreateShipment(shipment)
	})
	if err != nil {
		return models.Shipment{}, fmt.Errorf("escrow: failed to record shipment for sale %s: %w", saleID, err)
	}

	utils.Info("Shipment recorded", map[string]any{"sale_id": saleID, "carrier": carrier, "tracking_number": trackingNumber})
	return shipment, nil
}

// GetSale returns a sale by id.
func (s *Service) GetSale(ctx context.Context, saleID uuid.UUID) (models.Sale, error) {
	var sale models.Sale
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		sale, err = tx.GetSale(saleID)
		return err
	})
	if err != nil {
		return models.Sale{}, fmt.Errorf("escrow: %w", err)
	}
	return sale, nil
}
