package escrow

import (
	"context"
	"errors"
	"fmt"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"github.com/google/uuid"
)

// ReleaseReport summarizes one AutoReleasePendingSales pass.
type ReleaseReport struct {
	Checked  int                  `json:"checked"`
	Released []uuid.UUID          `json:"released"`
	Failed   map[uuid.UUID]string `json:"failed"`
}

var errNotDue = errors.New("not due for release")

// AutoReleasePendingSales releases every escrowed sale that has a delivery
// confirmation, or whose latest shipment is older than the grace period.
// Each sale is handled in its own unit of work and failures are only logged.
func (s *Service) AutoReleasePendingSales(ctx context.Context) (ReleaseReport, error) {
	var pending []models.Sale
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		var err error
		pending, err = tx.ListSalesByStatus(models.SaleEscrowed)
		return err
	})
	if err != nil {
		return ReleaseReport{}, fmt.Errorf("escrow: list escrowed sales: %w", err)
	}

	report := ReleaseReport{Failed: map[uuid.UUID]string{}}
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		report.Checked++

		sale, reason, err := s.autoReleaseOne(ctx, p.ID)
		switch {
		case errors.Is(err, errNotDue):
			continue
		case err != nil:
			report.Failed[p.ID] = err.Error()
			utils.Error("autoRelease error for sale", map[string]any{"sale_id": p.ID, "error": err.Error()})
			continue
		}
		report.Released = append(report.Released, sale.ID)
		s.released(ctx, sale, uuid.Nil, reason)
	}

	utils.Info("Auto-release pass completed", map[string]any{
		"checked":  report.Checked,
		"released": len(report.Released),
		"failed":   len(report.Failed),
	})
	return report, nil
}

func (s *Service) autoReleaseOne(ctx context.Context, saleID uuid.UUID) (models.Sale, string, error) {
	now := s.clock.Now().UTC()
	var (
		sale   models.Sale
		reason string
	)
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		locked, err := tx.LockSale(saleID)
		if err != nil {
			return err
		}
		if locked.Status != models.SaleEscrowed {
			return errNotDue
		}
		open, err := hasOpenDispute(tx, saleID)
		if err != nil {
			return err
		}
		if open {
			return errNotDue
		}

		confirmed, err := tx.HasDeliveryConfirmation(saleID)
		if err != nil {
			return err
		}
		if confirmed {
			reason = "delivery confirmed"
		} else {
			shipment, err := tx.LatestShipment(saleID)
			if errors.Is(err, auctionerrors.ErrShipmentNotFound) {
				return errNotDue
			}
			if err != nil {
				return err
			}
			if !now.After(shipment.ShippedAt.Add(s.releaseAfter)) {
				return errNotDue
			}
			reason = "shipment grace period elapsed"
		}

		sale, err = releaseLocked(tx, now, locked)
		return err
	})
	return sale, reason, err
}
