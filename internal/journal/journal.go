// Package journal writes the paired audit rows that accompany every money
// movement: an escrow entry and a per-user transaction.
package journal

import (
	"fmt"
	"time"

	model "auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line describes one movement. An empty EscrowType or TxType skips that row.
type Line struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	SaleID      uuid.NullUUID
	EscrowType  model.EscrowEntryType
	TxType      model.TransactionType
	Direction   model.Direction
	Related     string
	ReferenceID uuid.UUID
	Description string
}

// Record appends the rows for l. Zero amounts are not journaled.
func Record(tx repository.LedgerTx, now time.Time, l Line) error {
	if !l.Amount.IsPositive() {
		return nil
	}

	if l.EscrowType != "" {
		entry := model.EscrowEntry{
			ID:            utils.GenerateID(),
			SaleID:        l.SaleID,
			UserID:        l.UserID,
			Amount:        l.Amount,
			Type:          l.EscrowType,
			RelatedEntity: l.Related,
			ReferenceID:   l.ReferenceID,
			CreatedAt:     now,
		}
		if err := tx.AppendEscrowEntry(entry); err != nil {
			return fmt.Errorf("journal %s escrow entry: %w", l.EscrowType, err)
		}
	}

	if l.TxType != "" {
		t := model.Transaction{
			ID:            utils.GenerateID(),
			UserID:        l.UserID,
			Type:          l.TxType,
			Amount:        l.Amount,
			Direction:     l.Direction,
			Status:        model.TxCompleted,
			RelatedEntity: l.Related,
			ReferenceID:   utils.NullID(l.ReferenceID),
			Description:   l.Description,
			CreatedAt:     now,
		}
		if err := tx.AppendTransaction(t); err != nil {
			return fmt.Errorf("journal %s transaction: %w", l.TxType, err)
		}
	}
	return nil
}

// Credit adds amount to the user's balance and journals it as an inbound line.
func Credit(tx repository.LedgerTx, now time.Time, user model.User, l Line) (model.User, error) {
	if !l.Amount.IsPositive() {
		return user, nil
	}
	user.Balance = user.Balance.Add(l.Amount)
	user.UpdatedAt = now
	if err := tx.UpdateUser(user); err != nil {
		return user, fmt.Errorf("credit user %s: %w", user.ID, err)
	}
	l.UserID = user.ID
	l.Direction = model.DirectionIn
	return user, Record(tx, now, l)
}

// ReleaseHold marks a HELD hold RELEASED and journals the audit refund.
// The bidder's balance is unchanged: holds never debit it.
func ReleaseHold(tx repository.LedgerTx, now time.Time, h model.Hold, description string) error {
	h.Status = model.HoldReleased
	h.ReleasedAt = &now
	h.UpdatedAt = now
	if err := tx.UpdateHold(h); err != nil {
		return fmt.Errorf("release hold %s: %w", h.ID, err)
	}
	return Record(tx, now, Line{
		UserID:      h.UserID,
		Amount:      h.Amount,
		EscrowType:  model.EscrowRefund,
		TxType:      model.TxRelease,
		Direction:   model.DirectionIn,
		Related:     model.RelatedHold,
		ReferenceID: h.ID,
		Description: description,
	})
}
