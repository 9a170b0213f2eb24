// Package wallet covers the money that enters the platform and the read view
// of a user's funds.
package wallet

import (
	"context"
	"fmt"

	"auction-escrow/internal/auctionerrors"
	"auction-escrow/internal/journal"
	"auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	db    repository.LedgerDB
	clock clock.Clock
}

func New(db repository.LedgerDB, clk clock.Clock) *Service {
	return &Service{db: db, clock: clk}
}

// TopUp credits amount to the user and returns the new balance.
func (s *Service) TopUp(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if userID == uuid.Nil {
		return decimal.Zero, fmt.Errorf("wallet: %w - missing userID", auctionerrors.ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("wallet: %w - non-positive top-up amount", auctionerrors.ErrInvalidInput)
	}
	if !models.HasMoneyScale(amount) {
		return decimal.Zero, fmt.Errorf("wallet: %w - top-up amount %s has more than %d decimal places", auctionerrors.ErrInvalidInput, amount, models.MoneyScale)
	}

	now := s.clock.Now().UTC()
	var balance decimal.Decimal
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		user, err := tx.LockUser(userID)
		if err != nil {
			return err
		}
		user, err = journal.Credit(tx, now, user, journal.Line{
			Amount:      amount,
			TxType:      models.TxTopUp,
			Related:     models.RelatedWallet,
			ReferenceID: userID,
			Description: "wallet top-up",
		})
		if err != nil {
			return err
		}
		balance = user.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet: failed to top up user %s: %w", userID, err)
	}

	utils.Info("Wallet topped up", map[string]any{"user_id": userID, "amount": amount.String(), "balance": balance.String()})
	return balance, nil
}

// GetWallet reports the balance, the sum of HELD holds and what is left to bid with.
func (s *Service) GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	if userID == uuid.Nil {
		return models.Wallet{}, fmt.Errorf("wallet: %w - missing userID", auctionerrors.ErrInvalidInput)
	}

	var w models.Wallet
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		user, err := tx.GetUser(userID)
		if err != nil {
			return err
		}
		holds, err := tx.ListHoldsByUser(userID, models.HoldHeld)
		if err != nil {
			return err
		}
		held := decimal.Zero
		for _, h := range holds {
			held = held.Add(h.Amount)
		}
		w = models.Wallet{
			UserID:    userID,
			Balance:   user.Balance,
			Held:      held,
			Available: user.Balance.Sub(held),
		}
		return nil
	})
	if err != nil {
		return models.Wallet{}, fmt.Errorf("wallet: failed to get wallet for user %s: %w", userID, err)
	}
	return w, nil
}

// ListTransactions returns the user's transactions oldest first.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("wallet: %w - missing userID", auctionerrors.ErrInvalidInput)
	}

	var txns []models.Transaction
	err := s.db.InTx(ctx, func(tx repository.LedgerTx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return err
		}
		var err error
		txns, err = tx.ListTransactionsByUser(userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("wallet: failed to list transactions for user %s: %w", userID, err)
	}
	return txns, nil
}
