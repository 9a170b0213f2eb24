// Package seed creates users and auctions directly in the ledger. The
// identity and listing flows that normally own these rows live outside this
// service; seed stands in for them in tests and demo mode.
package seed

import (
	"context"
	"fmt"
	"time"

	"auction-escrow/internal/models"
	"auction-escrow/internal/repository"
	"auction-escrow/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Auction parameters. Zero StartAt and EndAt open the auction for a day from now.
type Auction struct {
	ID            uuid.UUID
	SellerID      uuid.UUID
	Title         string
	StartingPrice decimal.Decimal
	MinIncrement  decimal.Decimal
	StartAt       time.Time
	EndAt         time.Time
}

func User(ctx context.Context, db repository.LedgerDB, role models.Role, balance decimal.Decimal, now time.Time) (models.User, error) {
	u := models.User{
		ID:        utils.GenerateID(),
		Role:      role,
		Balance:   balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	u.Email = fmt.Sprintf("%s@example.test", u.ID.String()[:8])
	if err := db.InTx(ctx, func(tx repository.LedgerTx) error { return tx.CreateUser(u) }); err != nil {
		return models.User{}, fmt.Errorf("seed user: %w", err)
	}
	return u, nil
}

func PublishedAuction(ctx context.Context, db repository.LedgerDB, p Auction, now time.Time) (models.Auction, error) {
	if p.ID == uuid.Nil {
		p.ID = utils.GenerateID()
	}
	if p.StartAt.IsZero() {
		p.StartAt = now
	}
	if p.EndAt.IsZero() {
		p.EndAt = now.Add(24 * time.Hour)
	}

	a := models.Auction{
		ID:            p.ID,
		SellerID:      p.SellerID,
		Title:         p.Title,
		StartingPrice: p.StartingPrice,
		MinIncrement:  p.MinIncrement,
		StartAt:       p.StartAt,
		EndAt:         p.EndAt,
		Status:        models.AuctionPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := db.InTx(ctx, func(tx repository.LedgerTx) error { return tx.CreateAuction(a) }); err != nil {
		return models.Auction{}, fmt.Errorf("seed auction: %w", err)
	}
	return a, nil
}

// Demo seeds one seller, two funded buyers and a few open auctions.
func Demo(ctx context.Context, db repository.LedgerDB, now time.Time) error {
	seller, err := User(ctx, db, models.RoleSeller, decimal.Zero, now)
	if err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		buyer, err := User(ctx, db, models.RoleBuyer, decimal.NewFromInt(1_000_000), now)
		if err != nil {
			return err
		}
		utils.Info("Seeded buyer", map[string]any{"user_id": buyer.ID, "balance": buyer.Balance.String()})
	}

	listings := []struct {
		title    string
		starting int64
		duration time.Duration
	}{
		{"Vintage camera", 100_000, time.Hour},
		{"Mechanical keyboard", 50_000, 2 * time.Hour},
		{"Road bike", 300_000, 24 * time.Hour},
	}
	for _, l := range listings {
		a, err := PublishedAuction(ctx, db, Auction{
			SellerID:      seller.ID,
			Title:         l.title,
			StartingPrice: decimal.NewFromInt(l.starting),
			MinIncrement:  decimal.NewFromInt(5_000),
			EndAt:         now.Add(l.duration),
		}, now)
		if err != nil {
			return err
		}
		utils.Info("Seeded auction", map[string]any{"auction_id": a.ID, "title": a.Title, "end_at": a.EndAt})
	}
	utils.Info("Seeded seller", map[string]any{"user_id": seller.ID})
	return nil
}
