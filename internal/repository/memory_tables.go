package repository

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"auction-escrow/internal/auctionerrors"
	model "auction-escrow/internal/models"

	"github.com/google/uuid"
)

// users

func (t *memTx) CreateUser(u model.User) error {
	t.users.put(u.ID, u)
	return nil
}

func (t *memTx) GetUser(id uuid.UUID) (model.User, error) {
	u, ok := t.users.get(&t.repo.mu, t.repo.users, id)
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", id, auctionerrors.ErrUserNotFound)
	}
	return u, nil
}

func (t *memTx) LockUser(id uuid.UUID) (model.User, error) {
	if err := t.lock("users", id); err != nil {
		return model.User{}, err
	}
	return t.GetUser(id)
}

func (t *memTx) LockUsers(ids ...uuid.UUID) (map[uuid.UUID]model.User, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i][:], sorted[j][:]) < 0 })

	out := make(map[uuid.UUID]model.User, len(sorted))
	for _, id := range sorted {
		if _, dup := out[id]; dup {
			continue
		}
		u, err := t.LockUser(id)
		if err != nil {
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}

func (t *memTx) UpdateUser(u model.User) error {
	if _, err := t.GetUser(u.ID); err != nil {
		return err
	}
	t.users.put(u.ID, u)
	return nil
}

// auctions

func (t *memTx) CreateAuction(a model.Auction) error {
	t.auctions.put(a.ID, a)
	return nil
}

func (t *memTx) GetAuction(id uuid.UUID) (model.Auction, error) {
	a, ok := t.auctions.get(&t.repo.mu, t.repo.auctions, id)
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	return a, nil
}

func (t *memTx) LockAuction(id uuid.UUID) (model.Auction, error) {
	if err := t.lock("auctions", id); err != nil {
		return model.Auction{}, err
	}
	return t.GetAuction(id)
}

func (t *memTx) UpdateAuction(a model.Auction) error {
	if _, err := t.GetAuction(a.ID); err != nil {
		return err
	}
	t.auctions.put(a.ID, a)
	return nil
}

func (t *memTx) ListEndedUnsettledAuctions(now time.Time) ([]model.Auction, error) {
	out := t.auctions.scan(&t.repo.mu, t.repo.auctions, func(a model.Auction) bool {
		return !a.Settled && a.EndAt.Before(now)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EndAt.Before(out[j].EndAt) })
	return out, nil
}

func (t *memTx) ListAuctionsAwaitingReview() ([]model.Auction, error) {
	candidates := t.auctions.scan(&t.repo.mu, t.repo.auctions, func(a model.Auction) bool {
		return a.Status == model.AuctionFinished && a.Settled && a.WinnerID.Valid
	})

	out := make([]model.Auction, 0, len(candidates))
	for _, a := range candidates {
		if _, err := t.GetSaleByAuction(a.ID); err == nil {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndAt.Before(out[j].EndAt) })
	return out, nil
}

// bids

func (t *memTx) CreateBid(b model.Bid) error {
	if _, err := t.GetAuction(b.AuctionID); err != nil {
		return fmt.Errorf("record bid for auction %s: %w", b.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	t.bids.put(b.ID, b)
	return nil
}

func (t *memTx) ListBidsByAuction(auctionID uuid.UUID) ([]model.Bid, error) {
	out := t.bids.scan(&t.repo.mu, t.repo.bids, func(b model.Bid) bool { return b.AuctionID == auctionID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) GetWinningBid(auctionID uuid.UUID) (model.Bid, error) {
	bids, _ := t.ListBidsByAuction(auctionID)
	if len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	return winningBid(bids), nil
}

// holds

func (t *memTx) CreateHold(h model.Hold) error {
	t.holds.put(h.ID, h)
	return nil
}

func (t *memTx) UpdateHold(h model.Hold) error {
	if _, ok := t.holds.get(&t.repo.mu, t.repo.holds, h.ID); !ok {
		return fmt.Errorf("update hold %s: %w", h.ID, auctionerrors.ErrHoldNotFound)
	}
	t.holds.put(h.ID, h)
	return nil
}

func (t *memTx) DeleteHold(id uuid.UUID) error {
	t.holds.del(id)
	return nil
}

func (t *memTx) ListHoldsByUser(userID uuid.UUID, status model.HoldStatus) ([]model.Hold, error) {
	out := t.holds.scan(&t.repo.mu, t.repo.holds, func(h model.Hold) bool {
		return h.UserID == userID && h.Status == status
	})
	sortHolds(out)
	return out, nil
}

func (t *memTx) ListHoldsByAuction(auctionID uuid.UUID, status model.HoldStatus) ([]model.Hold, error) {
	out := t.holds.scan(&t.repo.mu, t.repo.holds, func(h model.Hold) bool {
		return h.AuctionID == auctionID && h.Status == status
	})
	sortHolds(out)
	return out, nil
}

func sortHolds(hs []model.Hold) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].CreatedAt.Before(hs[j].CreatedAt) })
}

// sales, payouts, shipments, confirmations

func (t *memTx) CreateSale(s model.Sale) error {
	t.sales.put(s.ID, s)
	return nil
}

func (t *memTx) GetSale(id uuid.UUID) (model.Sale, error) {
	s, ok := t.sales.get(&t.repo.mu, t.repo.sales, id)
	if !ok {
		return model.Sale{}, fmt.Errorf("get sale %s: %w", id, auctionerrors.ErrSaleNotFound)
	}
	return s, nil
}

func (t *memTx) LockSale(id uuid.UUID) (model.Sale, error) {
	if err := t.lock("sales", id); err != nil {
		return model.Sale{}, err
	}
	return t.GetSale(id)
}

func (t *memTx) UpdateSale(s model.Sale) error {
	if _, err := t.GetSale(s.ID); err != nil {
		return err
	}
	t.sales.put(s.ID, s)
	return nil
}

func (t *memTx) GetSaleByAuction(auctionID uuid.UUID) (model.Sale, error) {
	found := t.sales.scan(&t.repo.mu, t.repo.sales, func(s model.Sale) bool { return s.AuctionID == auctionID })
	if len(found) == 0 {
		return model.Sale{}, fmt.Errorf("get sale for auction %s: %w", auctionID, auctionerrors.ErrSaleNotFound)
	}
	return found[0], nil
}

func (t *memTx) ListSalesByStatus(status model.SaleStatus) ([]model.Sale, error) {
	out := t.sales.scan(&t.repo.mu, t.repo.sales, func(s model.Sale) bool { return s.Status == status })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) CreatePayout(p model.Payout) error {
	t.payouts.put(p.ID, p)
	return nil
}

func (t *memTx) GetPayout(id uuid.UUID) (model.Payout, error) {
	p, ok := t.payouts.get(&t.repo.mu, t.repo.payouts, id)
	if !ok {
		return model.Payout{}, fmt.Errorf("get payout %s: %w", id, auctionerrors.ErrPayoutNotFound)
	}
	return p, nil
}

func (t *memTx) UpdatePayout(p model.Payout) error {
	if _, err := t.GetPayout(p.ID); err != nil {
		return err
	}
	t.payouts.put(p.ID, p)
	return nil
}

func (t *memTx) CreateShipment(s model.Shipment) error {
	t.shipments.put(s.ID, s)
	return nil
}

func (t *memTx) LatestShipment(saleID uuid.UUID) (model.Shipment, error) {
	found := t.shipments.scan(&t.repo.mu, t.repo.shipments, func(s model.Shipment) bool { return s.SaleID == saleID })
	if len(found) == 0 {
		return model.Shipment{}, fmt.Errorf("latest shipment for sale %s: %w", saleID, auctionerrors.ErrShipmentNotFound)
	}
	latest := found[0]
	for _, s := range found[1:] {
		if s.ShippedAt.After(latest.ShippedAt) {
			latest = s
		}
	}
	return latest, nil
}

func (t *memTx) CreateDeliveryConfirmation(d model.DeliveryConfirmation) error {
	t.confirmations.put(d.ID, d)
	return nil
}

func (t *memTx) HasDeliveryConfirmation(saleID uuid.UUID) (bool, error) {
	found := t.confirmations.scan(&t.repo.mu, t.repo.confirmations, func(d model.DeliveryConfirmation) bool {
		return d.SaleID == saleID
	})
	return len(found) > 0, nil
}

// disputes

func (t *memTx) CreateDispute(d model.Dispute) error {
	t.disputes.put(d.ID, d)
	return nil
}

func (t *memTx) GetDispute(id uuid.UUID) (model.Dispute, error) {
	d, ok := t.disputes.get(&t.repo.mu, t.repo.disputes, id)
	if !ok {
		return model.Dispute{}, fmt.Errorf("get dispute %s: %w", id, auctionerrors.ErrDisputeNotFound)
	}
	return d, nil
}

func (t *memTx) LockDispute(id uuid.UUID) (model.Dispute, error) {
	if err := t.lock("disputes", id); err != nil {
		return model.Dispute{}, err
	}
	return t.GetDispute(id)
}

func (t *memTx) UpdateDispute(d model.Dispute) error {
	if _, err := t.GetDispute(d.ID); err != nil {
		return err
	}
	t.disputes.put(d.ID, d)
	return nil
}

func (t *memTx) ListDisputesBySale(saleID uuid.UUID) ([]model.Dispute, error) {
	out := t.disputes.scan(&t.repo.mu, t.repo.disputes, func(d model.Dispute) bool { return d.SaleID == saleID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ledger lines

func (t *memTx) AppendEscrowEntry(e model.EscrowEntry) error {
	t.escrowEntries.put(e.ID, e)
	return nil
}

func (t *memTx) ListEscrowEntriesBySale(saleID uuid.UUID) ([]model.EscrowEntry, error) {
	out := t.escrowEntries.scan(&t.repo.mu, t.repo.escrowEntries, func(e model.EscrowEntry) bool {
		return e.SaleID.Valid && e.SaleID.UUID == saleID
	})
	sortEntries(out)
	return out, nil
}

func (t *memTx) ListEscrowEntriesByReference(referenceID uuid.UUID) ([]model.EscrowEntry, error) {
	out := t.escrowEntries.scan(&t.repo.mu, t.repo.escrowEntries, func(e model.EscrowEntry) bool {
		return e.ReferenceID == referenceID
	})
	sortEntries(out)
	return out, nil
}

func sortEntries(es []model.EscrowEntry) {
	sort.Slice(es, func(i, j int) bool { return es[i].CreatedAt.Before(es[j].CreatedAt) })
}

func (t *memTx) AppendTransaction(tr model.Transaction) error {
	t.transactions.put(tr.ID, tr)
	return nil
}

func (t *memTx) ListTransactionsByUser(userID uuid.UUID) ([]model.Transaction, error) {
	out := t.transactions.scan(&t.repo.mu, t.repo.transactions, func(tr model.Transaction) bool {
		return tr.UserID == userID
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) CreateCommissionLog(c model.CommissionLog) error {
	t.commissionLogs.put(c.ID, c)
	return nil
}

func (t *memTx) ListCommissionLogsByAuction(auctionID uuid.UUID) ([]model.CommissionLog, error) {
	out := t.commissionLogs.scan(&t.repo.mu, t.repo.commissionLogs, func(c model.CommissionLog) bool {
		return c.AuctionID == auctionID
	})
	return out, nil
}

func (t *memTx) LockPlatformBalance() (model.PlatformBalance, error) {
	if err := t.lock("platform_balance", model.PlatformBalanceID); err != nil {
		return model.PlatformBalance{}, err
	}
	if p, ok := t.platform.get(&t.repo.mu, t.repo.platform, model.PlatformBalanceID); ok {
		return p, nil
	}
	p := model.PlatformBalance{ID: model.PlatformBalanceID}
	t.platform.put(p.ID, p)
	return p, nil
}

func (t *memTx) UpdatePlatformBalance(p model.PlatformBalance) error {
	t.platform.put(p.ID, p)
	return nil
}
