package events

import (
	"context"
	"encoding/json"
	"time"

	"auction-escrow/utils"
)

//go:generate mockgen -source=events.go -destination=mock_publisher_test.go -package=events

// Event types emitted after a unit of work commits.
const (
	BidPlaced             = "bid.placed"
	AuctionFinalized      = "auction.finalized"
	AuctionReviewRequired = "auction.review_required"
	SaleReleased          = "sale.released"
	SaleRefunded          = "sale.refunded"
	DisputeOpened         = "dispute.opened"
	DisputeResolved       = "dispute.resolved"
)

// Publisher delivers one encoded event to a sink.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error
	Close() error
}

// Envelope is the wire shape of every event.
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Emitter encodes and publishes events. Delivery is best effort: the state
// change has already committed, so failures are logged and dropped.
type Emitter struct {
	pub Publisher
	now func() time.Time
}

func NewEmitter(pub Publisher, now func() time.Time) *Emitter {
	return &Emitter{pub: pub, now: now}
}

// Emit publishes data under eventType, partitioned by key. A nil Emitter is a no-op.
func (e *Emitter) Emit(ctx context.Context, eventType, key string, data any) {
	if e == nil || e.pub == nil {
		return
	}

	payload, err := json.Marshal(Envelope{Type: eventType, OccurredAt: e.now().UTC(), Data: data})
	if err != nil {
		utils.Error("Failed to encode event", map[string]any{"event": eventType, "key": key, "error": err.Error()})
		return
	}
	if err := e.pub.Publish(ctx, eventType, payload, key); err != nil {
		utils.Error("Failed to publish event", map[string]any{"event": eventType, "key": key, "error": err.Error()})
	}
}
