package events

import (
	"context"

	"auction-escrow/utils"
)

// LogPublisher writes events to the application log. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, eventType string, payload []byte, partitionKey string) error {
	utils.Info("Domain event", map[string]any{"event": eventType, "key": partitionKey, "payload": string(payload)})
	return nil
}

func (LogPublisher) Close() error { return nil }
