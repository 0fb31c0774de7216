package ioutboxrepo

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/service/models/outbox"
)

// IOutboxRepository stores events waiting to be relayed to RabbitMQ.
type IOutboxRepository interface {
	// Insert stores msg and returns its id.
	Insert(ctx context.Context, msg outbox.OutboxMessage) (int64, error)

	// GetPendingMessages returns up to limit messages due at or before now.
	GetPendingMessages(ctx context.Context, now time.Time, limit int) ([]outbox.OutboxMessage, error)

	Delete(ctx context.Context, id int64) error

	// UpdateRetry records a failed delivery and schedules the next attempt.
	UpdateRetry(
		ctx context.Context,
		id int64,
		retryCount int,
		lastError string,
		nextRetryAt time.Time,
	) error
}
