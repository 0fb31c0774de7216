package outbox

import (
	"time"
)

// OutboxMessage is an event persisted together with the order that produced it
// and relayed to RabbitMQ by the outbox worker.
type OutboxMessage struct {
	ID           int64
	AggregateID  string
	EventType    string
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}
