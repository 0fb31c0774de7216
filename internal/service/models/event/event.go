package event

import (
	"time"

	"github.com/google/uuid"
)

// TypeOrderCreated is the event type emitted once an order is committed.
const TypeOrderCreated = "order.created"

// OrderCreated is the payload published for every new order.
type OrderCreated struct {
	OrderID       uuid.UUID   `json:"order_id"`
	UserID        string      `json:"user_id"`
	Status        string      `json:"status"`
	SubtotalCents int64       `json:"subtotal_cents"`
	ShippingCents int64       `json:"shipping_cents"`
	TotalCents    int64       `json:"total_cents"`
	Items         []OrderLine `json:"items"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderLine is a line of an OrderCreated event.
type OrderLine struct {
	ItemID         string `json:"item_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}
