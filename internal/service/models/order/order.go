package order

import (
	"encoding/json"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/google/uuid"
)

// StatusCreated is the only status an order is given at creation.
const StatusCreated = "created"

// Order represents a purchase order in the system.
type Order struct {
	ID              uuid.UUID             `json:"id"`
	UserID          string                `json:"user_id"`
	RecipientName   string                `json:"recipient_name"`
	ShippingAddress json.RawMessage       `json:"shipping_address"`
	Status          string                `json:"status"`
	SubtotalCents   int64                 `json:"subtotal_cents"`
	ShippingCents   int64                 `json:"shipping_cents"`
	TotalCents      int64                 `json:"total_cents"`
	CreatedAt       time.Time             `json:"created_at"`
	OrderItems      []orderitem.OrderItem `json:"items"`
}

// Receipt is the summary returned after an order is created.
type Receipt struct {
	OrderID               uuid.UUID
	OrderTotalCents       int64
	OtherOrdersTotalCents int64
	Message               string
}
