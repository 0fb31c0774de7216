package orderitem

import "github.com/google/uuid"

// OrderItem represents a priced line within an order.
// UnitPriceCents is captured at order time and never re-derived.
type OrderItem struct {
	ID             int64     `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	ItemID         string    `json:"item_id"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}
