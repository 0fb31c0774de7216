package item

// Item is a catalog entry as seen by order creation.
type Item struct {
	ID         string `json:"id"`
	PriceCents int64  `json:"priceCents"`
}
