package order

import "encoding/json"

// RequestedItem is one (item, quantity) pair asked for by the caller.
type RequestedItem struct {
	ItemID   string
	Quantity int64
}

// CreateRequest is the validated caller input for a new order.
type CreateRequest struct {
	RecipientName   string
	ShippingAddress json.RawMessage
	Items           []RequestedItem
}
