package orderitem

import "github.com/google/uuid"

// QueryOrderItemsModel represents filter parameters for querying order items.
type QueryOrderItemsModel struct {
	OrderIds []uuid.UUID `json:"orderIds,omitempty"`
	ItemIds  []string    `json:"itemIds,omitempty"`
}
