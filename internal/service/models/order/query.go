package order

// QueryOrdersModel represents filter parameters for querying orders
type QueryOrdersModel struct {
	UserID string `json:"user_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
