package iorderrepo

import (
	"context"

	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/google/uuid"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	SumTotalsExcluding(ctx context.Context, id uuid.UUID) (int64, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
}
