package iitemrepo

import (
	"context"

	"github.com/corray333/backend-labs/checkout/internal/service/models/item"
)

// IItemRepository is an interface for the catalog item repository.
type IItemRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]item.Item, error)
}
