package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	"github.com/corray333/backend-labs/checkout/internal/service/models/item"
)

// ItemDal represents catalog item data access layer model.
type ItemDal struct {
	Id         string `db:"id"`
	PriceCents int64  `db:"price_cents"`
}

// ToModel converts ItemDal to service layer Item model.
func (i *ItemDal) ToModel() item.Item {
	return item.Item{
		ID:         i.Id,
		PriceCents: i.PriceCents,
	}
}

// PostgresItemRepository reads catalog prices.
type PostgresItemRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresItemRepository creates a new Postgres item repository.
func NewPostgresItemRepository(conn postgres.Conn) *PostgresItemRepository {
	return &PostgresItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetByIDs fetches price records for ids in one query.
// Ids absent from the catalog are simply missing from the result.
func (r *PostgresItemRepository) GetByIDs(ctx context.Context, ids []string) ([]item.Item, error) {
	if len(ids) == 0 {
		return []item.Item{}, nil
	}

	sql, args, err := r.sb.
		Select("id", "price_cents").
		From("items").
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	result := make([]item.Item, 0, len(ids))
	for rows.Next() {
		var dal ItemDal
		if err := rows.Scan(&dal.Id, &dal.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
