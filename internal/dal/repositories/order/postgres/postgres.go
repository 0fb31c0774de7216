package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/google/uuid"
)

var orderColumns = []string{
	"id",
	"user_id",
	"recipient_name",
	"shipping_address",
	"status",
	"subtotal_cents",
	"shipping_cents",
	"total_cents",
	"created_at",
}

// OrderDal represents order data access layer model
type OrderDal struct {
	Id              uuid.UUID `db:"id"`
	UserId          string    `db:"user_id"`
	RecipientName   string    `db:"recipient_name"`
	ShippingAddress []byte    `db:"shipping_address"`
	Status          string    `db:"status"`
	SubtotalCents   int64     `db:"subtotal_cents"`
	ShippingCents   int64     `db:"shipping_cents"`
	TotalCents      int64     `db:"total_cents"`
	CreatedAt       time.Time `db:"created_at"`
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() order.Order {
	return order.Order{
		ID:              o.Id,
		UserID:          o.UserId,
		RecipientName:   o.RecipientName,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
		SubtotalCents:   o.SubtotalCents,
		ShippingCents:   o.ShippingCents,
		TotalCents:      o.TotalCents,
		CreatedAt:       o.CreatedAt,
		OrderItems:      []orderitem.OrderItem{}, // Will be populated separately
	}
}

// OrderDalFromModel converts service layer Order model to OrderDal
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:              o.ID,
		UserId:          o.UserID,
		RecipientName:   o.RecipientName,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
		SubtotalCents:   o.SubtotalCents,
		ShippingCents:   o.ShippingCents,
		TotalCents:      o.TotalCents,
		CreatedAt:       o.CreatedAt,
	}
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.Id,
		&o.UserId,
		&o.RecipientName,
		&o.ShippingAddress,
		&o.Status,
		&o.SubtotalCents,
		&o.ShippingCents,
		&o.TotalCents,
		&o.CreatedAt,
	}
}

type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert writes the order header and returns it with the assigned id and creation time.
// Line items are not written here.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	dal := OrderDalFromModel(&o)

	sql, args, err := r.sb.
		Insert("orders").
		Columns(
			"id",
			"user_id",
			"recipient_name",
			"shipping_address",
			"status",
			"subtotal_cents",
			"shipping_cents",
			"total_cents",
		).
		Values(
			dal.Id,
			dal.UserId,
			dal.RecipientName,
			string(dal.ShippingAddress),
			dal.Status,
			dal.SubtotalCents,
			dal.ShippingCents,
			dal.TotalCents,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&dal.Id, &dal.CreatedAt); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	inserted := dal.ToModel()
	inserted.OrderItems = o.OrderItems

	return inserted, nil
}

// SumTotalsExcluding returns the sum of total_cents over every order except id.
func (r *PostgresOrderRepository) SumTotalsExcluding(ctx context.Context, id uuid.UUID) (int64, error) {
	sql, args, err := r.sb.
		Select("COALESCE(SUM(total_cents), 0)::bigint").
		From("orders").
		Where("id <> ?", id).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sum query: %w", err)
	}

	var total int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum order totals: %w", err)
	}

	return total, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id")

	if filter.UserID != "" {
		query = query.Where(sq.Eq{"user_id": filter.UserID})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
