package ordersvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/corray333/backend-labs/checkout/internal/auth"
	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/iitemrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/checkout/internal/dal/postgres"
	itemrepo "github.com/corray333/backend-labs/checkout/internal/dal/repositories/item/postgres"
	orderrepo "github.com/corray333/backend-labs/checkout/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/checkout/internal/dal/repositories/orderitem/postgres"
	"github.com/corray333/backend-labs/checkout/internal/dal/uow"
	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/corray333/backend-labs/checkout/internal/service/models/event"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/checkout/internal/service/models/outbox"
	"github.com/corray333/backend-labs/checkout/internal/service/models/session"
	"github.com/corray333/backend-labs/checkout/internal/service/services/pricing"
	"go.opentelemetry.io/otel"
)

// SuccessMessage is returned with every created order.
const SuccessMessage = "Order created successfully"

// DefaultEventQueue receives order.created events when no queue is configured.
const DefaultEventQueue = "orders.created"

// OrderService creates and lists purchase orders.
type OrderService struct {
	authenticator authenticator
	itemRepo      iitemrepo.IItemRepository
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	newUOW        func() unitOfWork
	pricer        *pricing.Engine
	eventQueue    string
	maxRetries    int
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (session.Session, error)
}

type unitOfWork interface {
	Begin(ctx context.Context, sess session.Session) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		pricer:     pricing.NewEngine(nil),
		eventQueue: DefaultEventQueue,
		maxRetries: 5,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.authenticator == nil {
		panic("ordersvc: authenticator is required")
	}
	if s.itemRepo == nil || s.orderRepo == nil || s.orderItemRepo == nil || s.newUOW == nil {
		panic("ordersvc: storage is required")
	}

	return s
}

// WithPostgresClient wires every repository and the unit of work to pgClient.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		pool := pgClient.Pool()
		s.itemRepo = itemrepo.NewPostgresItemRepository(pool)
		s.orderRepo = orderrepo.NewPostgresOrderRepository(pool)
		s.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(pool)
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithAuthenticator sets the identity provider client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuthenticator(a authenticator) option {
	return func(s *OrderService) {
		s.authenticator = a
	}
}

// WithShippingPolicy replaces the flat shipping charge.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithShippingPolicy(p pricing.ShippingPolicy) option {
	return func(s *OrderService) {
		s.pricer = pricing.NewEngine(p)
	}
}

// WithEventQueue sets the queue order.created events are routed to.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventQueue(queue string, maxRetries int) option {
	return func(s *OrderService) {
		if queue != "" {
			s.eventQueue = queue
		}
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
	}
}

// Authenticate resolves the caller behind an Authorization header value.
func (s *OrderService) Authenticate(ctx context.Context, authorization string) (session.Session, error) {
	token, err := auth.ParseBearer(authorization)
	if err != nil {
		return session.Session{}, err
	}

	return s.authenticator.Authenticate(ctx, token)
}

// CreateOrder prices req against the catalog, persists the order with its lines
// and returns a receipt carrying the sum of all other orders' totals.
func (s *OrderService) CreateOrder(
	ctx context.Context,
	sess session.Session,
	req order.CreateRequest,
) (order.Receipt, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.CreateOrder")
	defer span.End()

	if len(req.Items) == 0 {
		return order.Receipt{}, apperr.MalformedRequest("items must contain at least one entry", nil)
	}

	priced, err := s.price(ctx, req.Items)
	if err != nil {
		return order.Receipt{}, err
	}

	created, err := s.persist(ctx, sess, req, priced)
	if err != nil {
		return order.Receipt{}, err
	}

	otherTotal, err := s.otherOrdersTotal(ctx, created)
	if err != nil {
		return order.Receipt{}, err
	}

	slog.InfoContext(ctx, "Order created",
		"order_id", created.ID,
		"user_id", sess.UserID,
		"total_cents", created.TotalCents,
		"lines", len(created.OrderItems))

	return order.Receipt{
		OrderID:               created.ID,
		OrderTotalCents:       created.TotalCents,
		OtherOrdersTotalCents: otherTotal,
		Message:               SuccessMessage,
	}, nil
}

// price loads catalog records for the distinct requested ids and prices the order.
func (s *OrderService) price(ctx context.Context, requested []order.RequestedItem) (pricing.Priced, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.price")
	defer span.End()

	catalog, err := s.itemRepo.GetByIDs(ctx, pricing.DistinctItemIDs(requested))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load item prices", "error", err)

		return pricing.Priced{}, apperr.Persistence("failed to load item prices", err)
	}

	priced, err := s.pricer.Price(requested, catalog)
	if err != nil {
		slog.WarnContext(ctx, "Order rejected by pricing", "error", err)

		return pricing.Priced{}, err
	}

	return priced, nil
}

// persist writes the order header, its lines and the order.created event in one transaction.
func (s *OrderService) persist(
	ctx context.Context,
	sess session.Session,
	req order.CreateRequest,
	priced pricing.Priced,
) (order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.persist")
	defer span.End()

	work := s.newUOW()
	if err := work.Begin(ctx, sess); err != nil {
		return order.Order{}, apperr.Persistence("failed to start order transaction", err)
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to rollback order transaction", "error", err)
		}
	}()

	created, err := work.OrderRepository().Insert(ctx, order.Order{
		UserID:          sess.UserID,
		RecipientName:   req.RecipientName,
		ShippingAddress: req.ShippingAddress,
		Status:          order.StatusCreated,
		SubtotalCents:   priced.SubtotalCents,
		ShippingCents:   priced.ShippingCents,
		TotalCents:      priced.TotalCents,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to insert order", "error", err)

		return order.Order{}, apperr.Persistence("failed to insert order", err)
	}

	lines := make([]orderitem.OrderItem, len(priced.Lines))
	for i, line := range priced.Lines {
		line.OrderID = created.ID
		lines[i] = line
	}

	created.OrderItems, err = work.OrderItemRepository().BulkInsert(ctx, lines)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to insert order items", "order_id", created.ID, "error", err)

		return order.Order{}, apperr.Persistence("failed to insert order items", err)
	}

	msg, err := s.orderCreatedMessage(created)
	if err != nil {
		return order.Order{}, apperr.Persistence("failed to encode order event", err)
	}
	if _, err := work.OutboxRepository().Insert(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to enqueue order event", "order_id", created.ID, "error", err)

		return order.Order{}, apperr.Persistence("failed to enqueue order event", err)
	}

	if err := work.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to commit order", "order_id", created.ID, "error", err)

		return order.Order{}, apperr.Persistence("failed to commit order", err)
	}

	return created, nil
}

// otherOrdersTotal sums every committed order except created. The figure is a
// snapshot and may race with concurrent creations.
func (s *OrderService) otherOrdersTotal(ctx context.Context, created order.Order) (int64, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.otherOrdersTotal")
	defer span.End()

	total, err := s.orderRepo.SumTotalsExcluding(ctx, created.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to sum other orders, order is already committed",
			"order_id", created.ID,
			"error", err)

		return 0, apperr.Persistence("failed to sum other orders", err)
	}

	return total, nil
}

func (s *OrderService) orderCreatedMessage(o order.Order) (outbox.OutboxMessage, error) {
	lines := make([]event.OrderLine, len(o.OrderItems))
	for i, item := range o.OrderItems {
		lines[i] = event.OrderLine{
			ItemID:         item.ItemID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.LineTotalCents,
		}
	}

	payload, err := json.Marshal(event.OrderCreated{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		TotalCents:    o.TotalCents,
		Items:         lines,
		CreatedAt:     o.CreatedAt,
	})
	if err != nil {
		return outbox.OutboxMessage{}, fmt.Errorf("failed to marshal order event: %w", err)
	}

	return outbox.OutboxMessage{
		AggregateID: o.ID.String(),
		EventType:   event.TypeOrderCreated,
		QueueName:   s.eventQueue,
		RoutingKey:  s.eventQueue,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  s.maxRetries,
	}, nil
}

// ListOrders returns the caller's orders with their line items, newest first.
func (s *OrderService) ListOrders(
	ctx context.Context,
	sess session.Session,
	query order.QueryOrdersModel,
) ([]order.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "Service.ListOrders")
	defer span.End()

	query.UserID = sess.UserID

	orders, err := s.orderRepo.Query(ctx, &query)
	if err != nil {
		return nil, apperr.Persistence("failed to query orders", err)
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	itemQuery := &orderitem.QueryOrderItemsModel{}
	for _, o := range orders {
		itemQuery.OrderIds = append(itemQuery.OrderIds, o.ID)
	}
	items, err := s.orderItemRepo.Query(ctx, itemQuery)
	if err != nil {
		return nil, apperr.Persistence("failed to query order items", err)
	}

	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	return orders, nil
}
