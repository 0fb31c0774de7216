package listorders

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/session"
	"github.com/corray333/backend-labs/checkout/internal/transport/http/response"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

const defaultLimit = 50

type service interface {
	Authenticate(ctx context.Context, authorization string) (session.Session, error)
	ListOrders(ctx context.Context, sess session.Session, query order.QueryOrdersModel) ([]order.Order, error)
}

var (
	decoder  = newDecoder()
	validate = validator.New()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

type queryOrdersRequest struct {
	Limit  int `schema:"limit"  validate:"gte=0,lte=200"`
	Offset int `schema:"offset" validate:"gte=0"`
}

func (q *queryOrdersRequest) ToModel() order.QueryOrdersModel {
	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	return order.QueryOrdersModel{
		Limit:  limit,
		Offset: q.Offset,
	}
}

type listOrdersResponse struct {
	Success bool          `json:"success"`
	Orders  []order.Order `json:"orders"`
}

// ListOrders returns the caller's own orders.
func ListOrders(w http.ResponseWriter, r *http.Request, service service) {
	ctx := r.Context()

	sess, err := service.Authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		response.WriteError(ctx, w, err)

		return
	}

	query := &queryOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		response.WriteError(ctx, w, apperr.MalformedRequest("invalid query: "+err.Error(), err))

		return
	}
	if err := validate.Struct(query); err != nil {
		response.WriteError(ctx, w, apperr.MalformedRequest("invalid query: "+err.Error(), err))

		return
	}

	orders, err := service.ListOrders(ctx, sess, query.ToModel())
	if err != nil {
		response.WriteError(ctx, w, err)

		return
	}

	response.WriteJSON(ctx, w, http.StatusOK, listOrdersResponse{Success: true, Orders: orders})
}
