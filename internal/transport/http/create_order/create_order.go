package createorder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/session"
	"github.com/corray333/backend-labs/checkout/internal/transport/http/response"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds the request body.
const maxBodyBytes = 1 << 20

// service is an interface for the service layer.
type service interface {
	Authenticate(ctx context.Context, authorization string) (session.Session, error)
	CreateOrder(ctx context.Context, sess session.Session, req order.CreateRequest) (order.Receipt, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})
	v.RegisterStructValidation(validateShippingAddress, createOrderRequest{})

	return v
}

// itemID is an opaque catalog identifier. Clients send it as a string or a number.
type itemID string

func (id *itemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = itemID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item_id must be a string or a number")
	}
	*id = itemID(n.String())

	return nil
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ItemID   itemID `json:"item_id"  validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	RecipientName   string                     `json:"recipient_name"   validate:"required"`
	ShippingAddress json.RawMessage            `json:"shipping_address"`
	Items           []itemInCreateOrderRequest `json:"items"            validate:"required,min=1,dive"`
}

// validateShippingAddress accepts a non-empty string or a JSON object.
func validateShippingAddress(sl validator.StructLevel) {
	req := sl.Current().Interface().(createOrderRequest)

	raw := bytes.TrimSpace(req.ShippingAddress)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		sl.ReportError(req.ShippingAddress, "shipping_address", "ShippingAddress", "required", "")
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			sl.ReportError(req.ShippingAddress, "shipping_address", "ShippingAddress", "required", "")
		}
	case raw[0] != '{':
		sl.ReportError(req.ShippingAddress, "shipping_address", "ShippingAddress", "string_or_object", "")
	}
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	err := validate.Struct(r)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("invalid field %s: failed on %s", fieldPath(verrs[0]), verrs[0].Tag())
	}

	return err
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		return fe.Field()
	}

	return path
}

// toModel converts createOrderRequest to order.CreateRequest.
func (r *createOrderRequest) toModel() order.CreateRequest {
	items := make([]order.RequestedItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = order.RequestedItem{
			ItemID:   string(it.ItemID),
			Quantity: it.Quantity,
		}
	}

	return order.CreateRequest{
		RecipientName:   r.RecipientName,
		ShippingAddress: bytes.TrimSpace(r.ShippingAddress),
		Items:           items,
	}
}

// createOrderResponse is the body returned for a created order.
type createOrderResponse struct {
	Success               bool   `json:"success"`
	OrderID               string `json:"order_id"`
	OrderTotalCents       int64  `json:"order_total_cents"`
	OtherOrdersTotalCents int64  `json:"other_orders_total_cents"`
	Message               string `json:"message"`
}

// CreateOrder authenticates the caller, then decodes and validates the body
// and hands it to the service.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	ctx := r.Context()

	sess, err := service.Authenticate(ctx, r.Header.Get("Authorization"))
	if err != nil {
		response.WriteError(ctx, w, err)

		return
	}

	req, err := decodeRequest(w, r)
	if err != nil {
		slog.WarnContext(ctx, "Error decoding request body for create order", "error", err)
		response.WriteError(ctx, w, err)

		return
	}

	receipt, err := service.CreateOrder(ctx, sess, req.toModel())
	if err != nil {
		response.WriteError(ctx, w, err)

		return
	}

	response.WriteJSON(ctx, w, http.StatusOK, createOrderResponse{
		Success:               true,
		OrderID:               receipt.OrderID.String(),
		OrderTotalCents:       receipt.OrderTotalCents,
		OtherOrdersTotalCents: receipt.OtherOrdersTotalCents,
		Message:               receipt.Message,
	})
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (*createOrderRequest, error) {
	req := &createOrderRequest{}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(req); err != nil {
		return nil, apperr.MalformedRequest("invalid request body: "+err.Error(), err)
	}

	if err := req.Validate(); err != nil {
		return nil, apperr.MalformedRequest(err.Error(), err)
	}

	return req, nil
}
