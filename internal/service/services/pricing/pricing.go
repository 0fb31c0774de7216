package pricing

import (
	"math"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/corray333/backend-labs/checkout/internal/service/models/item"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
)

// DefaultShippingCents is the flat shipping charge in minor units.
const DefaultShippingCents int64 = 500

// ShippingPolicy decides the shipping charge for a priced order.
type ShippingPolicy interface {
	ShippingCents(lines []orderitem.OrderItem, subtotalCents int64) int64
}

// FlatShipping charges the same amount for every order.
type FlatShipping struct {
	Cents int64
}

// ShippingCents implements ShippingPolicy.
func (f FlatShipping) ShippingCents([]orderitem.OrderItem, int64) int64 {
	return f.Cents
}

// Priced is the output of the engine: ordered lines plus totals.
type Priced struct {
	Lines         []orderitem.OrderItem
	SubtotalCents int64
	ShippingCents int64
	TotalCents    int64
}

// Engine prices requested items against catalog records.
type Engine struct {
	shipping ShippingPolicy
}

// NewEngine creates an Engine. A nil policy falls back to flat shipping.
func NewEngine(shipping ShippingPolicy) *Engine {
	if shipping == nil {
		shipping = FlatShipping{Cents: DefaultShippingCents}
	}

	return &Engine{shipping: shipping}
}

// DistinctItemIDs returns requested item ids without duplicates, in first-seen order.
func DistinctItemIDs(requested []order.RequestedItem) []string {
	seen := make(map[string]struct{}, len(requested))
	ids := make([]string, 0, len(requested))
	for _, r := range requested {
		if _, ok := seen[r.ItemID]; ok {
			continue
		}
		seen[r.ItemID] = struct{}{}
		ids = append(ids, r.ItemID)
	}

	return ids
}

// Price computes line totals, subtotal, shipping and total.
// Only catalog prices are used. The first requested id missing from the
// catalog yields an ItemNotFound error.
func (e *Engine) Price(requested []order.RequestedItem, catalog []item.Item) (Priced, error) {
	if len(requested) == 0 {
		return Priced{}, apperr.MalformedRequest("items must contain at least one entry", nil)
	}

	prices := make(map[string]int64, len(catalog))
	for _, it := range catalog {
		prices[it.ID] = it.PriceCents
	}

	lines := make([]orderitem.OrderItem, 0, len(requested))
	var subtotal int64
	for _, r := range requested {
		unitPrice, ok := prices[r.ItemID]
		if !ok {
			return Priced{}, apperr.ItemNotFound(r.ItemID)
		}
		if r.Quantity <= 0 {
			return Priced{}, apperr.MalformedRequest("quantity must be a positive integer", nil)
		}

		lineTotal, ok := mul(unitPrice, r.Quantity)
		if !ok {
			return Priced{}, apperr.MalformedRequest("line total for item "+r.ItemID+" is out of range", nil)
		}
		subtotal, ok = add(subtotal, lineTotal)
		if !ok {
			return Priced{}, apperr.MalformedRequest("order subtotal is out of range", nil)
		}

		lines = append(lines, orderitem.OrderItem{
			ItemID:         r.ItemID,
			Quantity:       r.Quantity,
			UnitPriceCents: unitPrice,
			LineTotalCents: lineTotal,
		})
	}

	shipping := e.shipping.ShippingCents(lines, subtotal)
	total, ok := add(subtotal, shipping)
	if !ok {
		return Priced{}, apperr.MalformedRequest("order total is out of range", nil)
	}

	return Priced{
		Lines:         lines,
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TotalCents:    total,
	}, nil
}

// mul multiplies two non-negative amounts, reporting overflow.
func mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}

	return a * b, true
}

func add(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}

	return a + b, true
}
