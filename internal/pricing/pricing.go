// Package pricing holds the single money reconciliation routine shared by
// the cart view, the checkout summary, and order submission. Every surface
// that shows or charges a total goes through Reconcile so the numbers can
// never drift apart.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/shipping"
)

// Quote is the reconciled money breakdown for a cart.
type Quote struct {
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Shipping        decimal.Decimal   `json:"shipping"`
	TradeInDiscount decimal.Decimal   `json:"tradeInDiscount"`
	Total           decimal.Decimal   `json:"total"`
	Unavailable     []domain.CartItem `json:"unavailable,omitempty"`
}

// HasUnavailable reports whether any cart line no longer resolves to a live
// listing.
func (q Quote) HasUnavailable() bool {
	return len(q.Unavailable) > 0
}

// Reconcile computes the quote for a cart.
//
// available, when non-nil, marks which cart lines (by unique key) still
// resolve to a live listing. Lines missing from the set contribute nothing
// to the subtotal and are surfaced in Unavailable. A nil set means every
// line is priced.
//
// ship, when non-nil, contributes its cost. The trade-in discount is applied
// last and the total is clamped at zero: a credit larger than the purchase
// never produces a negative charge.
func Reconcile(cart domain.Cart, available map[string]bool, ship *shipping.Estimate) Quote {
	q := Quote{
		Subtotal:        decimal.Zero,
		Shipping:        decimal.Zero,
		TradeInDiscount: decimal.Zero,
		Total:           decimal.Zero,
	}

	for _, item := range cart.Items {
		if available != nil && !available[item.UniqueID] {
			q.Unavailable = append(q.Unavailable, item)
			continue
		}
		q.Subtotal = q.Subtotal.Add(item.LineSubtotal())
	}

	if ship != nil {
		q.Shipping = ship.Cost
	}
	if cart.TradeIn != nil {
		q.TradeInDiscount = cart.TradeIn.Discount
	}

	q.Total = q.Subtotal.Add(q.Shipping).Sub(q.TradeInDiscount)
	if q.Total.IsNegative() {
		q.Total = decimal.Zero
	}

	return q
}
