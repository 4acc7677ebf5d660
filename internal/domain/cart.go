package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CART DOMAIN TYPES
// =============================================================================

// ItemType distinguishes catalog products sold by the platform from
// peer-to-peer marketplace listings. The two share numeric id spaces, so a
// bare id never identifies a cart line on its own.
type ItemType string

const (
	ItemTypeStore       ItemType = "store"
	ItemTypeMarketplace ItemType = "marketplace"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	return t == ItemTypeStore || t == ItemTypeMarketplace
}

// LineKey builds the composite key identifying a cart line unambiguously
// across both item kinds: "store:7" and "marketplace:7" are distinct lines.
func LineKey(t ItemType, id int64) string {
	return fmt.Sprintf("%s:%d", t, id)
}

// CartItem is one line of the cart. Price is locked in when the item is
// added; quantity is always >= 1 for a persisted item.
type CartItem struct {
	UniqueID string          `json:"uniqueId"`
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Type     ItemType        `json:"type"`
}

// LineSubtotal returns price x quantity for this line.
func (i CartItem) LineSubtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TradeIn records one marketplace ad offered as partial payment against a
// store item in the same cart. At most one trade-in exists per cart.
type TradeIn struct {
	AdID     int64           `json:"adId"`
	AdTitle  string          `json:"adTitle"`
	Discount decimal.Decimal `json:"discount"`
}

// Cart is the client-owned shopping cart. The zero value is a usable empty
// cart; EmptyCart gives one with a non-nil items slice for serialization.
type Cart struct {
	Items   []CartItem `json:"items"`
	TradeIn *TradeIn   `json:"tradeIn"`
}

// EmptyCart returns the default cart value used when nothing is persisted.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}, TradeIn: nil}
}

// IsEmpty reports whether the cart has no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount returns the total displayed item count: the sum of quantities
// over all surviving lines.
func (c Cart) ItemCount() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Find returns the cart line with the given unique key, if present.
func (c Cart) Find(uniqueID string) (*CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].UniqueID == uniqueID {
			return &c.Items[i], true
		}
	}
	return nil, false
}

// FirstStoreItem returns the first store-type line. A trade-in is only
// meaningful when such a line exists; the trade proposal references it.
func (c Cart) FirstStoreItem() (CartItem, bool) {
	for _, item := range c.Items {
		if item.Type == ItemTypeStore {
			return item, true
		}
	}
	return CartItem{}, false
}
