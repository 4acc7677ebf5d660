package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ORDER DOMAIN TYPES
// =============================================================================

// Order is a server-owned record created once at checkout. TotalValue is the
// persisted snapshot computed at submission time; order history displays it
// as-is and never recomputes it.
type Order struct {
	ID         int64
	UserID     string
	TotalValue decimal.Decimal
	CreatedAt  time.Time
	Items      []OrderItem
}

// OrderItem is one line of a persisted order. Exactly one of StoreProductID
// or MarketplaceAdID is set, never both; which one depends on the cart line's
// item type.
type OrderItem struct {
	OrderID         int64
	StoreProductID  *int64
	MarketplaceAdID *int64
	ProductName     string
	Quantity        int
	UnitPrice       decimal.Decimal
}

// TradeProposal links a user, the store product being purchased, and the
// marketplace ad offered as trade-in. Recorded before the ad is marked traded.
type TradeProposal struct {
	ID             int64
	UserID         string
	StoreProductID int64
	AdID           int64
	CreatedAt      time.Time
}
