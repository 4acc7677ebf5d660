package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// Product represents a catalog product sold directly by the platform.
type Product struct {
	ID               int64
	Name             string
	Description      string
	Category         string
	Price            decimal.Decimal
	PromotionalPrice decimal.Decimal
	OnPromotion      bool
	ImageURL         string
	CreatedAt        time.Time
}

// EffectivePrice returns the promotional price when the product is flagged
// as on promotion, the regular price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnPromotion {
		return p.PromotionalPrice
	}
	return p.Price
}

// AdStatus is the lifecycle state of a marketplace ad.
type AdStatus string

const (
	AdStatusAvailable AdStatus = "available"
	AdStatusTraded    AdStatus = "traded"
)

// Ad represents a peer-to-peer marketplace listing offered by another user,
// eligible as a trade-in against a store purchase.
type Ad struct {
	ID             int64
	UserID         string
	Title          string
	Description    string
	Category       string
	SuggestedPrice decimal.Decimal
	Status         AdStatus
	ImageURL       string
	SellerName     string
	CreatedAt      time.Time
}

// Profile is the public profile of a storefront user.
type Profile struct {
	ID        string
	FullName  string
	AvatarURL string
}
