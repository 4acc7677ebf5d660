// Package backend is the client for the hosted data service that stores the
// catalog, marketplace ads, orders and profiles. The service speaks a
// PostgREST-style REST dialect: one route per collection, filters in the
// query string, JSON in and out.
package backend

import (
	"context"
	"errors"
)

// Collection names as exposed by the data service.
const (
	CollectionProducts       = "store_products"
	CollectionAds            = "marketplace_ads"
	CollectionOrders         = "orders"
	CollectionOrderItems     = "order_items"
	CollectionTradeProposals = "trade_proposals"
	CollectionProfiles       = "profiles"
)

var (
	ErrNoRows = errors.New("backend: no rows matched")
)

// Query describes a read against a collection. The zero value selects
// everything.
type Query struct {
	// Filters are column -> value equality constraints.
	Filters map[string]string

	// Search is a case-insensitive substring match applied to SearchColumn.
	Search       string
	SearchColumn string

	// IDs, when non-empty, restricts rows to the given primary keys.
	IDs []int64

	// Sort orders results by the named column; Descending flips direction.
	Sort       string
	Descending bool

	// Limit caps the number of rows returned; zero means no cap.
	Limit int
}

// Client is the data service surface the rest of the app depends on. dest
// for Select and Insert must be a pointer to a slice or struct the response
// rows unmarshal into; Insert with a nil dest discards the created row.
type Client interface {
	Select(ctx context.Context, collection string, q Query, dest interface{}) error
	Insert(ctx context.Context, collection string, payload interface{}, dest interface{}) error
	Update(ctx context.Context, collection string, filters map[string]string, payload interface{}) error
}
