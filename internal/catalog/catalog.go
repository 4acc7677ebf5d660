// Package catalog reads store products from the data service and resolves
// current listing details for cart lines.
package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lanternfox/storefront/internal/backend"
	"github.com/lanternfox/storefront/internal/domain"
)

// ListFilter narrows a product listing. The zero value lists everything.
type ListFilter struct {
	Category        string
	Search          string
	PromotionalOnly bool
	Limit           int
}

// Service exposes catalog reads.
type Service interface {
	// List returns products matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]domain.Product, error)

	// Get returns one product by id.
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// GetByIDs returns the products with the given ids. Missing ids are
	// silently absent from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)

	// Newest returns the n most recently added products.
	Newest(ctx context.Context, n int) ([]domain.Product, error)

	// Details resolves the current listing details for cart lines, keyed by
	// line key. Lines whose listing no longer resolves are absent from the
	// map.
	Details(ctx context.Context, items []domain.CartItem) (map[string]Detail, error)
}

type service struct {
	client backend.Client
	logger *slog.Logger
}

// NewService creates a catalog service backed by the data service client.
func NewService(client backend.Client, logger *slog.Logger) Service {
	return &service{
		client: client,
		logger: logger.With("component", "catalog"),
	}
}

// productRow mirrors the store_products collection schema.
type productRow struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	Price            decimal.Decimal `json:"price"`
	PromotionalPrice decimal.Decimal `json:"promotional_price"`
	OnPromotion      bool            `json:"on_promotion"`
	ImageURL         string          `json:"image_url"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Category:         r.Category,
		Price:            r.Price,
		PromotionalPrice: r.PromotionalPrice,
		OnPromotion:      r.OnPromotion,
		ImageURL:         r.ImageURL,
		CreatedAt:        r.CreatedAt,
	}
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]domain.Product, error) {
	const op = "CatalogService.List"

	q := backend.Query{
		Filters:    map[string]string{},
		Sort:       "created_at",
		Descending: true,
		Limit:      filter.Limit,
	}
	if filter.Category != "" {
		q.Filters["category"] = filter.Category
	}
	if filter.PromotionalOnly {
		q.Filters["on_promotion"] = "true"
	}
	if filter.Search != "" {
		q.Search = filter.Search
		q.SearchColumn = "name"
	}

	var rows []productRow
	if err := s.client.Select(ctx, backend.CollectionProducts, q, &rows); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to list products")
	}

	products := make([]domain.Product, len(rows))
	for i, r := range rows {
		products[i] = r.toDomain()
	}

	return products, nil
}

func (s *service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "CatalogService.Get"

	rows, err := s.selectByIDs(ctx, []int64{id})
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load product")
	}
	if len(rows) == 0 {
		return nil, domain.NotFound(op, "product", strconv.FormatInt(id, 10))
	}

	product := rows[0].toDomain()
	return &product, nil
}

func (s *service) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	const op = "CatalogService.GetByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.selectByIDs(ctx, ids)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load products")
	}

	products := make([]domain.Product, len(rows))
	for i, r := range rows {
		products[i] = r.toDomain()
	}

	return products, nil
}

func (s *service) Newest(ctx context.Context, n int) ([]domain.Product, error) {
	return s.List(ctx, ListFilter{Limit: n})
}

func (s *service) selectByIDs(ctx context.Context, ids []int64) ([]productRow, error) {
	var rows []productRow
	err := s.client.Select(ctx, backend.CollectionProducts, backend.Query{IDs: ids}, &rows)
	return rows, err
}
