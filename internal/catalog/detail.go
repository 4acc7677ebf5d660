package catalog

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lanternfox/storefront/internal/backend"
	"github.com/lanternfox/storefront/internal/domain"
)

// Detail is the current listing state for one cart line.
type Detail struct {
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  string
}

// adDetailRow is the slice of the marketplace_ads schema the detail lookup
// needs.
type adDetailRow struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	Status         string          `json:"status"`
	ImageURL       string          `json:"image_url"`
}

// Details fetches both sides in parallel: store products in one request,
// marketplace ads in the other. A failed side resolves to no details, so its
// lines surface as unavailable instead of failing the whole cart view.
func (s *service) Details(ctx context.Context, items []domain.CartItem) (map[string]Detail, error) {
	var storeIDs, adIDs []int64
	for _, item := range items {
		switch item.Type {
		case domain.ItemTypeStore:
			storeIDs = append(storeIDs, item.ID)
		case domain.ItemTypeMarketplace:
			adIDs = append(adIDs, item.ID)
		}
	}

	var (
		wg       sync.WaitGroup
		products []productRow
		ads      []adDetailRow
	)

	if len(storeIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := s.selectByIDs(ctx, storeIDs)
			if err != nil {
				s.logger.Warn("store product detail lookup failed", "error", err, "ids", storeIDs)
				return
			}
			products = rows
		}()
	}

	if len(adIDs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var rows []adDetailRow
			err := s.client.Select(ctx, backend.CollectionAds, backend.Query{IDs: adIDs}, &rows)
			if err != nil {
				s.logger.Warn("marketplace ad detail lookup failed", "error", err, "ids", adIDs)
				return
			}
			ads = rows
		}()
	}

	wg.Wait()

	details := make(map[string]Detail, len(items))
	for _, r := range products {
		details[domain.LineKey(domain.ItemTypeStore, r.ID)] = Detail{
			Name:      r.Name,
			UnitPrice: r.toDomain().EffectivePrice(),
			ImageURL:  r.ImageURL,
		}
	}
	for _, r := range ads {
		// Traded ads are no longer purchasable.
		if r.Status != string(domain.AdStatusAvailable) {
			continue
		}
		details[domain.LineKey(domain.ItemTypeMarketplace, r.ID)] = Detail{
			Name:      r.Title,
			UnitPrice: r.SuggestedPrice,
			ImageURL:  r.ImageURL,
		}
	}

	return details, nil
}

// Availability derives the available-line set pricing.Reconcile consumes.
func Availability(details map[string]Detail) map[string]bool {
	available := make(map[string]bool, len(details))
	for key := range details {
		available[key] = true
	}
	return available
}
