// Package marketplace manages peer-to-peer trade-in ads: browsing,
// publishing with a photo upload, and offering an ad as credit against a
// store purchase.
package marketplace

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/lanternfox/storefront/internal/backend"
	"github.com/lanternfox/storefront/internal/cart"
	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/storage"
)

// Filter narrows an ad listing. The zero value lists every available ad.
type Filter struct {
	Category string
	Search   string

	// ExcludeUser hides ads owned by the given user, for the browse view
	// where offering your own ad back to yourself makes no sense.
	ExcludeUser string

	Limit int
}

// ImageUpload is the photo attached to a new ad.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// CreateAdInput carries the fields for publishing a new ad.
type CreateAdInput struct {
	UserID         string          `validate:"required"`
	Title          string          `validate:"required,min=3,max=120"`
	Description    string          `validate:"max=2000"`
	Category       string          `validate:"required"`
	SuggestedPrice decimal.Decimal `validate:"-"`
	Image          *ImageUpload    `validate:"-"`
}

// Service exposes marketplace operations.
type Service interface {
	// List returns available ads matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]domain.Ad, error)

	// MyAds returns all ads owned by a user, regardless of status.
	MyAds(ctx context.Context, userID string) ([]domain.Ad, error)

	// Get returns one ad by id.
	Get(ctx context.Context, id int64) (*domain.Ad, error)

	// Create validates and publishes a new ad, uploading its photo first.
	Create(ctx context.Context, input CreateAdInput) (*domain.Ad, error)

	// SetStatus transitions an ad's lifecycle state.
	SetStatus(ctx context.Context, adID int64, status domain.AdStatus) error

	// BeginTradeIn replaces the cart with the target product and attaches
	// the ad as trade-in credit at its suggested price.
	BeginTradeIn(ctx context.Context, adID int64, target domain.Product) error
}

type service struct {
	client   backend.Client
	media    storage.Storage
	carts    cart.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates a marketplace service.
func NewService(client backend.Client, media storage.Storage, carts cart.Service, logger *slog.Logger) Service {
	return &service{
		client:   client,
		media:    media,
		carts:    carts,
		validate: validator.New(),
		logger:   logger.With("component", "marketplace"),
	}
}

// adRow mirrors the marketplace_ads collection schema.
type adRow struct {
	ID             int64           `json:"id,omitempty"`
	UserID         string          `json:"user_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	Status         string          `json:"status"`
	ImageURL       string          `json:"image_url"`
	SellerName     string          `json:"seller_name,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

func (r adRow) toDomain() domain.Ad {
	return domain.Ad{
		ID:             r.ID,
		UserID:         r.UserID,
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		SuggestedPrice: r.SuggestedPrice,
		Status:         domain.AdStatus(r.Status),
		ImageURL:       r.ImageURL,
		SellerName:     r.SellerName,
		CreatedAt:      r.CreatedAt,
	}
}

func (s *service) List(ctx context.Context, filter Filter) ([]domain.Ad, error) {
	const op = "marketplace.list"

	q := backend.Query{
		Filters:    map[string]string{"status": string(domain.AdStatusAvailable)},
		Sort:       "created_at",
		Descending: true,
		Limit:      filter.Limit,
	}
	if filter.Category != "" {
		q.Filters["category"] = filter.Category
	}
	if filter.Search != "" {
		q.Search = filter.Search
		q.SearchColumn = "title"
	}

	var rows []adRow
	if err := s.client.Select(ctx, backend.CollectionAds, q, &rows); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to list ads")
	}

	ads := make([]domain.Ad, 0, len(rows))
	for _, r := range rows {
		if filter.ExcludeUser != "" && r.UserID == filter.ExcludeUser {
			continue
		}
		ads = append(ads, r.toDomain())
	}

	return ads, nil
}

func (s *service) MyAds(ctx context.Context, userID string) ([]domain.Ad, error) {
	const op = "marketplace.myAds"

	var rows []adRow
	q := backend.Query{
		Filters:    map[string]string{"user_id": userID},
		Sort:       "created_at",
		Descending: true,
	}
	if err := s.client.Select(ctx, backend.CollectionAds, q, &rows); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to list your ads")
	}

	ads := make([]domain.Ad, len(rows))
	for i, r := range rows {
		ads[i] = r.toDomain()
	}

	return ads, nil
}

func (s *service) Get(ctx context.Context, id int64) (*domain.Ad, error) {
	const op = "marketplace.get"

	var rows []adRow
	if err := s.client.Select(ctx, backend.CollectionAds, backend.Query{IDs: []int64{id}}, &rows); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load ad")
	}
	if len(rows) == 0 {
		return nil, domain.NotFound(op, "ad", strconv.FormatInt(id, 10))
	}

	ad := rows[0].toDomain()
	return &ad, nil
}

func (s *service) Create(ctx context.Context, input CreateAdInput) (*domain.Ad, error) {
	const op = "marketplace.create"

	if err := s.validate.Struct(input); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field := verrs[0]
			return nil, domain.NewValidationError(op, field.Field(), validationMessage(field))
		}
		return nil, domain.Invalid(op, "invalid ad")
	}
	if !input.SuggestedPrice.IsPositive() {
		return nil, domain.NewValidationError(op, "SuggestedPrice", "suggested price must be greater than zero")
	}

	var imageURL string
	if input.Image != nil {
		key := storage.AdImageKey(input.Image.Filename)
		url, err := s.media.Put(ctx, key, input.Image.Content, input.Image.ContentType)
		if err != nil {
			return nil, domain.Remote(err, op, "failed to upload ad photo")
		}
		imageURL = url
	}

	payload := adRow{
		UserID:         input.UserID,
		Title:          input.Title,
		Description:    input.Description,
		Category:       input.Category,
		SuggestedPrice: input.SuggestedPrice,
		Status:         string(domain.AdStatusAvailable),
		ImageURL:       imageURL,
	}

	var created adRow
	if err := s.client.Insert(ctx, backend.CollectionAds, payload, &created); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to publish ad")
	}

	s.logger.Info("ad published", "ad_id", created.ID, "user_id", input.UserID, "category", input.Category)

	ad := created.toDomain()
	return &ad, nil
}

func (s *service) SetStatus(ctx context.Context, adID int64, status domain.AdStatus) error {
	const op = "marketplace.setStatus"

	if status != domain.AdStatusAvailable && status != domain.AdStatusTraded {
		return domain.Invalid(op, "unknown ad status")
	}

	filters := map[string]string{"id": strconv.FormatInt(adID, 10)}
	payload := map[string]string{"status": string(status)}
	if err := s.client.Update(ctx, backend.CollectionAds, filters, payload); err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to update ad status")
	}

	return nil
}

// BeginTradeIn starts the trade flow: the cart becomes exactly the target
// product plus the ad's suggested price as credit. Any previous cart
// contents are discarded.
func (s *service) BeginTradeIn(ctx context.Context, adID int64, target domain.Product) error {
	const op = "marketplace.beginTradeIn"

	ad, err := s.Get(ctx, adID)
	if err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to load trade-in ad")
	}
	if ad.Status != domain.AdStatusAvailable {
		return domain.Invalid(op, "ad is no longer available for trade")
	}

	if err := s.carts.Clear(); err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to reset cart")
	}

	price := target.Price
	promo := target.PromotionalPrice
	if _, err := s.carts.Add(cart.ItemDetails{
		ID:               target.ID,
		Type:             domain.ItemTypeStore,
		Name:             target.Name,
		OnPromotion:      target.OnPromotion,
		PromotionalPrice: &promo,
		Price:            &price,
	}); err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to add trade target to cart")
	}

	if _, err := s.carts.SetTradeIn(&domain.TradeIn{
		AdID:     ad.ID,
		AdTitle:  ad.Title,
		Discount: ad.SuggestedPrice,
	}); err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), op, "failed to attach trade-in credit")
	}

	s.logger.Info("trade-in started", "ad_id", ad.ID, "product_id", target.ID, "discount", ad.SuggestedPrice)

	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "invalid value"
	}
}
