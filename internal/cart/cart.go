// Package cart owns the client-side shopping cart: persisted read/modify/save
// operations plus the cart-changed notification other components subscribe to.
package cart

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/kv"
	"github.com/lanternfox/storefront/internal/telemetry"
)

// Direction adjusts a line's quantity by one step.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// Domain errors.
var (
	ErrItemNotFound  = domain.Errorf(domain.ENOTFOUND, "cart", "Cart item not found")
	ErrInvalidType   = domain.Errorf(domain.EINVALID, "cart", "Unknown item type")
	ErrInvalidAction = domain.Errorf(domain.EINVALID, "cart", "Unknown quantity action")
	ErrNoPriceToLock = domain.Errorf(domain.EINVALID, "cart", "Item has no resolvable price")
)

// Service provides the cart store operations. Every mutation re-reads the
// persisted cart first, persists the result, and then notifies subscribers.
type Service interface {
	// Get deserializes the persisted cart. Absent or unparseable state
	// yields the default empty cart; Get never fails.
	Get() domain.Cart

	// Save persists the cart and emits the cart-changed notification.
	Save(c domain.Cart) error

	// Add puts an item in the cart, incrementing quantity when a line with
	// the same (type, id) key already exists. The price is resolved and
	// locked in here; nothing downstream re-resolves it.
	Add(details ItemDetails) (domain.Cart, error)

	// UpdateQuantity moves the matching line's quantity by one. A quantity
	// reaching zero removes the line.
	UpdateQuantity(uniqueID string, action Direction) (domain.Cart, error)

	// Remove drops the line with the given unique key.
	Remove(uniqueID string) (domain.Cart, error)

	// SetTradeIn attaches (or, with nil, detaches) the cart's trade-in.
	SetTradeIn(t *domain.TradeIn) (domain.Cart, error)

	// Clear resets the cart to the default empty value.
	Clear() error

	// Subscribe registers a listener for the cart-changed notification.
	// The returned function unregisters it.
	Subscribe(fn func()) (unsubscribe func())
}

// ItemDetails carries the listing fields the add operation resolves a price
// and name from. Price fields are pointers: nil means the source record has
// no such field, which is distinct from an explicit zero.
type ItemDetails struct {
	ID   int64
	Type domain.ItemType
	Name string

	OnPromotion      bool
	PromotionalPrice *decimal.Decimal
	Price            *decimal.Decimal // explicit price field
	GenericPrice     *decimal.Decimal // generic price field (legacy records)
	SuggestedPrice   *decimal.Decimal // marketplace ads only
}

// resolvePrice applies the add-time price precedence:
// promotional (when flagged) > explicit price > generic price > suggested.
// This is the only place promotional pricing is locked in.
func (d ItemDetails) resolvePrice() (decimal.Decimal, bool) {
	if d.OnPromotion && d.PromotionalPrice != nil {
		return *d.PromotionalPrice, true
	}
	if d.Price != nil {
		return *d.Price, true
	}
	if d.GenericPrice != nil {
		return *d.GenericPrice, true
	}
	if d.SuggestedPrice != nil {
		return *d.SuggestedPrice, true
	}
	return decimal.Zero, false
}

type service struct {
	store    kv.Store
	notifier *notifier
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
}

// NewService creates a cart Service backed by the given store. metrics may
// be nil.
func NewService(store kv.Store, metrics *telemetry.BusinessMetrics, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		store:    store,
		notifier: newNotifier(),
		metrics:  metrics,
		logger:   logger,
	}
}

// Get deserializes the persisted cart, defaulting to empty on any problem.
func (s *service) Get() domain.Cart {
	c := domain.EmptyCart()

	ok, err := kv.Load(s.store, kv.KeyCart, &c)
	if err != nil {
		// Storage trouble is logged, never surfaced: the UI always gets a cart.
		s.logger.Warn("cart read failed, using empty cart", "error", err)
		return domain.EmptyCart()
	}
	if !ok {
		return domain.EmptyCart()
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}

	return c
}

// Save persists the cart, then notifies every subscriber synchronously.
func (s *service) Save(c domain.Cart) error {
	if err := kv.Save(s.store, kv.KeyCart, c); err != nil {
		return domain.Internal(err, "cart.save", "failed to persist cart")
	}

	if s.metrics != nil {
		s.metrics.CartUpdated.Inc()
	}
	s.notifier.broadcast()

	return nil
}

// Add resolves the line key from (type, id) and either increments the
// existing line or appends a new one with the locked-in price.
func (s *service) Add(details ItemDetails) (domain.Cart, error) {
	if !details.Type.Valid() {
		return domain.Cart{}, ErrInvalidType
	}

	price, ok := details.resolvePrice()
	if !ok {
		return domain.Cart{}, ErrNoPriceToLock
	}

	c := s.Get()
	uniqueID := domain.LineKey(details.Type, details.ID)

	if existing, found := c.Find(uniqueID); found {
		existing.Quantity++
	} else {
		c.Items = append(c.Items, domain.CartItem{
			UniqueID: uniqueID,
			ID:       details.ID,
			Name:     details.Name,
			Price:    price,
			Quantity: 1,
			Type:     details.Type,
		})
	}

	if err := s.Save(c); err != nil {
		return domain.Cart{}, err
	}

	if s.metrics != nil {
		s.metrics.CartItemsAdd.WithLabelValues(string(details.Type)).Inc()
	}

	return c, nil
}

// UpdateQuantity adjusts the matching line by one. When the quantity drops
// to zero the line is removed, filtered by its unique key: a bare id is
// ambiguous across the two item types and must never be used here.
func (s *service) UpdateQuantity(uniqueID string, action Direction) (domain.Cart, error) {
	c := s.Get()

	item, found := c.Find(uniqueID)
	if !found {
		return domain.Cart{}, ErrItemNotFound
	}

	switch action {
	case Increase:
		item.Quantity++
	case Decrease:
		item.Quantity--
	default:
		return domain.Cart{}, ErrInvalidAction
	}

	if item.Quantity <= 0 {
		c.Items = removeByKey(c.Items, uniqueID)
	}

	if err := s.Save(c); err != nil {
		return domain.Cart{}, err
	}

	return c, nil
}

// Remove drops the line with the given unique key.
func (s *service) Remove(uniqueID string) (domain.Cart, error) {
	c := s.Get()
	c.Items = removeByKey(c.Items, uniqueID)

	if err := s.Save(c); err != nil {
		return domain.Cart{}, err
	}

	return c, nil
}

// SetTradeIn attaches or detaches the cart's single trade-in.
func (s *service) SetTradeIn(t *domain.TradeIn) (domain.Cart, error) {
	c := s.Get()
	c.TradeIn = t

	if err := s.Save(c); err != nil {
		return domain.Cart{}, err
	}

	return c, nil
}

// Clear resets the cart to the default empty value.
func (s *service) Clear() error {
	if err := s.Save(domain.EmptyCart()); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.CartCleared.Inc()
	}

	return nil
}

// Subscribe registers a cart-changed listener.
func (s *service) Subscribe(fn func()) func() {
	return s.notifier.subscribe(fn)
}

func removeByKey(items []domain.CartItem, uniqueID string) []domain.CartItem {
	kept := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		if item.UniqueID != uniqueID {
			kept = append(kept, item)
		}
	}
	return kept
}
