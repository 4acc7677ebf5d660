// Package checkout turns the persisted cart into a server-side order. The
// submission walks a fixed state machine so partial failures always leave an
// inspectable trail: remote writes happen in a strict order and the cart is
// only cleared after the order exists.
package checkout

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lanternfox/storefront/internal/address"
	"github.com/lanternfox/storefront/internal/backend"
	"github.com/lanternfox/storefront/internal/cart"
	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/marketplace"
	"github.com/lanternfox/storefront/internal/pricing"
	"github.com/lanternfox/storefront/internal/shipping"
	"github.com/lanternfox/storefront/internal/telemetry"
)

// State is one step of the submission state machine.
type State string

const (
	StateIdle        State = "idle"
	StateValidating  State = "validating"
	StateTradeRecord State = "trade_recording"
	StateCreating    State = "creating"
	StateClearing    State = "clearing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Receipt is what a successful submission returns.
type Receipt struct {
	OrderID int64
	Total   decimal.Decimal
}

// Service submits orders and reads order history.
type Service interface {
	// Submit validates the cart, records the trade-in if present, creates
	// the order with its line items, and clears the local session. It is
	// not retried automatically: on failure the cart is left intact so the
	// user can resubmit.
	Submit(ctx context.Context, userID string) (*Receipt, error)

	// History returns the user's orders, newest first, with line items.
	// Totals are the persisted snapshots taken at submission time.
	History(ctx context.Context, userID string) ([]domain.Order, error)

	// State reports the current submission state.
	State() State

	// OnTransition registers a listener called on every state change,
	// synchronously from the submitting goroutine.
	OnTransition(fn func(State))
}

type service struct {
	client  backend.Client
	carts   cart.Service
	ads     marketplace.Service
	cache   *address.Cache
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger

	mu         sync.Mutex
	state      State
	transition func(State)
}

// NewService creates a checkout service. cache and metrics may be nil.
func NewService(client backend.Client, carts cart.Service, ads marketplace.Service, cache *address.Cache, metrics *telemetry.BusinessMetrics, logger *slog.Logger) Service {
	return &service{
		client:  client,
		carts:   carts,
		ads:     ads,
		cache:   cache,
		metrics: metrics,
		logger:  logger.With("component", "checkout"),
		state:   StateIdle,
	}
}

// orderRow mirrors the orders collection schema.
type orderRow struct {
	ID         int64           `json:"id,omitempty"`
	UserID     string          `json:"user_id"`
	TotalValue decimal.Decimal `json:"total_value"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
}

// orderItemRow mirrors the order_items collection schema. Exactly one of
// StoreProductID or MarketplaceAdID is set.
type orderItemRow struct {
	OrderID         int64           `json:"order_id"`
	StoreProductID  *int64          `json:"store_product_id,omitempty"`
	MarketplaceAdID *int64          `json:"marketplace_ad_id,omitempty"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// tradeProposalRow mirrors the trade_proposals collection schema.
type tradeProposalRow struct {
	ID             int64  `json:"id,omitempty"`
	UserID         string `json:"user_id"`
	StoreProductID int64  `json:"store_product_id"`
	AdID           int64  `json:"ad_id"`
}

func (s *service) Submit(ctx context.Context, userID string) (*Receipt, error) {
	const op = "checkout.submit"

	if s.metrics != nil {
		s.metrics.CheckoutStarted.Inc()
	}

	// Validating. Nothing has been written yet, so failures here are free.
	s.setState(StateValidating)

	c := s.carts.Get()
	if c.IsEmpty() {
		return nil, s.fail("validating", domain.Invalid(op, "cart is empty"))
	}
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			return nil, s.fail("validating", domain.Invalid(op, "cart contains an item with no quantity"))
		}
		if item.Price.IsNegative() {
			return nil, s.fail("validating", domain.Invalid(op, "cart contains an item with a negative price"))
		}
	}

	quote := pricing.Reconcile(c, nil, s.shippingEstimate())
	if quote.Total.IsNegative() {
		return nil, s.fail("validating", domain.Invalid(op, "order total is invalid"))
	}

	// TradeRecording. The proposal row is written before the ad flips to
	// traded; if the flip fails the proposal stands and the failure is
	// surfaced for manual resolution. No rollback.
	if c.TradeIn != nil {
		s.setState(StateTradeRecord)

		target, ok := c.FirstStoreItem()
		if !ok {
			return nil, s.fail("trade_recording", domain.Invalid(op, "trade-in requires a store product in the cart"))
		}

		proposal := tradeProposalRow{
			UserID:         userID,
			StoreProductID: target.ID,
			AdID:           c.TradeIn.AdID,
		}
		if err := s.client.Insert(ctx, backend.CollectionTradeProposals, proposal, nil); err != nil {
			return nil, s.fail("trade_recording", domain.Remote(err, op, "failed to record trade proposal"))
		}

		if err := s.ads.SetStatus(ctx, c.TradeIn.AdID, domain.AdStatusTraded); err != nil {
			return nil, s.fail("trade_recording", domain.Remote(err, op, "failed to mark ad as traded"))
		}
	}

	// Creating. Order header first so line items have an id to hang off.
	s.setState(StateCreating)

	var created orderRow
	header := orderRow{UserID: userID, TotalValue: quote.Total}
	if err := s.client.Insert(ctx, backend.CollectionOrders, header, &created); err != nil {
		return nil, s.fail("creating", domain.Remote(err, op, "failed to create order"))
	}

	for _, item := range c.Items {
		row := orderItemRow{
			OrderID:     created.ID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		}
		id := item.ID
		switch item.Type {
		case domain.ItemTypeStore:
			row.StoreProductID = &id
		case domain.ItemTypeMarketplace:
			row.MarketplaceAdID = &id
		}
		if err := s.client.Insert(ctx, backend.CollectionOrderItems, row, nil); err != nil {
			return nil, s.fail("creating", domain.Remote(err, op, "failed to record order items"))
		}
	}

	// Clearing. The order exists; local session cleanup failing is logged
	// but never turns a placed order into an error.
	s.setState(StateClearing)

	if err := s.carts.Clear(); err != nil {
		s.logger.Warn("failed to clear cart after checkout", "order_id", created.ID, "error", err)
	}
	if s.cache != nil {
		if err := s.cache.Evict(); err != nil {
			s.logger.Warn("failed to evict shipping address after checkout", "order_id", created.ID, "error", err)
		}
	}

	s.setState(StateDone)

	if s.metrics != nil {
		s.metrics.CheckoutCompleted.Inc()
		s.metrics.OrdersCreated.Inc()
		value, _ := quote.Total.Float64()
		s.metrics.OrderValue.Observe(value)
		s.metrics.OrderItemCount.Observe(float64(c.ItemCount()))
	}

	s.logger.Info("order placed",
		"order_id", created.ID,
		"user_id", userID,
		"total", quote.Total,
		"items", len(c.Items),
		"trade_in", c.TradeIn != nil,
	)

	return &Receipt{OrderID: created.ID, Total: quote.Total}, nil
}

func (s *service) History(ctx context.Context, userID string) ([]domain.Order, error) {
	const op = "checkout.history"

	var headers []orderRow
	q := backend.Query{
		Filters:    map[string]string{"user_id": userID},
		Sort:       "created_at",
		Descending: true,
	}
	if err := s.client.Select(ctx, backend.CollectionOrders, q, &headers); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load order history")
	}

	orders := make([]domain.Order, len(headers))
	for i, h := range headers {
		var itemRows []orderItemRow
		iq := backend.Query{Filters: map[string]string{"order_id": strconv.FormatInt(h.ID, 10)}}
		if err := s.client.Select(ctx, backend.CollectionOrderItems, iq, &itemRows); err != nil {
			return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load order items")
		}

		items := make([]domain.OrderItem, len(itemRows))
		for j, r := range itemRows {
			items[j] = domain.OrderItem{
				OrderID:         r.OrderID,
				StoreProductID:  r.StoreProductID,
				MarketplaceAdID: r.MarketplaceAdID,
				ProductName:     r.ProductName,
				Quantity:        r.Quantity,
				UnitPrice:       r.UnitPrice,
			}
		}

		orders[i] = domain.Order{
			ID:         h.ID,
			UserID:     h.UserID,
			TotalValue: h.TotalValue,
			CreatedAt:  h.CreatedAt,
			Items:      items,
		}
	}

	return orders, nil
}

func (s *service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *service) OnTransition(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition = fn
}

// shippingEstimate reads the cached address's locked shipping option, if any.
func (s *service) shippingEstimate() *shipping.Estimate {
	if s.cache == nil {
		return nil
	}
	addr, ok := s.cache.Get()
	if !ok || addr.ShippingOption == nil {
		return nil
	}
	return addr.ShippingOption
}

func (s *service) setState(state State) {
	s.mu.Lock()
	s.state = state
	fn := s.transition
	s.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

// fail transitions to StateFailed, counts the step, and passes the error
// through.
func (s *service) fail(step string, err error) error {
	s.setState(StateFailed)
	if s.metrics != nil {
		s.metrics.CheckoutFailed.WithLabelValues(step).Inc()
	}
	s.logger.Error("checkout failed", "step", step, "error", err)
	return err
}
