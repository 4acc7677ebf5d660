package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternfox/storefront/internal/cart"
	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/kv"
)

func newService(t *testing.T) (cart.Service, *kv.MemStore) {
	t.Helper()
	store := kv.NewMemStore()
	return cart.NewService(store, nil, nil), store
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestGet_EmptyStore_ReturnsEmptyCart(t *testing.T) {
	svc, _ := newService(t)

	c := svc.Get()

	assert.NotNil(t, c.Items)
	assert.Empty(t, c.Items)
	assert.Nil(t, c.TradeIn)
}

func TestGet_CorruptBlob_ReturnsEmptyCart(t *testing.T) {
	store := kv.NewMemStore()
	require.NoError(t, store.Put(kv.KeyCart, []byte("{not json")))
	svc := cart.NewService(store, nil, nil)

	c := svc.Get()

	assert.Empty(t, c.Items)
	assert.Nil(t, c.TradeIn)
}

func TestGet_UnknownFutureVersion_ReturnsEmptyCart(t *testing.T) {
	store := kv.NewMemStore()
	require.NoError(t, store.Put(kv.KeyCart, []byte(`{"version":99,"payload":{"items":[{"uniqueId":"store:1"}]}}`)))
	svc := cart.NewService(store, nil, nil)

	c := svc.Get()

	assert.Empty(t, c.Items)
}

func TestAdd_NewItem_AppendsLineWithQuantityOne(t *testing.T) {
	svc, _ := newService(t)

	c, err := svc.Add(cart.ItemDetails{
		ID:    7,
		Type:  domain.ItemTypeStore,
		Name:  "Headset",
		Price: dec("199.90"),
	})

	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "store:7", c.Items[0].UniqueID)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.True(t, c.Items[0].Price.Equal(decimal.RequireFromString("199.90")))
}

func TestAdd_SameKeyTwice_IncrementsQuantity(t *testing.T) {
	svc, _ := newService(t)
	details := cart.ItemDetails{ID: 7, Type: domain.ItemTypeStore, Name: "Headset", Price: dec("199.90")}

	_, err := svc.Add(details)
	require.NoError(t, err)
	c, err := svc.Add(details)
	require.NoError(t, err)

	require.Len(t, c.Items, 1, "same (type, id) must not duplicate the line")
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 2, c.ItemCount())
}

func TestAdd_SameIDDifferentTypes_DistinctLines(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeStore, Name: "Headset", Price: dec("199.90")})
	require.NoError(t, err)
	c, err := svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeMarketplace, Name: "Used headset", SuggestedPrice: dec("80.00")})
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, "store:7", c.Items[0].UniqueID)
	assert.Equal(t, "marketplace:7", c.Items[1].UniqueID)
}

func TestAdd_PricePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		details cart.ItemDetails
		want    string
	}{
		{
			name: "promotional price wins when flagged",
			details: cart.ItemDetails{
				ID: 1, Type: domain.ItemTypeStore,
				OnPromotion:      true,
				PromotionalPrice: dec("79.90"),
				Price:            dec("99.90"),
				GenericPrice:     dec("98.00"),
			},
			want: "79.90",
		},
		{
			name: "promotional price ignored when not flagged",
			details: cart.ItemDetails{
				ID: 2, Type: domain.ItemTypeStore,
				OnPromotion:      false,
				PromotionalPrice: dec("79.90"),
				Price:            dec("99.90"),
			},
			want: "99.90",
		},
		{
			name: "explicit price beats generic price",
			details: cart.ItemDetails{
				ID: 3, Type: domain.ItemTypeStore,
				Price:        dec("50.00"),
				GenericPrice: dec("45.00"),
			},
			want: "50.00",
		},
		{
			name: "generic price beats suggested price",
			details: cart.ItemDetails{
				ID: 4, Type: domain.ItemTypeStore,
				GenericPrice:   dec("45.00"),
				SuggestedPrice: dec("40.00"),
			},
			want: "45.00",
		},
		{
			name: "suggested price is the last resort",
			details: cart.ItemDetails{
				ID: 5, Type: domain.ItemTypeMarketplace,
				SuggestedPrice: dec("40.00"),
			},
			want: "40.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t)

			c, err := svc.Add(tt.details)

			require.NoError(t, err)
			require.Len(t, c.Items, 1)
			assert.True(t, c.Items[0].Price.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", c.Items[0].Price, tt.want)
		})
	}
}

func TestAdd_NoResolvablePrice_Fails(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Add(cart.ItemDetails{ID: 1, Type: domain.ItemTypeStore, Name: "Mystery"})

	assert.ErrorIs(t, err, cart.ErrNoPriceToLock)
}

func TestAdd_InvalidType_Fails(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Add(cart.ItemDetails{ID: 1, Type: "auction", Price: dec("10.00")})

	assert.ErrorIs(t, err, cart.ErrInvalidType)
}

func TestUpdateQuantity_IncreaseAndDecrease(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)

	c, err := svc.UpdateQuantity("store:7", cart.Increase)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)

	c, err = svc.UpdateQuantity("store:7", cart.Decrease)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestUpdateQuantity_DecreaseAtOne_RemovesLine(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)

	c, err := svc.UpdateQuantity("store:7", cart.Decrease)

	require.NoError(t, err)
	assert.Empty(t, c.Items, "a quantity reaching zero must remove the line")

	// Quantity <= 0 never survives persistence.
	for _, item := range svc.Get().Items {
		assert.Greater(t, item.Quantity, 0)
	}
}

// Regression: the removal filter must match on the unique key. Filtering on
// the bare numeric id would also drop the other item type sharing that id.
func TestUpdateQuantity_RemovalFiltersByUniqueKey(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)
	_, err = svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeMarketplace, SuggestedPrice: dec("5.00")})
	require.NoError(t, err)

	c, err := svc.UpdateQuantity("store:7", cart.Decrease)

	require.NoError(t, err)
	require.Len(t, c.Items, 1, "only the store line may be removed")
	assert.Equal(t, "marketplace:7", c.Items[0].UniqueID)
}

func TestUpdateQuantity_UnknownKey_Fails(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.UpdateQuantity("store:404", cart.Increase)

	assert.ErrorIs(t, err, cart.ErrItemNotFound)
}

func TestUpdateQuantity_UnknownAction_Fails(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)

	_, err = svc.UpdateQuantity("store:7", "double")

	assert.ErrorIs(t, err, cart.ErrInvalidAction)
}

func TestRemove_ByExactKey(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(cart.ItemDetails{ID: 1, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)
	_, err = svc.Add(cart.ItemDetails{ID: 2, Type: domain.ItemTypeStore, Price: dec("20.00")})
	require.NoError(t, err)

	c, err := svc.Remove("store:1")

	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "store:2", c.Items[0].UniqueID)
}

func TestClear_ResetsToEmpty(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(cart.ItemDetails{ID: 1, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)
	_, err = svc.SetTradeIn(&domain.TradeIn{AdID: 9, AdTitle: "Old phone", Discount: decimal.RequireFromString("50.00")})
	require.NoError(t, err)

	require.NoError(t, svc.Clear())

	c := svc.Get()
	assert.Empty(t, c.Items)
	assert.Nil(t, c.TradeIn)
}

func TestSaveGet_RoundTripIsIdempotent(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Add(cart.ItemDetails{ID: 7, Type: domain.ItemTypeStore, Name: "Headset", Price: dec("199.90")})
	require.NoError(t, err)
	_, err = svc.SetTradeIn(&domain.TradeIn{AdID: 3, AdTitle: "Keyboard", Discount: decimal.RequireFromString("35.50")})
	require.NoError(t, err)

	first := svc.Get()
	require.NoError(t, svc.Save(first))
	second := svc.Get()

	assert.Equal(t, first, second)
}

func TestItemCount_SumsQuantities(t *testing.T) {
	svc, _ := newService(t)
	details := cart.ItemDetails{ID: 1, Type: domain.ItemTypeStore, Price: dec("10.00")}

	for i := 0; i < 3; i++ {
		_, err := svc.Add(details)
		require.NoError(t, err)
	}
	_, err := svc.Add(cart.ItemDetails{ID: 2, Type: domain.ItemTypeMarketplace, SuggestedPrice: dec("5.00")})
	require.NoError(t, err)

	assert.Equal(t, 4, svc.Get().ItemCount())
}

func TestSubscribe_NotifiedOnEveryMutation(t *testing.T) {
	svc, _ := newService(t)

	var calls int
	unsubscribe := svc.Subscribe(func() { calls++ })

	_, err := svc.Add(cart.ItemDetails{ID: 1, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)
	_, err = svc.UpdateQuantity("store:1", cart.Increase)
	require.NoError(t, err)
	require.NoError(t, svc.Clear())

	assert.Equal(t, 3, calls)

	unsubscribe()
	require.NoError(t, svc.Clear())
	assert.Equal(t, 3, calls, "unsubscribed listener must not fire")
}

func TestSubscribe_ListenerReReadsFreshState(t *testing.T) {
	svc, _ := newService(t)

	var seen int
	svc.Subscribe(func() { seen = svc.Get().ItemCount() })

	_, err := svc.Add(cart.ItemDetails{ID: 1, Type: domain.ItemTypeStore, Price: dec("10.00")})
	require.NoError(t, err)

	assert.Equal(t, 1, seen, "notification fires after the cart is persisted")
}
