package address_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternfox/storefront/internal/address"
	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/kv"
	"github.com/lanternfox/storefront/internal/shipping"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "01310-100", address.Format("01310100"))
	assert.Equal(t, "01310-100", address.Format("01310-100"))
	assert.Equal(t, "123", address.Format("123"), "invalid input passes through")
}

func TestValidCode(t *testing.T) {
	assert.True(t, address.ValidCode("01310100"))
	assert.True(t, address.ValidCode("01310-100"))
	assert.False(t, address.ValidCode("0131010"))
	assert.False(t, address.ValidCode("013101000"))
	assert.False(t, address.ValidCode("abcdefgh"))
}

func TestPrefix(t *testing.T) {
	a := address.Address{PostalCode: "30130-010"}
	assert.Equal(t, "30", a.Prefix())

	assert.Equal(t, "", address.Address{PostalCode: "x"}.Prefix())
}

func TestHTTPLookup_ResolvesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/01310100/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"Sao Paulo","uf":"SP"}`))
	}))
	defer srv.Close()

	lookup := address.NewHTTPLookup(srv.URL, time.Second)
	addr, err := lookup.ByPostalCode(context.Background(), "01310-100")

	require.NoError(t, err)
	assert.Equal(t, "01310-100", addr.PostalCode)
	assert.Equal(t, "Avenida Paulista", addr.Street)
	assert.Equal(t, "Bela Vista", addr.Neighborhood)
	assert.Equal(t, "Sao Paulo", addr.City)
	assert.Equal(t, "SP", addr.State)
	assert.Equal(t, "01", addr.Prefix())
}

func TestHTTPLookup_UnknownCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro":true}`))
	}))
	defer srv.Close()

	lookup := address.NewHTTPLookup(srv.URL, time.Second)
	_, err := lookup.ByPostalCode(context.Background(), "99999999")

	assert.ErrorIs(t, err, address.ErrNotFound)
}

func TestHTTPLookup_InvalidCode_NoRequest(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	lookup := address.NewHTTPLookup(srv.URL, time.Second)
	_, err := lookup.ByPostalCode(context.Background(), "123")

	assert.ErrorIs(t, err, address.ErrInvalidCode)
	assert.False(t, called, "invalid codes must not reach the network")
}

func TestHTTPLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	lookup := address.NewHTTPLookup(srv.URL, time.Second)
	_, err := lookup.ByPostalCode(context.Background(), "01310100")

	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestCache_RoundTripAndEvict(t *testing.T) {
	store := kv.NewMemStore()
	cache := address.NewCache(store)

	_, ok := cache.Get()
	assert.False(t, ok)

	addr := address.Address{
		PostalCode:   "01310-100",
		Street:       "Avenida Paulista",
		City:         "Sao Paulo",
		State:        "SP",
		ShippingOption: &shipping.Estimate{
			Cost:    decimal.RequireFromString("7.50"),
			Days:    6,
			Service: shipping.ServiceStandardGround,
		},
	}
	require.NoError(t, cache.Put(addr))

	got, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, addr.PostalCode, got.PostalCode)
	require.NotNil(t, got.ShippingOption)
	assert.True(t, got.ShippingOption.Cost.Equal(decimal.RequireFromString("7.50")))

	require.NoError(t, cache.Evict())
	_, ok = cache.Get()
	assert.False(t, ok)
}

func TestCache_CorruptBlob_ReadsAsAbsent(t *testing.T) {
	store := kv.NewMemStore()
	require.NoError(t, store.Put(kv.KeyShippingAddress, []byte("][")))
	cache := address.NewCache(store)

	_, ok := cache.Get()
	assert.False(t, ok)
}
