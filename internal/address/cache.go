package address

import (
	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/kv"
)

// Cache persists the session's resolved shipping address (and its chosen
// shipping estimate) for reuse at checkout. Order submission evicts it once
// the order it priced is committed.
type Cache struct {
	store kv.Store
}

// NewCache creates a cache over the given store.
func NewCache(store kv.Store) *Cache {
	return &Cache{store: store}
}

// Get returns the cached address, or false when none is cached or the blob
// is unreadable. Like the cart, a read never fails the caller.
func (c *Cache) Get() (*Address, bool) {
	var addr Address
	ok, err := kv.Load(c.store, kv.KeyShippingAddress, &addr)
	if err != nil || !ok {
		return nil, false
	}
	return &addr, true
}

// Put caches the address.
func (c *Cache) Put(addr Address) error {
	if err := kv.Save(c.store, kv.KeyShippingAddress, addr); err != nil {
		return domain.Internal(err, "address.cache", "failed to persist shipping address")
	}
	return nil
}

// Evict drops the cached address.
func (c *Cache) Evict() error {
	return c.store.Delete(kv.KeyShippingAddress)
}
