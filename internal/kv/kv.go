// Package kv provides the string-keyed blob persistence the storefront uses
// for session-local state: the cart and the cached shipping address. It
// stands in for the browser's local storage, so reads never fail the caller;
// missing or malformed data yields "absent".
package kv

// Well-known keys. These are fixed names; changing one orphans existing data.
const (
	KeyCart            = "cart"
	KeyShippingAddress = "shippingAddress"
)

// Store is a string-keyed blob store.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) ([]byte, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Removing an absent key is not an error.
	Delete(key string) error
}
