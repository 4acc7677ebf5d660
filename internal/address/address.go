// Package address resolves destination addresses from 8-digit postal codes
// via an external lookup service, and caches the session's resolved shipping
// address for reuse at checkout.
package address

import (
	"context"
	"strings"

	"github.com/lanternfox/storefront/internal/domain"
	"github.com/lanternfox/storefront/internal/shipping"
)

// Lookup resolves a full address from a postal code.
// Implementations perform network I/O; the shipping estimator never does.
type Lookup interface {
	// ByPostalCode resolves an 8-digit postal code to an address.
	// Returns ENOTFOUND when the service does not know the code.
	ByPostalCode(ctx context.Context, code string) (*Address, error)
}

// Address is a resolved destination, optionally carrying the shipping
// estimate chosen for it. It is cached session-scoped for checkout reuse.
type Address struct {
	PostalCode   string `json:"postalCode"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`

	ShippingOption *shipping.Estimate `json:"shippingOption,omitempty"`
}

// Prefix returns the two-digit regional prefix of the postal code.
func (a Address) Prefix() string {
	digits := OnlyDigits(a.PostalCode)
	if len(digits) < 2 {
		return ""
	}
	return digits[:2]
}

// Domain errors.
var (
	ErrInvalidCode = domain.Errorf(domain.EINVALID, "address", "Postal code must have exactly 8 digits")
	ErrNotFound    = domain.Errorf(domain.ENOTFOUND, "address", "Postal code not found")
)

// OnlyDigits strips everything but ASCII digits from s.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCode reports whether code contains exactly 8 digits, ignoring
// punctuation.
func ValidCode(code string) bool {
	return len(OnlyDigits(code)) == 8
}

// Format renders an 8-digit code as 12345-678. Invalid input is returned
// unchanged.
func Format(code string) string {
	digits := OnlyDigits(code)
	if len(digits) != 8 {
		return code
	}
	return digits[:5] + "-" + digits[5:]
}
