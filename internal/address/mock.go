package address

import "context"

// MockLookup is a test implementation of Lookup.
type MockLookup struct {
	ByPostalCodeFunc func(ctx context.Context, code string) (*Address, error)
}

// ByPostalCode delegates to the configured function, or reports not found.
func (m *MockLookup) ByPostalCode(ctx context.Context, code string) (*Address, error) {
	if m.ByPostalCodeFunc != nil {
		return m.ByPostalCodeFunc(ctx, code)
	}
	return nil, ErrNotFound
}
