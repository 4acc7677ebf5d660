package backend

import (
	"context"
	"sync"
)

// Call records one request made against a Mock, in arrival order.
type Call struct {
	Method     string
	Collection string
	Query      Query
	Filters    map[string]string
	Payload    interface{}
}

// Mock implements Client with injectable behavior for tests. Every request
// is recorded in Calls before the injected function runs, so tests can
// assert on write ordering even when a step fails.
type Mock struct {
	mu    sync.Mutex
	Calls []Call

	SelectFunc func(ctx context.Context, collection string, q Query, dest interface{}) error
	InsertFunc func(ctx context.Context, collection string, payload interface{}, dest interface{}) error
	UpdateFunc func(ctx context.Context, collection string, filters map[string]string, payload interface{}) error
}

func (m *Mock) Select(ctx context.Context, collection string, q Query, dest interface{}) error {
	m.record(Call{Method: "select", Collection: collection, Query: q})
	if m.SelectFunc == nil {
		return nil
	}
	return m.SelectFunc(ctx, collection, q, dest)
}

func (m *Mock) Insert(ctx context.Context, collection string, payload interface{}, dest interface{}) error {
	m.record(Call{Method: "insert", Collection: collection, Payload: payload})
	if m.InsertFunc == nil {
		return nil
	}
	return m.InsertFunc(ctx, collection, payload, dest)
}

func (m *Mock) Update(ctx context.Context, collection string, filters map[string]string, payload interface{}) error {
	m.record(Call{Method: "update", Collection: collection, Filters: filters, Payload: payload})
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, collection, filters, payload)
}

// CallsTo returns the recorded calls against one collection.
func (m *Mock) CallsTo(collection string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Call
	for _, c := range m.Calls {
		if c.Collection == collection {
			out = append(out, c)
		}
	}
	return out
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, c)
}
