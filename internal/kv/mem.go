package kv

// MemStore is an in-memory Store for tests.
type MemStore struct {
	values map[string][]byte

	// PutErr, when set, is returned by every Put. Lets tests exercise the
	// save-failure path without a filesystem.
	PutErr error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, bool, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (s *MemStore) Put(key string, value []byte) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.values[key] = cp
	return nil
}

func (s *MemStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}
