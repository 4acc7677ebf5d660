package kv

import "encoding/json"

// SchemaVersion is the current version tag written on every persisted blob.
// Bump it when a stored shape changes and add a migration in Load.
const SchemaVersion = 1

// Envelope wraps every persisted value with a schema version so future shape
// changes can be migrated on read instead of silently misparsed.
type Envelope struct {
	Version int             `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// Load reads key from the store and unmarshals its payload into out.
// Returns false (and leaves out untouched) when the key is absent, the blob
// is unparseable, or the version is unknown -- callers fall back to their
// default value, they never fail.
func Load(s Store, key string, out interface{}) (bool, error) {
	data, ok, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false, nil
	}

	switch env.Version {
	case SchemaVersion:
		// Current shape.
	case 0:
		// Version 0 predates the envelope: the blob is the bare payload.
		env.Payload = data
	default:
		// Written by a newer client; treat as absent rather than misread it.
		return false, nil
	}

	if err := json.Unmarshal(env.Payload, out); err != nil {
		return false, nil
	}

	return true, nil
}

// Save marshals value, wraps it in a versioned envelope, and persists it
// under key.
func Save(s Store, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	data, err := json.Marshal(Envelope{Version: SchemaVersion, Payload: payload})
	if err != nil {
		return err
	}

	return s.Put(key, data)
}
