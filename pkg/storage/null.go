package storage

import "context"

// NullStore is a no-op store that never holds data.
// Sessions opened on it start empty every time.
type NullStore struct{}

// NewNullStore creates a store that discards everything.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullStore) Set(context.Context, string, []byte) error         { return nil }
func (NullStore) Delete(context.Context, string) error              { return nil }
func (NullStore) Close() error                                      { return nil }
