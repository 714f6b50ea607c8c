// Package storage provides key/value slots for persisting funnel state.
//
// An editing session keeps two slots per workspace: the graph document and
// the label counters. They are stored under separate keys (see [Slots]) so
// counters outlive a cleared or replaced graph.
//
// Backends:
//   - [FileStore]: one file per key under a directory (CLI default)
//   - [MemoryStore]: process-local map, for tests and ephemeral servers
//   - [NullStore]: discards writes, always misses
//   - [RedisStore]: Redis strings via go-redis
//   - [MongoStore]: one document per key in a MongoDB collection
//
// Every backend validates keys with [errors.ValidateSlotKey] and reports
// events to [observability.Storage].
//
// [errors.ValidateSlotKey]: github.com/matzehuels/funnelkit/pkg/errors.ValidateSlotKey
// [observability.Storage]: github.com/matzehuels/funnelkit/pkg/observability.Storage
package storage

import (
	"context"
	"time"

	"github.com/matzehuels/funnelkit/pkg/errors"
	"github.com/matzehuels/funnelkit/pkg/observability"
)

// Store is a flat key/value store for slot data.
//
// Get returns ok=false with a nil error when the key holds nothing.
// Delete of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by configuration.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendNull   = "null"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Slots names the storage keys of one workspace.
type Slots struct {
	Workspace string
}

// NewSlots validates the workspace name and returns its slots.
// An empty name selects "default".
func NewSlots(workspace string) (Slots, error) {
	if workspace == "" {
		workspace = "default"
	}
	if err := errors.ValidateWorkspace(workspace); err != nil {
		return Slots{}, err
	}
	return Slots{Workspace: workspace}, nil
}

// GraphKey is the slot holding the funnel document.
func (s Slots) GraphKey() string { return s.Workspace + "/graph" }

// CountersKey is the slot holding the label counters.
func (s Slots) CountersKey() string { return s.Workspace + "/counters" }

func checkKey(key string) error {
	if err := errors.ValidateSlotKey(key); err != nil {
		return err
	}
	return nil
}

func storageErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}

// instrumented reports every operation of a backend to the storage hooks.
type instrumented struct {
	backend string
	Store
}

// Instrument wraps s so loads and saves are reported under backend.
func Instrument(backend string, s Store) Store {
	return &instrumented{backend: backend, Store: s}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := i.Store.Get(ctx, key)
	observability.Storage().OnLoad(ctx, i.backend, key, ok, err)
	return data, ok, err
}

func (i *instrumented) Set(ctx context.Context, key string, data []byte) error {
	err := i.Store.Set(ctx, key, data)
	observability.Storage().OnSave(ctx, i.backend, key, len(data), err)
	return err
}

// entry is the envelope used by backends that store metadata next to data.
type entry struct {
	Data      []byte    `json:"data" bson:"data"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
