// Package store provides the key-value storage capability used by the
// security core (sessions, rate-limit records, CSRF tokens). The concrete
// medium is injected: Redis in production, an in-memory map in tests and
// single-node development. Consumers must treat a missing or corrupt value
// as "absent" rather than an error condition.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("store: key not found")

// KV is a minimal key-value store. Implementations are safe for concurrent
// use. Values are opaque byte slices; the security packages store JSON or
// raw hex strings in them.
type KV interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Namespace returns a view of kv in which every key is prefixed. Used to
// carve one browser-session scope (e.g. "scope:<id>:") out of a shared
// store so the session, rate-limit, and CSRF records of different visitors
// never collide.
func Namespace(kv KV, prefix string) KV {
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return &namespaced{kv: kv, prefix: prefix}
}

type namespaced struct {
	kv     KV
	prefix string
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.kv.Delete(ctx, n.prefix+key)
}
