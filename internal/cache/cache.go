// Package cache provides a content-addressed, in-memory cache for
// compiled modules, keyed by a BLAKE2b-256 hash of the canonically
// CBOR-encoded source text — the same hash-then-key shape
// core/planfmt uses for plan digests, swapping plan structs for
// resolver source text since this package has no execution tree of
// its own to canonicalize.
package cache

import (
	"encoding/hex"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/opal-lang/jaq/ir"
)

// Key identifies a compiled module by the content of its source.
type Key string

// KeyOf derives the Key for a source string. Two sources with identical
// bytes always derive the same Key; this is the whole point.
func KeyOf(source string) (Key, error) {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return "", err
	}
	payload, err := enc.Marshal(source)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(payload)
	return Key("jaq:" + hex.EncodeToString(sum[:])), nil
}

// Entry is one cached compile_module result.
type Entry struct {
	Table []*ir.Filter
	Top   *ir.Filter
}

// Cache is a concurrency-safe, never-evicting compiled-module cache.
// Safe for concurrent Get/Put from multiple compilations, per §5's
// requirement that independent compilations share no mutable state
// except through collaborators the host explicitly opts into, like
// this one.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*Entry)}
}

// Get returns the cached entry for key, if present.
func (c *Cache) Get(key Key) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Put stores entry under key, overwriting any previous value.
func (c *Cache) Put(key Key, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}
