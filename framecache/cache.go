/*
NAME
  cache.go

DESCRIPTION
  cache.go implements FrameCache, a single-level content-hash keyed cache:
  one Entry holds a frame's decoded frame.FrameRecord and block.CodingUnit
  data together, with no separate per-frame and per-tile level and no
  hot/cold tiers. Entries are keyed by a content hash of the source bytes
  alone (no QP is mixed into the key), bounded to a default of 16
  entries with least-recently-used eviction, falling back to uncached
  recomputation when the cache is poisoned rather than failing the
  caller.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package framecache provides a bounded, content-hash-keyed cache of
// decoded per-frame data. engine.AV1GridPipeline uses it so that a frame
// seen again is not walked again when its overlay grids are rebuilt.
package framecache

import (
	"container/list"
	"crypto/sha256"
	"sync"

	"github.com/hawk90/bitvue-sub000/block"
	"github.com/hawk90/bitvue-sub000/frame"
)

// DefaultCapacity is the default number of entries retained before the
// least-recently-used entry is evicted.
const DefaultCapacity = 16

// Key is a content hash of the source bytes a cache entry was computed
// from.
type Key [sha256.Size]byte

// HashKey derives a Key from a byte slice: the SHA-256 of exactly those
// bytes. engine.AV1GridPipeline passes a frame OBU's payload.
func HashKey(b []byte) Key { return sha256.Sum256(b) }

// Entry is the cached payload for one frame.
type Entry struct {
	Record *frame.FrameRecord
	Units  []*block.CodingUnit
}

// FrameCache is a mutex-guarded, bounded LRU cache of Entry by Key. The
// mutex makes one FrameCache safe to share between goroutines.
type FrameCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[Key]*list.Element
	order    *list.List // front = most recently used
	poisoned bool
}

type node struct {
	key   Key
	entry Entry
}

// New returns an empty FrameCache with the given capacity (DefaultCapacity
// if capacity <= 0).
func New(capacity int) *FrameCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FrameCache{
		capacity: capacity,
		entries:  make(map[Key]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached entry for key, if present, and moves it to the
// front of the LRU order. If the cache has been marked poisoned, Get
// always reports a miss so callers fall back to recomputing.
func (c *FrameCache) Get(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poisoned {
		return Entry{}, false
	}
	el, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*node).entry, true
}

// Put inserts or updates the entry for key, evicting the least recently
// used entry if the cache is at capacity.
func (c *FrameCache) Put(key Key, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*node).entry = entry
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&node{key: key, entry: entry})
	c.entries[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*node).key)
	}
}

// Poison marks the cache as unusable for future reads: all subsequent
// Get calls report a miss (forcing callers to recompute) until Reset is
// called. Poisoning is sticky per spec's CachePoisoned behavior: a
// partially-corrupted cache must not silently serve stale or inconsistent
// entries for the rest of a parse.
func (c *FrameCache) Poison() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.poisoned = true
}

// Poisoned reports whether the cache has been poisoned.
func (c *FrameCache) Poisoned() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.poisoned
}

// Reset clears the cache and its poisoned state.
func (c *FrameCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*list.Element)
	c.order = list.New()
	c.poisoned = false
}

// Len returns the current number of cached entries.
func (c *FrameCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
