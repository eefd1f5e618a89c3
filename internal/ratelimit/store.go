package ratelimit

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is the per-client counter for the current window.
type Entry struct {
	WindowStart time.Time
	Count       int
}

// Store holds entries keyed by client identity. Update must run fn atomically
// with respect to other updates of the same key.
type Store interface {
	Update(key string, fn func(e Entry, ok bool) Entry) Entry
}

// DefaultMaxKeys bounds the number of tracked clients in MemoryStore.
const DefaultMaxKeys = 10000

// MemoryStore keeps entries in a bounded LRU. The least recently seen client
// is evicted when full, which at worst resets that client's window.
type MemoryStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, Entry]
}

func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	c, err := lru.New[string, Entry](maxKeys)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Update(key string, fn func(e Entry, ok bool) Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.cache.Get(key)
	next := fn(cur, ok)
	s.cache.Add(key, next)
	return next
}

// size reports the number of tracked clients.
func (s *MemoryStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
