package offline

import (
	"net/http"
	"sync"
	"time"
)

// Entry is one cached response: the payload plus the moment it was
// stored and how long it stays valid. A zero TTL means the entry never
// expires (static assets).
type Entry struct {
	Data      []byte
	Header    http.Header
	Status    int
	Timestamp time.Time
	TTL       time.Duration
}

// valid reports whether the entry may still be served at now. Entries
// expire exactly at Timestamp+TTL: age < TTL is valid, age >= TTL is
// not.
func (e Entry) valid(now time.Time) bool {
	if e.TTL == 0 {
		return true
	}
	return now.Sub(e.Timestamp) < e.TTL
}

// Cache stores responses under generation-scoped names.
//
// Two stores exist per generation: "static-<gen>" for assets and
// "dynamic-<gen>" for API responses. Switching generations via
// Activate drops every store belonging to another generation, which is
// how a gateway upgrade invalidates old assets wholesale.
//
// Expired entries are rejected on read, never proactively evicted.
type Cache struct {
	generation string
	now        func() time.Time

	mu     sync.RWMutex
	stores map[string]map[string]Entry
}

// NewCache creates a cache for the given generation name.
func NewCache(generation string) *Cache {
	return &Cache{
		generation: generation,
		now:        time.Now,
		stores:     make(map[string]map[string]Entry),
	}
}

// Generation returns the active generation name.
func (c *Cache) Generation() string {
	return c.generation
}

func (c *Cache) staticStore() string  { return "static-" + c.generation }
func (c *Cache) dynamicStore() string { return "dynamic-" + c.generation }

// PutStatic stores a never-expiring entry in the static store.
func (c *Cache) PutStatic(key string, e Entry) {
	e.Timestamp = c.now()
	e.TTL = 0
	c.put(c.staticStore(), key, e)
}

// PutDynamic stores an entry in the dynamic store with the given TTL.
func (c *Cache) PutDynamic(key string, e Entry, ttl time.Duration) {
	e.Timestamp = c.now()
	e.TTL = ttl
	c.put(c.dynamicStore(), key, e)
}

func (c *Cache) put(store, key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.stores[store]
	if !ok {
		entries = make(map[string]Entry)
		c.stores[store] = entries
	}
	entries[key] = e
}

// GetStatic looks up a static entry.
func (c *Cache) GetStatic(key string) (Entry, bool) {
	return c.get(c.staticStore(), key)
}

// GetDynamic looks up a dynamic entry, rejecting it lazily when its
// TTL has run out. The expired entry stays in place; it is only
// unreadable.
func (c *Cache) GetDynamic(key string) (Entry, bool) {
	return c.get(c.dynamicStore(), key)
}

func (c *Cache) get(store, key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.stores[store][key]
	if !ok || !e.valid(c.now()) {
		return Entry{}, false
	}
	return e, true
}

// Activate drops every store that does not belong to the active
// generation. Called once on startup, mirroring cache cleanup on a
// version change.
func (c *Cache) Activate() {
	keep := map[string]bool{c.staticStore(): true, c.dynamicStore(): true}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.stores {
		if !keep[name] {
			delete(c.stores, name)
		}
	}
}

// AdoptStores injects stores from a previous generation. Used when
// rehydrating persisted cache state before Activate sweeps it.
func (c *Cache) AdoptStores(stores map[string]map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, entries := range stores {
		c.stores[name] = entries
	}
}

// Clear removes all entries of the active generation.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stores, c.staticStore())
	delete(c.stores, c.dynamicStore())
}

// Len reports how many entries the active generation holds.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stores[c.staticStore()]) + len(c.stores[c.dynamicStore()])
}
