// Package cache provides a caller-owned read-through TTL cache in front of
// a property store.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/store"
)

// DefaultTTL is how long a cached read stays fresh.
const DefaultTTL = 60 * time.Second

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type entry[T any] struct {
	value    T
	cachedAt time.Time
}

// Stats contains cache performance statistics.
type Stats struct {
	Properties int     `json:"properties"`
	Documents  int     `json:"documents"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// Store decorates a store.Store, caching property and document reads per
// property ID. Writes go straight through and invalidate the affected
// entries. Failed reads are never cached.
type Store struct {
	next  store.Store
	clock Clock
	ttl   time.Duration

	mu         sync.RWMutex
	properties map[string]entry[*model.Property]
	documents  map[string]entry[[]model.ForensicDocument]
	// gens counts invalidations per property ID and epoch counts
	// InvalidateAll calls. A read only stores its result when neither moved
	// while it was fetching.
	gens       map[string]uint64
	epoch      uint64

	hits   atomic.Int64
	misses atomic.Int64
}

var _ store.Store = (*Store)(nil)

// New wraps next. A nil clock means the wall clock; ttl <= 0 means DefaultTTL.
func New(next store.Store, clock Clock, ttl time.Duration) *Store {
	if clock == nil {
		clock = SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		next:       next,
		clock:      clock,
		ttl:        ttl,
		properties: make(map[string]entry[*model.Property]),
		documents:  make(map[string]entry[[]model.ForensicDocument]),
		gens:       make(map[string]uint64),
	}
}

func (c *Store) fresh(cachedAt time.Time) bool {
	return c.clock.Now().Sub(cachedAt) < c.ttl
}

// generation returns the invalidation state of id.
func (c *Store) generation(id string) (gen, epoch uint64) {
	return c.gens[id], c.epoch
}

// GetProperty returns a deep copy of the cached property when fresh.
func (c *Store) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	c.mu.RLock()
	e, ok := c.properties[id]
	gen, epoch := c.generation(id)
	c.mu.RUnlock()
	if ok && c.fresh(e.cachedAt) {
		c.hits.Add(1)
		return e.value.Clone(), nil
	}
	c.misses.Add(1)

	p, err := c.next.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if g, ep := c.generation(id); g == gen && ep == epoch {
		c.properties[id] = entry[*model.Property]{value: p.Clone(), cachedAt: c.clock.Now()}
	}
	c.mu.Unlock()
	return p, nil
}

// ListDocuments returns the cached documents of a property when fresh.
func (c *Store) ListDocuments(ctx context.Context, propertyID string) ([]model.ForensicDocument, error) {
	c.mu.RLock()
	e, ok := c.documents[propertyID]
	gen, epoch := c.generation(propertyID)
	c.mu.RUnlock()
	if ok && c.fresh(e.cachedAt) {
		c.hits.Add(1)
		return model.CloneDocuments(e.value), nil
	}
	c.misses.Add(1)

	docs, err := c.next.ListDocuments(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if g, ep := c.generation(propertyID); g == gen && ep == epoch {
		c.documents[propertyID] = entry[[]model.ForensicDocument]{
			value:    model.CloneDocuments(docs),
			cachedAt: c.clock.Now(),
		}
	}
	c.mu.Unlock()
	return docs, nil
}

// ListProperties is not cached.
func (c *Store) ListProperties(ctx context.Context) ([]*model.Property, error) {
	return c.next.ListProperties(ctx)
}

func (c *Store) SaveProperty(ctx context.Context, p *model.Property) error {
	err := c.next.SaveProperty(ctx, p)
	c.Invalidate(p.ID)
	return err
}

func (c *Store) SaveProperties(ctx context.Context, props []*model.Property) (int64, error) {
	n, err := c.next.SaveProperties(ctx, props)
	for _, p := range props {
		if p != nil {
			c.Invalidate(p.ID)
		}
	}
	return n, err
}

func (c *Store) SaveDocument(ctx context.Context, d *model.ForensicDocument) error {
	err := c.next.SaveDocument(ctx, d)
	c.Invalidate(d.PropertyID)
	return err
}

func (c *Store) SaveDocuments(ctx context.Context, docs []model.ForensicDocument) (int64, error) {
	n, err := c.next.SaveDocuments(ctx, docs)
	for _, d := range docs {
		c.Invalidate(d.PropertyID)
	}
	return n, err
}

func (c *Store) SaveValuation(ctx context.Context, propertyID string, snap model.ValuationSnapshot) error {
	err := c.next.SaveValuation(ctx, propertyID, snap)
	c.Invalidate(propertyID)
	return err
}

func (c *Store) Migrate(ctx context.Context) error { return c.next.Migrate(ctx) }

func (c *Store) Close() error { return c.next.Close() }

// Invalidate drops every entry cached for a property.
func (c *Store) Invalidate(id string) {
	c.mu.Lock()
	delete(c.properties, id)
	delete(c.documents, id)
	c.gens[id]++
	c.mu.Unlock()
}

// InvalidateAll empties the cache.
func (c *Store) InvalidateAll() {
	c.mu.Lock()
	c.properties = make(map[string]entry[*model.Property])
	c.documents = make(map[string]entry[[]model.ForensicDocument])
	c.gens = make(map[string]uint64)
	c.epoch++
	c.mu.Unlock()
}

// Stats returns current cache statistics.
func (c *Store) Stats() Stats {
	c.mu.RLock()
	s := Stats{Properties: len(c.properties), Documents: len(c.documents)}
	c.mu.RUnlock()
	s.Hits = c.hits.Load()
	s.Misses = c.misses.Load()
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
