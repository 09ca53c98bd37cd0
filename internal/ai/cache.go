package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
)

// DefaultCacheTTL bounds how long a provider answer is reused.
const DefaultCacheTTL = time.Hour

// Cache memoises provider answers keyed by provider and prompt. It is safe for
// concurrent use and is the only state shared across requests.
type Cache struct {
	store *ristretto.Cache
	ttl   time.Duration
}

// NewCache creates a cache holding up to roughly maxBytes of responses.
func NewCache(maxBytes int64, ttl time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{store: store, ttl: ttl}, nil
}

func cacheKey(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:])
}

func (c *Cache) get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *Cache) set(key string, value any, cost int64) {
	c.store.SetWithTTL(key, value, cost, c.ttl)
}

// Wait blocks until buffered writes are applied. Tests call it before reading.
func (c *Cache) Wait() { c.store.Wait() }

// Close stops the cache's background goroutines.
func (c *Cache) Close() { c.store.Close() }

type cachedGenerator struct {
	next  TextGenerator
	cache *Cache
}

// WithCache wraps a generator so identical prompts are answered from cache.
// Errors are never cached. A nil generator or cache is returned unchanged.
func WithCache(next TextGenerator, cache *Cache) TextGenerator {
	if next == nil || cache == nil {
		return next
	}
	return &cachedGenerator{next: next, cache: cache}
}

func (g *cachedGenerator) Name() string { return g.next.Name() }

func (g *cachedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	key := cacheKey("gen", g.next.Name(), prompt)
	if v, ok := g.cache.get(key); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	out, err := g.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	g.cache.set(key, out, int64(len(out)))
	return out, nil
}

type cachedClassifier struct {
	next  Classifier
	cache *Cache
}

// WithClassifierCache is WithCache for zero-shot classifiers.
func WithClassifierCache(next Classifier, cache *Cache) Classifier {
	if next == nil || cache == nil {
		return next
	}
	return &cachedClassifier{next: next, cache: cache}
}

func (c *cachedClassifier) Name() string { return c.next.Name() }

func (c *cachedClassifier) Classify(ctx context.Context, text string, labels []string) ([]Label, error) {
	key := cacheKey("cls", c.next.Name(), text, strings.Join(labels, "|"))
	if v, ok := c.cache.get(key); ok {
		if ls, ok := v.([]Label); ok {
			return ls, nil
		}
	}
	out, err := c.next.Classify(ctx, text, labels)
	if err != nil {
		return nil, err
	}
	c.cache.set(key, out, int64(len(out)*32))
	return out, nil
}
