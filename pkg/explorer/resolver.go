package explorer

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/orbit/pkg/cache"
	"github.com/matzehuels/orbit/pkg/observability"
)

// StaticResolver serves child names from a fixed table keyed by topic
// name. It backs tests, examples, and the offline explore TUI; topics
// absent from the table resolve to an empty list (a leaf).
type StaticResolver struct {
	children map[string][]string
}

// NewStaticResolver creates a resolver over a fixed name table.
func NewStaticResolver(children map[string][]string) *StaticResolver {
	return &StaticResolver{children: children}
}

// ResolveChildren returns the configured names for a topic.
func (r *StaticResolver) ResolveChildren(ctx context.Context, name string, ancestors []string) ([]string, error) {
	return r.children[name], nil
}

// Ensure StaticResolver implements Resolver.
var _ Resolver = (*StaticResolver)(nil)

// CachingResolver wraps a Resolver with a cache so repeat visits to the
// same topic skip the underlying fetch. The key covers the topic name
// and its ancestor chain, since the same name can resolve differently
// under different parents. Cache failures fall through to the inner
// resolver; a degraded cache must never block exploration.
type CachingResolver struct {
	inner Resolver
	cache cache.Cache
	keyer cache.Keyer
}

// NewCachingResolver decorates inner with store. A nil keyer takes the
// default key generator.
func NewCachingResolver(inner Resolver, store cache.Cache, keyer cache.Keyer) *CachingResolver {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachingResolver{inner: inner, cache: store, keyer: keyer}
}

// ResolveChildren serves from cache when possible, otherwise resolves
// through the inner resolver and stores the result.
func (r *CachingResolver) ResolveChildren(ctx context.Context, name string, ancestors []string) ([]string, error) {
	key := r.keyer.ResolveKey(name, cache.ResolveKeyOpts{Ancestors: ancestors})

	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		var names []string
		if err := json.Unmarshal(data, &names); err == nil {
			observability.Cache().OnCacheHit(ctx, "resolve")
			return names, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "resolve")

	names, err := r.inner.ResolveChildren(ctx, name, ancestors)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(names); err == nil {
		if err := r.cache.Set(ctx, key, data, cache.TTLResolve); err == nil {
			observability.Cache().OnCacheSet(ctx, "resolve", len(data))
		}
	}
	return names, nil
}

// Ensure CachingResolver implements Resolver.
var _ Resolver = (*CachingResolver)(nil)
