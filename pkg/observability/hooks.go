// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout computation, child-name fetches, and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (Prometheus, OpenTelemetry, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetFetchHooks(&myFetchHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnLayoutStart(ctx, center, childCount)
//	// ... relax positions ...
//	observability.Layout().OnLayoutComplete(ctx, center, childCount, duration, memoized)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout computation.
type LayoutHooks interface {
	// OnLayoutStart records the beginning of a relaxation run.
	OnLayoutStart(ctx context.Context, center string, childCount int)

	// OnLayoutComplete records a finished layout. memoized reports whether
	// the result was served from the engine's memo without relaxation.
	OnLayoutComplete(ctx context.Context, center string, childCount int, duration time.Duration, memoized bool)
}

// =============================================================================
// Fetch Hooks
// =============================================================================

// FetchHooks receives events from child-name resolution.
type FetchHooks interface {
	// OnFetchStart records an outgoing resolve for a path.
	OnFetchStart(ctx context.Context, path string)

	// OnFetchComplete records a finished resolve.
	OnFetchComplete(ctx context.Context, path string, nameCount int, duration time.Duration, err error)

	// OnFetchDiscarded records a resolve whose result was stale on arrival
	// (the tree was replaced while the fetch was outstanding).
	OnFetchDiscarded(ctx context.Context, path string)

	// OnFetchDeduped records a resolve that was skipped because one for the
	// same path was already in flight.
	OnFetchDeduped(ctx context.Context, path string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int) {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, time.Duration, bool) {
}

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnFetchStart(context.Context, string)                               {}
func (NoopFetchHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopFetchHooks) OnFetchDiscarded(context.Context, string)                           {}
func (NoopFetchHooks) OnFetchDeduped(context.Context, string)                             {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	fetchHooks  FetchHooks  = NoopFetchHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	hooksMu     sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout runs.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetFetchHooks registers custom fetch hooks.
// This should be called once at application startup before any fetches.
func SetFetchHooks(h FetchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fetchHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fetchHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	fetchHooks = NoopFetchHooks{}
	cacheHooks = NoopCacheHooks{}
}
