// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about assembly runs, cache operations, and API calls.
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
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetAssemblyHooks(&myAssemblyHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Assembly().OnAlignStart(ctx, topologyName, slotCount)
//	// ... align slots ...
//	observability.Assembly().OnAlignComplete(ctx, topologyName, atomCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Assembly Hooks
// =============================================================================

// AssemblyHooks receives events from the framework assembly pipeline.
type AssemblyHooks interface {
	// Selection events
	OnSelectStart(ctx context.Context, topologyName string, candidateCount int)
	OnSelectComplete(ctx context.Context, topologyName string, slotCount int, duration time.Duration, err error)

	// Alignment events
	OnAlignStart(ctx context.Context, topologyName string, slotCount int)
	OnAlignComplete(ctx context.Context, topologyName string, atomCount int, duration time.Duration, err error)

	// Refinement events
	OnRefineStart(ctx context.Context, topologyName string, maxIterations int)
	OnRefineComplete(ctx context.Context, topologyName string, iterations int, converged bool, duration time.Duration)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP server operations.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP handler error.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopAssemblyHooks is a no-op implementation of AssemblyHooks.
type NoopAssemblyHooks struct{}

func (NoopAssemblyHooks) OnSelectStart(context.Context, string, int) {}
func (NoopAssemblyHooks) OnSelectComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopAssemblyHooks) OnAlignStart(context.Context, string, int)                          {}
func (NoopAssemblyHooks) OnAlignComplete(context.Context, string, int, time.Duration, error) {}
func (NoopAssemblyHooks) OnRefineStart(context.Context, string, int)                         {}
func (NoopAssemblyHooks) OnRefineComplete(context.Context, string, int, bool, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	assemblyHooks AssemblyHooks = NoopAssemblyHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetAssemblyHooks registers custom assembly hooks.
// This should be called once at application startup before any assembly operations.
func SetAssemblyHooks(h AssemblyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		assemblyHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving requests.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Assembly returns the registered assembly hooks.
func Assembly() AssemblyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return assemblyHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	assemblyHooks = NoopAssemblyHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
