// Package cache provides pluggable result caching for assembly runs.
//
// Two backends are provided: a file cache for CLI usage and a Redis
// cache for server deployments. A null backend disables caching without
// branching at call sites.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached artifact class. Selections are cheap to
// recompute and age out quickly; assembled frameworks are the expensive
// product and live longer.
const (
	SelectionTTL = 1 * time.Hour
	FrameworkTTL = 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Get returns (data, found, error); a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// SelectionKeyOpts carries everything that changes a selection result.
type SelectionKeyOpts struct {
	Seed       uint64
	Candidates []string // "name:weight" entries, caller-sorted
	Assignment []string // "slot=name" pins, caller-sorted
}

// FrameworkKeyOpts carries everything that changes an assembled,
// refined framework beyond the selection it was built from.
type FrameworkKeyOpts struct {
	MaxIterations int
	Tolerance     float64
}

// Keyer derives cache keys for the two cached artifact classes.
// Implementations must produce equal keys for semantically equal
// inputs; the runner relies on this for cross-process cache hits.
type Keyer interface {
	// SelectionKey keys a slot→unit selection for a topology.
	SelectionKey(topologyName string, opts SelectionKeyOpts) string

	// FrameworkKey keys an assembled framework by its selection hash
	// and refinement parameters.
	FrameworkKey(selectionHash string, opts FrameworkKeyOpts) string
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SelectionKey generates a key for selection caching.
func (k *DefaultKeyer) SelectionKey(topologyName string, opts SelectionKeyOpts) string {
	return hashKey("selection", topologyName, opts)
}

// FrameworkKey generates a key for framework caching.
func (k *DefaultKeyer) FrameworkKey(selectionHash string, opts FrameworkKeyOpts) string {
	return hashKey("framework", selectionHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
