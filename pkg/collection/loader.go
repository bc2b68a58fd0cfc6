// Package collection keeps the last successful read of a remote collection
package collection

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// FetchFunc reads the whole collection from its source
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Loader holds a snapshot of a remote collection and refreshes it on demand.
// A failed read never replaces the snapshot, only records the error.
type Loader[T any] struct {
	name  string
	fetch FetchFunc[T]

	mu        sync.RWMutex
	items     []T
	loaded    bool
	lastErr   error
	updatedAt time.Time
}

// Snapshot is a point-in-time view of a loader state
type Snapshot[T any] struct {
	Items     []T
	Loaded    bool      // at least one read succeeded
	Err       error     // error of the most recent read, nil if it succeeded
	UpdatedAt time.Time // time of the last successful read
}

// NewLoader makes a loader for the named collection
func NewLoader[T any](name string, fetch FetchFunc[T]) *Loader[T] {
	return &Loader[T]{name: name, fetch: fetch}
}

// Revalidate re-reads the collection. On success the snapshot is replaced by the fresh result,
// on failure the previous snapshot is kept and returned along with the error.
// Concurrent calls are not coordinated, the last one to complete successfully wins.
func (l *Loader[T]) Revalidate(ctx context.Context) Snapshot[T] {
	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		log.Printf("[WARN] failed to load %s: %v", l.name, err)
		l.lastErr = fmt.Errorf("load %s: %w", l.name, err)
		return l.snapshot()
	}

	if items == nil {
		items = []T{}
	}
	l.items = items
	l.loaded = true
	l.lastErr = nil
	l.updatedAt = time.Now()
	log.Printf("[DEBUG] loaded %d %s", len(items), l.name)
	return l.snapshot()
}

// Snapshot returns current state without reading the source
func (l *Loader[T]) Snapshot() Snapshot[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot()
}

// snapshot must be called under lock
func (l *Loader[T]) snapshot() Snapshot[T] {
	return Snapshot[T]{
		Items:     l.items,
		Loaded:    l.loaded,
		Err:       l.lastErr,
		UpdatedAt: l.updatedAt,
	}
}
