package service

import (
	"context"
	"sync"
	"time"

	"github.com/efreitasn/shareledger/internal/domain"
)

// snapshotKey identifies a memoized snapshot. The version component makes
// invalidation automatic: any append bumps the company's log version, so
// stale entries simply stop being hit and wait for the sweeper.
type snapshotKey struct {
	companyID string
	asOf      domain.Date
	version   uint64
}

// SnapshotCache memoizes replay results keyed by (company, cutoff date,
// event-log version). Snapshots are immutable, so sharing them between
// readers is safe; discarding one only costs a re-replay.
type SnapshotCache struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]*domain.Snapshot
	interval  time.Duration
	version   func(companyID string) uint64
}

// NewSnapshotCache creates a cache that sweeps at the given interval.
// version reports the current event-log version for a company and is used
// by the sweeper to drop entries that can never be hit again.
func NewSnapshotCache(interval time.Duration, version func(companyID string) uint64) *SnapshotCache {
	return &SnapshotCache{
		snapshots: make(map[snapshotKey]*domain.Snapshot),
		interval:  interval,
		version:   version,
	}
}

// Get returns the cached snapshot for the key, if present.
func (c *SnapshotCache) Get(companyID string, asOf domain.Date, version uint64) (*domain.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[snapshotKey{companyID, asOf, version}]
	return snap, ok
}

// Put stores a snapshot under its own company/cutoff/version key.
func (c *SnapshotCache) Put(snap *domain.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snapshotKey{snap.CompanyID, snap.AsOf, snap.Version}] = snap
}

// Len returns the number of cached snapshots.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}

// Sweep drops every entry whose version no longer matches the company's
// current event-log version. Get always looks up the current version, so
// such entries are unreachable and removing them is purely memory reclaim.
func (c *SnapshotCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.snapshots {
		if key.version != c.version(key.companyID) {
			delete(c.snapshots, key)
			removed++
		}
	}
	return removed
}

// Start launches a background goroutine that sweeps at the configured
// interval. It stops when ctx is cancelled.
func (c *SnapshotCache) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}
