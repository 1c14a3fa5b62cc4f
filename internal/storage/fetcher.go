package storage

import (
	"context"
	"log"
	"time"

	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
)

// SnapshotSource is the upstream the cache falls through to; satisfied
// by the sheets client.
type SnapshotSource interface {
	Snapshot(ctx context.Context, department string, date time.Time, subDepartment string) (metrics.Snapshot, error)
}

// CachingFetcher implements summary.Fetcher: cache hit first, service
// on miss, write-through on success. A nil cache degrades to a plain
// pass-through fetcher.
type CachingFetcher struct {
	cache *Cache
	src   SnapshotSource
}

// NewCachingFetcher wires a cache in front of a snapshot source.
func NewCachingFetcher(cache *Cache, src SnapshotSource) *CachingFetcher {
	return &CachingFetcher{cache: cache, src: src}
}

// Snapshot returns the snapshot for one (department, date, sub) key.
func (f *CachingFetcher) Snapshot(ctx context.Context, dept policy.Department, date time.Time, subDepartment string) (metrics.Snapshot, error) {
	if f.cache != nil {
		if snap, ok := f.cache.Get(string(dept), date, subDepartment); ok {
			return snap, nil
		}
	}

	snap, err := f.src.Snapshot(ctx, string(dept), date, subDepartment)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.Put(string(dept), date, subDepartment, snap); err != nil {
			log.Printf("WARNING: caching snapshot for %s: %v", dept, err)
		}
	}
	return snap, nil
}
