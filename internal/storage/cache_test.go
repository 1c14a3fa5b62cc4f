package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	c := NewCache(db)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	date := time.Now().AddDate(0, 0, -2)

	snap := metrics.Snapshot{
		"Bot handled %":    "93.4",
		"Escalations":      float64(12),
		"Chats shadowed %": nil,
	}
	if err := c.Put("CC", date, "", snap); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := c.Get("CC", date, "")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got["Bot handled %"] != "93.4" {
		t.Errorf("string value lost: %v", got["Bot handled %"])
	}
	if got["Escalations"] != float64(12) {
		t.Errorf("numeric value lost: %v", got["Escalations"])
	}
	if v, ok := got["Chats shadowed %"]; !ok || v != nil {
		t.Errorf("null value lost: %v %v", v, ok)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := openTestCache(t)
	if _, ok := c.Get("CC", time.Now().AddDate(0, 0, -1), ""); ok {
		t.Error("expected miss for empty cache")
	}
}

func TestCache_TodayIsNotCached(t *testing.T) {
	c := openTestCache(t)
	today := time.Now()

	if err := c.Put("CC", today, "", metrics.Snapshot{"Bot handled %": "90"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := c.Get("CC", today, ""); ok {
		t.Error("the current day must never be served from cache")
	}
}

func TestCache_SubDepartmentKeysAreDistinct(t *testing.T) {
	c := openTestCache(t)
	date := time.Now().AddDate(0, 0, -3)

	_ = c.Put("CC", date, "Inbound", metrics.Snapshot{"Bot handled %": "91"})
	_ = c.Put("CC", date, "Outbound", metrics.Snapshot{"Bot handled %": "84"})

	in, _ := c.Get("CC", date, "Inbound")
	out, _ := c.Get("CC", date, "Outbound")
	if in["Bot handled %"] == out["Bot handled %"] {
		t.Error("sub-department snapshots must not collide")
	}
}

func TestCache_Prune(t *testing.T) {
	c := openTestCache(t)
	old := time.Now().AddDate(0, 0, -90)
	recent := time.Now().AddDate(0, 0, -2)

	_ = c.Put("CC", old, "", metrics.Snapshot{"Bot handled %": "80"})
	_ = c.Put("CC", recent, "", metrics.Snapshot{"Bot handled %": "92"})

	if err := c.Prune(30); err != nil {
		t.Fatalf("prune: %v", err)
	}

	if _, ok := c.Get("CC", old, ""); ok {
		t.Error("expected pruned entry to be gone")
	}
	if _, ok := c.Get("CC", recent, ""); !ok {
		t.Error("expected recent entry to survive pruning")
	}
}

type countingSource struct {
	calls int
	snap  metrics.Snapshot
	err   error
}

func (s *countingSource) Snapshot(context.Context, string, time.Time, string) (metrics.Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

func TestCachingFetcher_SecondFetchHitsCache(t *testing.T) {
	c := openTestCache(t)
	src := &countingSource{snap: metrics.Snapshot{"Bot handled %": "93"}}
	f := NewCachingFetcher(c, src)
	date := time.Now().AddDate(0, 0, -1)

	for i := 0; i < 2; i++ {
		snap, err := f.Snapshot(context.Background(), policy.DeptCC, date, "")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if snap["Bot handled %"] != "93" {
			t.Fatalf("fetch %d: unexpected snapshot %v", i, snap)
		}
	}
	if src.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", src.calls)
	}
}

func TestCachingFetcher_ErrorPropagates(t *testing.T) {
	c := openTestCache(t)
	src := &countingSource{err: errors.New("service down")}
	f := NewCachingFetcher(c, src)

	if _, err := f.Snapshot(context.Background(), policy.DeptCC, time.Now().AddDate(0, 0, -1), ""); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
}

func TestCachingFetcher_NilCachePassesThrough(t *testing.T) {
	src := &countingSource{snap: metrics.Snapshot{}}
	f := NewCachingFetcher(nil, src)

	if _, err := f.Snapshot(context.Background(), policy.DeptCC, time.Now(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("expected upstream call, got %d", src.calls)
	}
}
