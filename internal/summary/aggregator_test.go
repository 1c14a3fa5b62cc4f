package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
)

var testDate = time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

// fakeFetcher serves canned snapshots per department and can fail
// selected departments.
type fakeFetcher struct {
	mu        sync.Mutex
	snapshots map[policy.Department]metrics.Snapshot
	failing   map[policy.Department]bool
	calls     []policy.Department
}

func (f *fakeFetcher) Snapshot(_ context.Context, dept policy.Department, _ time.Time, _ string) (metrics.Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, dept)
	f.mu.Unlock()

	if f.failing[dept] {
		return nil, errors.New("scrape service unavailable")
	}
	if snap, ok := f.snapshots[dept]; ok {
		return snap, nil
	}
	return metrics.Snapshot{}, nil
}

func TestAggregate_AllDepartmentsPresentInRosterOrder(t *testing.T) {
	f := &fakeFetcher{}
	roster := policy.Roster()
	rows := Aggregate(context.Background(), f, roster, testDate)

	if len(rows) != len(roster) {
		t.Fatalf("expected %d rows, got %d", len(roster), len(rows))
	}
	for i, row := range rows {
		if row.Department != roster[i] {
			t.Errorf("row %d: expected %q, got %q", i, roster[i], row.Department)
		}
	}
}

func TestAggregate_FailureIsolation(t *testing.T) {
	f := &fakeFetcher{
		snapshots: map[policy.Department]metrics.Snapshot{
			policy.DeptFinance: {"Bot handled %": "91.2"},
		},
		failing: map[policy.Department]bool{policy.DeptCC: true},
	}

	rows := Aggregate(context.Background(), f, policy.Roster(), testDate)

	if len(rows) != len(policy.Roster()) {
		t.Fatalf("a failing department must not drop rows, got %d", len(rows))
	}

	var ccRow, finRow *Row
	for i := range rows {
		switch rows[i].Department {
		case policy.DeptCC:
			ccRow = &rows[i]
		case policy.DeptFinance:
			finRow = &rows[i]
		}
	}
	if ccRow == nil || finRow == nil {
		t.Fatal("expected rows for CC and Finance")
	}

	// The failed department renders every cell as missing.
	for _, cell := range ccRow.Cells {
		if cell.Placeholder != "" {
			continue
		}
		if cell.Value.Display != metrics.MissingDisplay || !cell.Value.Missing {
			t.Errorf("CC cell %s: expected N/A missing, got %+v", cell.MetricID, cell.Value)
		}
	}

	// Siblings still carry their data.
	for _, cell := range finRow.Cells {
		if cell.MetricID == metrics.MetricBotHandled && cell.Value.Display != "91%" {
			t.Errorf("Finance bot handled: expected 91%%, got %q", cell.Value.Display)
		}
	}
}

// slowFetcher sleeps on every call to make fan-out timing observable.
type slowFetcher struct {
	delay time.Duration
}

func (f *slowFetcher) Snapshot(context.Context, policy.Department, time.Time, string) (metrics.Snapshot, error) {
	time.Sleep(f.delay)
	return metrics.Snapshot{}, nil
}

func TestAggregate_LatencyBoundedBySlowestFetch(t *testing.T) {
	const delay = 150 * time.Millisecond
	f := &slowFetcher{delay: delay}
	roster := policy.Roster()

	start := time.Now()
	rows := Aggregate(context.Background(), f, roster, testDate)
	elapsed := time.Since(start)

	if len(rows) != len(roster) {
		t.Fatalf("expected %d rows, got %d", len(roster), len(rows))
	}
	// All fetches run at once, so the total must stay well under two
	// serialized waves (2 * delay).
	if elapsed >= 2*delay {
		t.Errorf("aggregation took %v; fetches did not run concurrently (single fetch is %v)", elapsed, delay)
	}
}

func TestAggregate_HonorsConfiguredRoster(t *testing.T) {
	f := &fakeFetcher{}
	roster := []policy.Department{policy.DeptFinance, policy.DeptParts}

	rows := Aggregate(context.Background(), f, roster, testDate)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Department != policy.DeptFinance || rows[1].Department != policy.DeptParts {
		t.Errorf("rows must follow the given roster order, got %v then %v",
			rows[0].Department, rows[1].Department)
	}
}

func TestBuildRow_PlaceholderRows(t *testing.T) {
	row := BuildRow(policy.DeptMVService, testDate, metrics.Snapshot{"Chats shadowed %": "12%"})

	var found bool
	for _, cell := range row.Cells {
		if cell.MetricID != metrics.MetricChatsShadowed {
			continue
		}
		found = true
		if cell.Placeholder != policy.MsgPending {
			t.Errorf("expected pending placeholder, got %q", cell.Placeholder)
		}
		if cell.Value.Display != policy.MsgPending {
			t.Errorf("placeholder must replace the value, got %q", cell.Value.Display)
		}
	}
	if !found {
		t.Fatal("chats shadowed row missing")
	}
}

func TestBuildRow_DualEndpointApplied(t *testing.T) {
	snap := metrics.Snapshot{
		"Quality score [1408]": "87%",
		"Quality score [1409]": "82%",
	}
	row := BuildRow(policy.DeptCC, testDate, snap)

	for _, cell := range row.Cells {
		if cell.MetricID != metrics.MetricQualityScore {
			continue
		}
		if cell.Value.Display != "1408: 87%" || cell.Value.Secondary != "1409: 82%" {
			t.Errorf("expected labeled endpoint lines, got %+v", cell.Value)
		}
		return
	}
	t.Fatal("quality score row missing for CC")
}

func TestBuildRow_DateVariantLabel(t *testing.T) {
	before := time.Date(2025, time.October, 6, 0, 0, 0, 0, time.UTC)
	row := BuildRow(policy.DeptFinance, before, metrics.Snapshot{})

	for _, cell := range row.Cells {
		if cell.MetricID == metrics.MetricSimilarity {
			if cell.Label != "80% Message similarity %" {
				t.Errorf("expected legacy label before cutover, got %q", cell.Label)
			}
			return
		}
	}
	t.Fatal("similarity row missing")
}

func TestStore_StaleGenerationRejected(t *testing.T) {
	s := NewStore()

	older := s.Begin(testDate)
	newer := s.Begin(testDate.AddDate(0, 0, 1))

	if s.Complete(older, []Row{{Department: policy.DeptCC}}) {
		t.Error("stale generation must be rejected")
	}
	if _, _, ok := s.Latest(); ok {
		t.Error("stale completion must not populate the store")
	}

	if !s.Complete(newer, []Row{{Department: policy.DeptFinance}}) {
		t.Error("current generation must be accepted")
	}
	date, rows, ok := s.Latest()
	if !ok || len(rows) != 1 || rows[0].Department != policy.DeptFinance {
		t.Errorf("unexpected latest rows: %v %v", rows, ok)
	}
	if !date.Equal(testDate.AddDate(0, 0, 1)) {
		t.Errorf("unexpected latest date: %v", date)
	}
}
