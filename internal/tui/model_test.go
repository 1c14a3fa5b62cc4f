package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/halcyon-ops/botboard/internal/config"
	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
	"github.com/halcyon-ops/botboard/internal/sheets"
	"github.com/halcyon-ops/botboard/internal/summary"
)

var testDate = time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC)

type stubFetcher struct {
	snap metrics.Snapshot
	err  error
}

func (s *stubFetcher) Snapshot(context.Context, policy.Department, time.Time, string) (metrics.Snapshot, error) {
	return s.snap, s.err
}

type stubTabs struct {
	res sheets.TabResult
	err error
}

func (s *stubTabs) TabLookup(context.Context, string, time.Time, string) (sheets.TabResult, error) {
	return s.res, s.err
}

func (s *stubTabs) SheetLink(department string, date time.Time, category string) string {
	return "https://sheets.example/open?department=" + department + "&category=" + category
}

func newTestModel(f summary.Fetcher) Model {
	return NewModel(config.DefaultConfig(), f, &stubTabs{}, testDate)
}

func TestUpdate_SummaryLoaded(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	gen := m.store.Begin(testDate)

	rows := []summary.Row{{Department: policy.DeptCC}}
	updated, _ := m.Update(summaryLoadedMsg{gen: gen, rows: rows})
	got := updated.(Model)

	if got.loading {
		t.Error("expected loading cleared")
	}
	if len(got.rows) != 1 || got.rows[0].Department != policy.DeptCC {
		t.Errorf("expected rows stored, got %v", got.rows)
	}
}

func TestUpdate_StaleSummaryDropped(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	stale := m.store.Begin(testDate)
	_ = m.store.Begin(testDate.AddDate(0, 0, 1))

	updated, _ := m.Update(summaryLoadedMsg{gen: stale, rows: []summary.Row{{Department: policy.DeptCC}}})
	got := updated.(Model)

	if got.rows != nil {
		t.Error("a superseded aggregation must not overwrite the model")
	}
}

func TestUpdate_DateNavigationTriggersReload(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.loading = false

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	got := updated.(Model)

	if !got.date.Equal(testDate.AddDate(0, 0, -1)) {
		t.Errorf("expected date to step back, got %v", got.date)
	}
	if !got.loading || cmd == nil {
		t.Error("expected a reload command")
	}
}

func TestDepartmentView_FetchErrorShowsRetry(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.view = ViewDepartment
	m.selectedDept = policy.DeptCC
	m.deptErr = errors.New("scrape service unavailable")

	out := m.View()
	if !strings.Contains(out, "Failed to load CC") {
		t.Errorf("expected blocking error state, got:\n%s", out)
	}
	if !strings.Contains(out, "r retry") {
		t.Error("expected retry affordance in error view")
	}
}

func TestUpdate_TabLookupFailureRaisesAlert(t *testing.T) {
	m := newTestModel(&stubFetcher{})

	updated, _ := m.Update(tabLookupMsg{res: sheets.TabResult{Success: false, Message: "quota exceeded"}})
	got := updated.(Model)

	if got.alert != "quota exceeded" {
		t.Errorf("expected user-visible alert, got %q", got.alert)
	}

	// The next keypress dismisses the alert instead of acting.
	dismissed, _ := got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if dismissed.(Model).alert != "" {
		t.Error("expected alert dismissed on keypress")
	}
	if dismissed.(Model).quitting {
		t.Error("the dismissing keypress must not also act")
	}
}

func TestNewModel_UsesConfiguredRoster(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Departments.Roster = []string{"Finance", "Parts"}

	m := NewModel(cfg, &stubFetcher{}, &stubTabs{}, testDate)

	if len(m.roster) != 2 || m.roster[0] != policy.DeptFinance || m.roster[1] != policy.DeptParts {
		t.Errorf("expected the configured roster, got %v", m.roster)
	}

	// Cursor movement is bounded by the configured roster, not the
	// full default one.
	m.loading = false
	m.cursor = 1
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := updated.(Model).cursor; got != 1 {
		t.Errorf("cursor must stop at the last configured row, got %d", got)
	}
}

func TestUpdate_TabLookupBuildsLinkWhenURLMissing(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.tabs = &stubTabs{res: sheets.TabResult{Success: true, TabFound: true, WorksheetGID: "7"}}

	msg := m.tabLookupCmd(policy.DeptCC, "similarity")()
	res := msg.(tabLookupMsg).res
	if res.TabURL == "" || !strings.Contains(res.TabURL, "department=CC") {
		t.Fatalf("expected a built deep link for a found tab, got %q", res.TabURL)
	}

	updated, _ := m.Update(msg)
	if alert := updated.(Model).alert; !strings.Contains(alert, res.TabURL) {
		t.Errorf("expected alert to carry the link, got %q", alert)
	}
}

func TestTruncate_MultibyteSafe(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"Insurance", 5, "Insu…"},
		{"日本語の列", 3, "日本…"},
		{"日本語", 1, "日"},
		{"CC", 5, "CC"},
		{"anything", 0, ""},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.max); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
	}
}

func TestSummaryView_FailedRowRendersPending(t *testing.T) {
	m := newTestModel(&stubFetcher{})
	m.loading = false
	m.width = 120
	m.cursor = 1 // keep CC unselected so its row style is visible
	m.rows = []summary.Row{
		summary.BuildRow(policy.DeptCC, testDate, metrics.Snapshot{}),
		summary.BuildRow(policy.DeptFinance, testDate, metrics.Snapshot{"Bot handled %": "91.2"}),
	}

	out := m.View()
	if !strings.Contains(out, "N/A") {
		t.Errorf("expected empty-snapshot row to render N/A cells, got:\n%s", out)
	}
	if !strings.Contains(out, "91%") {
		t.Errorf("expected formatted sibling value, got:\n%s", out)
	}
}
