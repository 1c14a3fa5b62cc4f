// Package tui renders the botboard dashboard: an all-departments
// summary table and a per-department drill-down, both fed by the
// metric normalization pipeline.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/halcyon-ops/botboard/internal/config"
	"github.com/halcyon-ops/botboard/internal/metrics"
	"github.com/halcyon-ops/botboard/internal/policy"
	"github.com/halcyon-ops/botboard/internal/sheets"
	"github.com/halcyon-ops/botboard/internal/summary"
)

type ViewState int

const (
	ViewSummary ViewState = iota
	ViewDepartment
)

// TabLooker resolves raw-data tab locations for the "open raw data"
// interaction; satisfied by the sheets client.
type TabLooker interface {
	TabLookup(ctx context.Context, department string, date time.Time, category string) (sheets.TabResult, error)
	SheetLink(department string, date time.Time, category string) string
}

type tickMsg time.Time

type summaryLoadedMsg struct {
	gen  uint64
	rows []summary.Row
}

type deptLoadedMsg struct {
	gen  uint64
	dept policy.Department
	snap metrics.Snapshot
	err  error
}

type tabLookupMsg struct {
	res sheets.TabResult
	err error
}

type Model struct {
	view     ViewState
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config

	fetcher summary.Fetcher
	tabs    TabLooker
	store   *summary.Store
	roster  []policy.Department

	date time.Time
	rows []summary.Row

	cursor  int
	loading bool

	// Department drill-down state.
	selectedDept policy.Department
	deptGen      uint64
	deptSnapshot metrics.Snapshot
	deptErr      error
	subCursor    int // 0 = whole department, 1.. = sub-departments

	// alert holds the modal-style message for point interactions
	// (tab lookup failures). Cleared on the next keypress.
	alert string

	refreshRate time.Duration
}

func NewModel(cfg config.Config, fetcher summary.Fetcher, tabs TabLooker, date time.Time) Model {
	return Model{
		view:    ViewSummary,
		keys:    DefaultKeyMap(),
		cfg:     cfg,
		fetcher: fetcher,
		tabs:    tabs,
		store:   summary.NewStore(),
		roster:  policy.RosterFrom(cfg.Departments.Roster),
		date:    date,
		loading: true,

		refreshRate: time.Duration(cfg.Display.RefreshRateMS) * time.Millisecond,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadSummaryCmd(),
		m.tickCmd(),
	)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadSummaryCmd starts a summary aggregation for the current date. The
// generation token from the store guards against a stale, slower run
// overwriting a newer one after rapid date changes.
func (m Model) loadSummaryCmd() tea.Cmd {
	gen := m.store.Begin(m.date)
	date := m.date
	fetcher := m.fetcher
	roster := m.roster
	return func() tea.Msg {
		rows := summary.Aggregate(context.Background(), fetcher, roster, date)
		return summaryLoadedMsg{gen: gen, rows: rows}
	}
}

func (m Model) loadDeptCmd(dept policy.Department, sub string) tea.Cmd {
	gen := m.deptGen
	date := m.date
	fetcher := m.fetcher
	return func() tea.Msg {
		snap, err := fetcher.Snapshot(context.Background(), dept, date, sub)
		return deptLoadedMsg{gen: gen, dept: dept, snap: snap, err: err}
	}
}

func (m Model) tabLookupCmd(dept policy.Department, category string) tea.Cmd {
	tabs := m.tabs
	date := m.date
	return func() tea.Msg {
		res, err := tabs.TabLookup(context.Background(), string(dept), date, category)
		// Some lookup responses carry only the worksheet GID; build the
		// deep link locally so a found tab always yields an openable URL.
		if err == nil && res.Success && res.TabFound && res.TabURL == "" {
			res.TabURL = tabs.SheetLink(string(dept), date, category)
		}
		return tabLookupMsg{res: res, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, m.tickCmd()

	case summaryLoadedMsg:
		if !m.store.Complete(msg.gen, msg.rows) {
			// A newer aggregation superseded this one.
			return m, nil
		}
		m.rows = msg.rows
		m.loading = false
		return m, nil

	case deptLoadedMsg:
		if msg.gen != m.deptGen || msg.dept != m.selectedDept {
			return m, nil
		}
		m.deptSnapshot = msg.snap
		m.deptErr = msg.err
		m.loading = false
		return m, nil

	case tabLookupMsg:
		if msg.err != nil {
			m.alert = "Raw data lookup failed: " + msg.err.Error()
			return m, nil
		}
		if userMsg := msg.res.UserMessage(); userMsg != "" {
			m.alert = userMsg
			return m, nil
		}
		m.alert = "Raw data: " + msg.res.TabURL
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any keypress dismisses the modal alert first.
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevDay):
		m.date = m.date.AddDate(0, 0, -1)
		return m.reload()

	case key.Matches(msg, m.keys.NextDay):
		m.date = m.date.AddDate(0, 0, 1)
		return m.reload()
	}

	switch m.view {
	case ViewSummary:
		return m.handleSummaryKey(msg)
	case ViewDepartment:
		return m.handleDepartmentKey(msg)
	}
	return m, nil
}

// reload refetches whichever view is active for the (new) date.
func (m Model) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	if m.view == ViewDepartment {
		m.deptGen++
		m.deptErr = nil
		return m, m.loadDeptCmd(m.selectedDept, m.selectedSub())
	}
	return m, m.loadSummaryCmd()
}

func (m Model) handleSummaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.roster)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		roster := m.roster
		if m.cursor >= 0 && m.cursor < len(roster) {
			m.view = ViewDepartment
			m.selectedDept = roster[m.cursor]
			m.subCursor = 0
			m.deptGen++
			m.deptErr = nil
			m.loading = true
			return m, m.loadDeptCmd(m.selectedDept, "")
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.reload()
	}
	return m, nil
}

func (m Model) handleDepartmentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.view = ViewSummary
		m.deptErr = nil
		m.loading = m.rows == nil
		if m.loading {
			return m, m.loadSummaryCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.reload()

	case key.Matches(msg, m.keys.Tab):
		subs := policy.For(m.selectedDept).SubDepartments
		if len(subs) == 0 {
			return m, nil
		}
		m.subCursor = (m.subCursor + 1) % (len(subs) + 1)
		m.deptGen++
		m.loading = true
		return m, m.loadDeptCmd(m.selectedDept, m.selectedSub())

	case key.Matches(msg, m.keys.OpenRaw):
		return m, m.tabLookupCmd(m.selectedDept, "similarity")
	}
	return m, nil
}

// selectedSub returns the sub-department for the current cursor, or ""
// for the whole-department view.
func (m Model) selectedSub() string {
	subs := policy.For(m.selectedDept).SubDepartments
	if m.subCursor <= 0 || m.subCursor > len(subs) {
		return ""
	}
	return subs[m.subCursor-1]
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.view {
	case ViewDepartment:
		return m.renderDepartment()
	default:
		return m.renderSummary()
	}
}
