// Package policy holds the declarative per-department rule set: which
// metrics a department reports, which rows show a placeholder message
// instead of data, which sub-units exist, and which departments track
// the dual-endpoint quality score. The rules are data, not branching,
// so they can be audited and tested in isolation from rendering.
package policy

import "github.com/halcyon-ops/botboard/internal/metrics"

// Department identifies one business unit in the roster.
type Department string

const (
	DeptCC        Department = "CC"
	DeptMVSales   Department = "MV Sales"
	DeptMVService Department = "MV Service"
	DeptParts     Department = "Parts"
	DeptInsurance Department = "Insurance"
	DeptFinance   Department = "Finance"

	// Pseudo-departments are aggregate/analysis views, not business
	// units. They never appear in the summary roster.
	DeptAll        Department = "ALL"
	DeptQAAnalysis Department = "QA Analysis"
)

// Placeholder messages shown instead of data for excluded rows.
const (
	MsgPending       = "Feature pending"
	MsgRemoved       = "Removed per request"
	MsgNotApplicable = "Not applicable"
)

// Policy is one department's capability record.
type Policy struct {
	// Metrics lists the metric IDs shown for this department, in row
	// order. An ID absent from the list is hidden entirely.
	Metrics []string

	// Placeholders maps a metric ID to the message rendered instead of
	// its value. The metric still occupies a row.
	Placeholders map[string]string

	// SubDepartments lists expandable sub-unit breakdowns, if any.
	SubDepartments []string

	// Endpoints lists the tracked phone lines for the dual-endpoint
	// quality score. Empty means the department reports a single value.
	Endpoints []string
}

// defaultMetrics is the row set for departments without an override:
// every registered metric, in registry row order.
var defaultMetrics = func() []string {
	reg := metrics.Registry()
	ids := make([]string, len(reg))
	for i, d := range reg {
		ids[i] = d.ID
	}
	return ids
}()

var table = map[Department]Policy{
	DeptCC: {
		Metrics:        defaultMetrics,
		SubDepartments: []string{"Inbound", "Outbound"},
		Endpoints:      []string{"1408", "1409"},
	},
	DeptMVSales: {
		Metrics:   defaultMetrics,
		Endpoints: []string{"2201", "2202"},
	},
	DeptMVService: {
		Metrics: defaultMetrics,
		Placeholders: map[string]string{
			metrics.MetricChatsShadowed: MsgPending,
		},
	},
	DeptParts: {
		Metrics: without(defaultMetrics, metrics.MetricSentiment),
		Placeholders: map[string]string{
			metrics.MetricAnnotationResult: MsgRemoved,
		},
	},
	DeptInsurance: {
		Metrics: defaultMetrics,
		Placeholders: map[string]string{
			metrics.MetricQualityScore: MsgNotApplicable,
		},
	},
	DeptFinance: {
		Metrics: without(defaultMetrics, metrics.MetricQualityScore),
	},
}

// roster is the fixed department order for the all-departments view.
var roster = []Department{
	DeptCC,
	DeptMVSales,
	DeptMVService,
	DeptParts,
	DeptInsurance,
	DeptFinance,
}

// Roster returns the real departments in summary order. The aggregate
// pseudo-departments are excluded.
func Roster() []Department {
	out := make([]Department, len(roster))
	copy(out, roster)
	return out
}

// RosterFrom builds a roster from configured department names. Blank
// entries and the aggregate pseudo-views are skipped; an empty result
// falls back to the default roster so a bad config never yields an
// empty dashboard.
func RosterFrom(names []string) []Department {
	out := make([]Department, 0, len(names))
	for _, name := range names {
		d := Department(name)
		if name == "" || IsPseudo(d) {
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return Roster()
	}
	return out
}

// IsPseudo reports whether d is one of the reserved aggregate/analysis
// views rather than a real business unit.
func IsPseudo(d Department) bool {
	return d == DeptAll || d == DeptQAAnalysis
}

// For returns the policy record for the given department. Unknown
// departments get the default metric set with no overrides.
func For(d Department) Policy {
	if p, ok := table[d]; ok {
		return p
	}
	return Policy{Metrics: defaultMetrics}
}

func without(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
