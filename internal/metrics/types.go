// Package metrics implements the normalization pipeline that turns raw,
// loosely-typed spreadsheet values into render-ready display values.
// All functions are pure: a formatted value depends only on the raw
// value, the metric descriptor, the department and the report date.
package metrics

import "time"

// Snapshot is the raw per-department, per-date mapping from metric label
// to value as sourced from the spreadsheet scrape service. Values are
// strings, numbers (float64 after JSON decode) or nil. A snapshot is
// immutable once fetched; it is replaced wholesale on every selection
// change.
type Snapshot map[string]any

// Severity is the quality indicator derived from annotation labels.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

// Value is the render-ready output of the formatting pipeline: a display
// string, an optional secondary line, a missing hint that drives distinct
// visual treatment (italics), and a severity indicator.
type Value struct {
	Display   string
	Secondary string
	Missing   bool
	Severity  Severity
}

// Context carries the department, report date and source snapshot a
// formatter may need. Endpoints lists the tracked phone lines for
// departments that report a dual-endpoint quality score; it is empty
// for everyone else.
type Context struct {
	Department string
	Date       time.Time
	Snapshot   Snapshot
	Endpoints  []string
}

// Kind selects the formatting rule applied to a metric's raw value.
type Kind int

const (
	KindPassthrough Kind = iota
	KindRoundedPercent
	KindPercentAvg
	KindDelaySplit
	KindIntCount
	KindCompound
	KindDualEndpoint
	KindSeverityLabel
)

// Descriptor is the static, compile-time-known record for one conceptual
// metric: its canonical label, the formatter kind, and for date-variant
// metrics the legacy label active before the schema cutover.
type Descriptor struct {
	ID          string
	Label       string
	LegacyLabel string // non-empty only for cutover-versioned metrics
	Kind        Kind

	// Compound metrics pull a secondary metric from the same snapshot.
	SecondaryLabel string
	Suffix         string
}

// LabelFor returns the display label active for the given report date.
// Metrics without a legacy label are date-independent.
func (d Descriptor) LabelFor(date time.Time) string {
	if d.LegacyLabel != "" && VariantFor(date) == VariantLegacy80 {
		return d.LegacyLabel
	}
	return d.Label
}
