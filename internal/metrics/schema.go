package metrics

import "time"

// Variant identifies which historically-valid label/format family is in
// effect for a report date.
type Variant int

const (
	// VariantLegacy80 covers report dates strictly before the
	// similarity cutover: "80% Message similarity %" labels and the
	// legacy compound value shapes.
	VariantLegacy80 Variant = iota
	// VariantCurrent50 covers report dates at or after the cutover.
	VariantCurrent50
)

// similarityCutover is the single calendar date at which the similarity
// label family and value encoding changed. It is deliberately the only
// place this constant exists; every date-sensitive decision goes through
// VariantFor.
var similarityCutover = time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)

// tabLookupCutover gates the raw-data tab lookup API. It is independent
// of the similarity cutover.
var tabLookupCutover = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)

// VariantFor returns the schema variant active for the given report
// date. Comparison is date-only; the cutover date itself is already on
// the new side. Pure and idempotent.
func VariantFor(date time.Time) Variant {
	if dateOnly(date).Before(similarityCutover) {
		return VariantLegacy80
	}
	return VariantCurrent50
}

// TabLookupActive reports whether the raw-data tab lookup API applies to
// the given report date. The lookup cutover date itself is included.
func TabLookupActive(date time.Time) bool {
	return !dateOnly(date).Before(tabLookupCutover)
}

// dateOnly strips the time-of-day component, normalizing to UTC
// midnight so that comparisons are calendar-date comparisons.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
