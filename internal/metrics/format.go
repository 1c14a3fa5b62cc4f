package metrics

import (
	"fmt"
	"math"
	"strings"
)

// MissingDisplay is the literal rendered for missing values.
const MissingDisplay = "N/A"

// Format applies the descriptor's formatting rule to a raw value.
// Malformed or unexpected input never fails: every formatter falls back
// to passing the raw value through unchanged, because spreadsheet data
// is untrusted and must never break the render path.
func Format(d Descriptor, raw any, ctx Context) Value {
	var v Value
	switch d.Kind {
	case KindRoundedPercent:
		v = roundedPercent(raw)
	case KindPercentAvg:
		v = percentAvg(raw)
	case KindDelaySplit:
		v = delaySplit(raw)
	case KindIntCount:
		v = intCount(raw)
	case KindCompound:
		v = compound(d, raw, ctx)
	case KindDualEndpoint:
		v = dualEndpoint(d, ctx)
	case KindSeverityLabel:
		v = severityLabel(raw)
	default:
		v = passthrough(raw)
	}

	// Classification runs on the composed output too: a compound string
	// with one missing half still carries a sentinel substring and must
	// surface with the missing treatment.
	if !v.Missing && Missing(v.Display) {
		v.Missing = true
	}
	return v
}

// FormatLabel resolves the raw value for a metric from the context's
// snapshot (via the key resolver and date-variant label) and formats it.
func FormatLabel(d Descriptor, ctx Context) Value {
	if d.Kind == KindDualEndpoint {
		return Format(d, nil, ctx)
	}
	return Format(d, ctx.Snapshot.Raw(d.LabelFor(ctx.Date)), ctx)
}

func missingValue() Value {
	return Value{Display: MissingDisplay, Missing: true}
}

// passthrough renders the raw value unchanged; missing values become the
// "N/A" literal.
func passthrough(raw any) Value {
	if Missing(raw) {
		return missingValue()
	}
	return Value{Display: asString(raw)}
}

// roundedPercent parses the raw value as a float, rounds to the nearest
// integer and appends "%". Unparsable input passes through unmodified.
func roundedPercent(raw any) Value {
	if Missing(raw) {
		return missingValue()
	}
	f, ok := parseLeadingFloat(asString(raw))
	if !ok {
		return Value{Display: asString(raw)}
	}
	return Value{Display: fmt.Sprintf("%d%%", int(math.Round(f)))}
}

// percentAvg recognizes every historical shape of the
// percentage+average compound and re-emits the canonical
// "P.P% (Avg. per chat:N.N)" form. Unknown shapes pass through.
func percentAvg(raw any) Value {
	if Missing(raw) {
		return missingValue()
	}
	s := asString(raw)
	shape, ok := parsePctAvg(s)
	if !ok {
		return Value{Display: s}
	}
	return Value{Display: shape.canonical()}
}

// delaySplit splits "<time-text> (<count-text>)" at the first "(" into a
// primary time line and a secondary annotation line. Without the
// delimiter the value renders as a single line.
func delaySplit(raw any) Value {
	if Missing(raw) {
		return missingValue()
	}
	s := asString(raw)
	idx := strings.Index(s, "(")
	if idx < 0 {
		return Value{Display: s}
	}
	return Value{
		Display:   strings.TrimSpace(s[:idx]),
		Secondary: strings.TrimSpace(s[idx:]),
	}
}

// intCount rounds the leading numeric component to an integer and keeps
// any trailing parenthetical qualifier untouched:
// "20.0 (6.45% of chats)" -> "20 (6.45% of chats)".
func intCount(raw any) Value {
	if Missing(raw) {
		return missingValue()
	}
	s := asString(raw)
	f, ok := parseLeadingFloat(s)
	if !ok {
		return Value{Display: s}
	}
	rounded := fmt.Sprintf("%d", int(math.Round(f)))
	if idx := strings.Index(s, "("); idx >= 0 {
		return Value{Display: rounded + " " + s[idx:]}
	}
	return Value{Display: rounded}
}

// compound renders "<A> (<B> <suffix>)", pulling the secondary metric's
// value from the same snapshot. When both constituents are missing the
// row renders as missing rather than as "N/A (N/A ...)".
func compound(d Descriptor, raw any, ctx Context) Value {
	secondary := ctx.Snapshot.Raw(d.SecondaryLabel)
	if Missing(raw) && Missing(secondary) {
		return missingValue()
	}
	return Value{
		Display: fmt.Sprintf("%s (%s %s)", displayOrNA(raw), displayOrNA(secondary), d.Suffix),
	}
}

// dualEndpoint renders the quality score tracked against two numbered
// phone lines as labeled sub-values. The metric is missing only when
// every endpoint value is absent; a single present endpoint still
// renders both lines, with the absent one as "N/A".
func dualEndpoint(d Descriptor, ctx Context) Value {
	if len(ctx.Endpoints) == 0 {
		return FormatLabel(Descriptor{ID: d.ID, Label: d.Label, Kind: KindPassthrough}, ctx)
	}

	allMissing := true
	parts := make([]string, 0, len(ctx.Endpoints))
	for _, ep := range ctx.Endpoints {
		raw := ctx.Snapshot[EndpointKey(d.LabelFor(ctx.Date), ep)]
		if !Missing(raw) {
			allMissing = false
		}
		parts = append(parts, fmt.Sprintf("%s: %s", ep, displayOrNA(raw)))
	}
	if allMissing {
		return missingValue()
	}

	v := Value{Display: parts[0]}
	if len(parts) > 1 {
		v.Secondary = strings.Join(parts[1:], "  ")
	}
	return v
}

// severityLabel maps an annotation quality label to a severity
// indicator by case-insensitive substring match. First match wins;
// unrecognized text renders with no indicator.
func severityLabel(raw any) Value {
	if Missing(raw) {
		return missingValue()
	}
	s := asString(raw)
	lower := strings.ToLower(s)
	sev := SeverityNone
	switch {
	case strings.Contains(lower, "high"):
		sev = SeverityHigh
	case strings.Contains(lower, "mid"), strings.Contains(lower, "medium"):
		sev = SeverityMedium
	case strings.Contains(lower, "low"):
		sev = SeverityLow
	}
	return Value{Display: s, Severity: sev}
}

func displayOrNA(raw any) string {
	if Missing(raw) {
		return MissingDisplay
	}
	return asString(raw)
}
