package metrics

import (
	"regexp"
	"strconv"
	"strings"
)

// The scrape service has emitted the percentage+average compound in
// several textual shapes over time:
//
//	"8.41%(19)"                  bare count in parens
//	"8.41%(Avg. per chat:0.18)"  labeled average in parens
//	"8.41% (19)"                 space before the parens
//
// All of them are recognized by one parsing stage and re-emitted in one
// canonical shape, so the detection logic exists exactly once.

type pctAvgShapeKind int

const (
	pctAvgBare pctAvgShapeKind = iota
	pctAvgLabeled
)

type pctAvgShape struct {
	kind pctAvgShapeKind
	pct  float64
	avg  float64
}

var pctAvgPattern = regexp.MustCompile(
	`^(\d+(?:\.\d+)?)\s*%\s*\((Avg\. per chat:\s*)?(\d+(?:\.\d+)?)\s*\)$`,
)

// parsePctAvg matches a raw string against every known historical shape
// of the percentage+average compound. It returns false when no shape
// matches, in which case the caller passes the raw value through.
func parsePctAvg(s string) (pctAvgShape, bool) {
	m := pctAvgPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return pctAvgShape{}, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return pctAvgShape{}, false
	}
	avg, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return pctAvgShape{}, false
	}
	kind := pctAvgBare
	if m[2] != "" {
		kind = pctAvgLabeled
	}
	return pctAvgShape{kind: kind, pct: pct, avg: avg}, true
}

// canonical emits the single canonical shape with one decimal place on
// both components. Feeding the result back through parsePctAvg yields
// the same numbers, so formatting is idempotent.
func (p pctAvgShape) canonical() string {
	return strconv.FormatFloat(round1(p.pct), 'f', 1, 64) +
		"% (Avg. per chat:" +
		strconv.FormatFloat(round1(p.avg), 'f', 1, 64) + ")"
}

func round1(f float64) float64 {
	return float64(int64(f*10+0.5)) / 10
}

// parseLeadingFloat parses the leading numeric prefix of a string, the
// way the spreadsheet values are read upstream: "20.0 (6.45% of chats)"
// yields 20.0. Returns false when the string has no numeric prefix.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 || (end == 1 && s[0] == '.') {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
