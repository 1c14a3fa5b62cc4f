package metrics

import (
	"fmt"
	"strings"
)

// missingSentinels are the placeholder substrings the scrape service
// emits for cells that have no real value yet. Matching is by substring,
// not exact match: "Pending review" and "est. N/A" are both missing.
var missingSentinels = []string{"Pending", "N/A"}

// Missing classifies a raw value as missing (pending/placeholder) or
// present. Missing values get distinct visual treatment regardless of
// which formatter runs. Numbers are always present; nil and empty
// strings are always missing.
func Missing(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return missingString(v)
	case float64, float32, int, int64:
		return false
	default:
		return missingString(fmt.Sprint(v))
	}
}

func missingString(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	for _, sentinel := range missingSentinels {
		if strings.Contains(s, sentinel) {
			return true
		}
	}
	return false
}

// asString renders a raw value for display. Numbers keep their natural
// formatting; nil becomes the empty string.
func asString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return trimFloat(v)
	default:
		return fmt.Sprint(v)
	}
}

// trimFloat formats a float without a trailing ".0" for whole numbers,
// matching how the spreadsheet renders plain cells.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
