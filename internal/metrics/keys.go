package metrics

import "fmt"

// keyAliases maps a display label to the physical key the scrape service
// stores the value under. Labels without an entry are stored under the
// label itself.
//
// NOTE: "Previous 2 weeks" and "Previous 3 weeks" both read column F of
// the history sheet. That matches the observed upstream behavior (the
// ranges were wired to the same source column) and is reproduced here
// on purpose until product confirms a separate mapping.
var keyAliases = map[string]string{
	"Cost per chat":          "Cost/chat",
	"Incorrect tool calls %": "Wrong tool calls %",
	"Previous 2 weeks":       "history_col_f",
	"Previous 3 weeks":       "history_col_f",
}

// StorageKey returns the key under which the value for the given display
// label is physically stored in a snapshot. Absence of an alias is the
// identity case, not an error.
func StorageKey(label string) string {
	if key, ok := keyAliases[label]; ok {
		return key
	}
	return label
}

// EndpointKey returns the storage key for one endpoint of a
// dual-endpoint metric, e.g. "Quality score [1408]".
func EndpointKey(label, endpoint string) string {
	return fmt.Sprintf("%s [%s]", StorageKey(label), endpoint)
}

// Raw returns the raw value stored for the given display label, going
// through the key resolver. A missing key yields nil, which the
// classifier treats as missing.
func (s Snapshot) Raw(label string) any {
	return s[StorageKey(label)]
}
