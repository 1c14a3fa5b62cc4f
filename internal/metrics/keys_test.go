package metrics

import "testing"

func TestStorageKey_Alias(t *testing.T) {
	if got := StorageKey("Cost per chat"); got != "Cost/chat" {
		t.Errorf("expected alias key, got %q", got)
	}
	if got := StorageKey("Incorrect tool calls %"); got != "Wrong tool calls %" {
		t.Errorf("expected legacy alias key, got %q", got)
	}
}

func TestStorageKey_IdentityDefault(t *testing.T) {
	if got := StorageKey("Bot handled %"); got != "Bot handled %" {
		t.Errorf("expected identity for unaliased label, got %q", got)
	}
}

// The two historical week ranges read the same source column upstream.
// This pins the observed behavior so a "fix" does not slip in without a
// confirmed mapping.
func TestStorageKey_WeekRangesShareColumn(t *testing.T) {
	two := StorageKey("Previous 2 weeks")
	three := StorageKey("Previous 3 weeks")
	if two != three {
		t.Errorf("week ranges diverged: %q vs %q", two, three)
	}
	if two != "history_col_f" {
		t.Errorf("expected history_col_f, got %q", two)
	}
}

func TestSnapshotRaw_GoesThroughResolver(t *testing.T) {
	snap := Snapshot{"Cost/chat": "$0.42"}
	if got := snap.Raw("Cost per chat"); got != "$0.42" {
		t.Errorf("expected aliased lookup to find value, got %v", got)
	}
}

func TestEndpointKey(t *testing.T) {
	if got := EndpointKey("Quality score", "1408"); got != "Quality score [1408]" {
		t.Errorf("unexpected endpoint key %q", got)
	}
}
