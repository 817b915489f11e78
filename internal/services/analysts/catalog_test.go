package analysts

import (
	"testing"
	"time"
)

func TestCatalogOrderAndMandatory(t *testing.T) {
	base := NewServiceBase("http://localhost:9000", "key", 5*time.Second)
	entries := Catalog(base, true)

	want := []string{"valuation", "technical", "sentiment", "macro", "risk"}
	if len(entries) != len(want) {
		t.Fatalf("catalog has %d entries, want %d", len(entries), len(want))
	}
	for i, id := range want {
		if entries[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, entries[i].ID, id)
		}
	}

	for _, e := range entries {
		if e.Mandatory != (e.ID == "valuation") {
			t.Fatalf("mandatory flag wrong for %s", e.ID)
		}
		if !e.Configured {
			t.Fatalf("%s should be configured", e.ID)
		}
		if e.Build == nil {
			t.Fatalf("%s has no builder", e.ID)
		}
	}
}

func TestCatalogUnconfigured(t *testing.T) {
	base := NewServiceBase("http://localhost:9000", "", 5*time.Second)
	for _, e := range Catalog(base, false) {
		if e.Configured {
			t.Fatalf("%s should be unconfigured without an api key", e.ID)
		}
	}
}
