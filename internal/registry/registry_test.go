package registry

import (
	"context"
	"testing"

	"AnalystDesk/internal/domain/models"
	"AnalystDesk/internal/domain/service"
)

type stubAnalyst struct{ id string }

func (s *stubAnalyst) Analyze(context.Context, string, *models.ContextDigest) (models.AnalystOpinion, error) {
	return models.AnalystOpinion{ProviderID: s.id}, nil
}

func testEntries() []Entry {
	build := func(id string) func(string) service.AnalystProvider {
		return func(string) service.AnalystProvider { return &stubAnalyst{id: id} }
	}
	return []Entry{
		{ID: "valuation", DisplayName: "Valuation Desk", Category: models.CategoryFundamental, Mandatory: true, Configured: true, Build: build("valuation")},
		{ID: "technical", DisplayName: "Technical Desk", Category: models.CategoryTechnical, Configured: true, Build: build("technical")},
		{ID: "sentiment", DisplayName: "Sentiment Desk", Category: models.CategorySentiment, Configured: false, Build: build("sentiment")},
		{ID: "macro", DisplayName: "Macro Desk", Category: models.CategoryMacro, Configured: true, Build: build("macro")},
	}
}

func TestResolveFiltersAndPreservesOrder(t *testing.T) {
	reg := New(testEntries())

	resolved := reg.Resolve(map[string]ProviderSettings{
		"macro":     {Enabled: true},
		"valuation": {Enabled: true},
		"technical": {Enabled: false},
	})

	want := []string{"valuation", "macro"}
	if len(resolved) != len(want) {
		t.Fatalf("resolved %d providers, want %d", len(resolved), len(want))
	}
	for i, id := range want {
		if resolved[i].Descriptor.ID != id {
			t.Fatalf("position %d: got %s, want %s", i, resolved[i].Descriptor.ID, id)
		}
	}
	if !resolved[0].Mandatory {
		t.Fatalf("valuation should be mandatory")
	}
}

func TestResolveSkipsUnconfigured(t *testing.T) {
	reg := New(testEntries())

	resolved := reg.Resolve(map[string]ProviderSettings{
		"sentiment": {Enabled: true},
	})
	if len(resolved) != 0 {
		t.Fatalf("unconfigured provider must not resolve, got %d", len(resolved))
	}
}

func TestResolveTreatsMissingSettingsAsDisabled(t *testing.T) {
	reg := New(testEntries())

	if got := reg.Resolve(nil); len(got) != 0 {
		t.Fatalf("nil settings resolved %d providers, want 0", len(got))
	}
}

func TestResolvePassesVariantToBuilder(t *testing.T) {
	var seen string
	entries := []Entry{{
		ID: "valuation", Configured: true,
		Build: func(variant string) service.AnalystProvider {
			seen = variant
			return &stubAnalyst{id: "valuation"}
		},
	}}
	reg := New(entries)

	resolved := reg.Resolve(map[string]ProviderSettings{
		"valuation": {Enabled: true, Variant: "deep"},
	})
	if len(resolved) != 1 {
		t.Fatalf("resolved %d providers, want 1", len(resolved))
	}
	if seen != "deep" {
		t.Fatalf("builder saw variant %q, want %q", seen, "deep")
	}
	if resolved[0].Variant != "deep" {
		t.Fatalf("resolved variant %q, want %q", resolved[0].Variant, "deep")
	}
}

func TestDescriptorsCoverWholeCatalog(t *testing.T) {
	reg := New(testEntries())

	ds := reg.Descriptors()
	if len(ds) != 4 {
		t.Fatalf("got %d descriptors, want 4", len(ds))
	}
	if ds[2].ID != "sentiment" || ds[2].IsConfigured {
		t.Fatalf("unconfigured entry must still be listed, unconfigured: %+v", ds[2])
	}
}
