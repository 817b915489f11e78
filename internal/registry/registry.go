package registry

import (
	"AnalystDesk/internal/domain/models"
	"AnalystDesk/internal/domain/service"
)

// Entry declares one provider in the catalog. Declaration order is the
// stable ordering used for progress messages and opinion display downstream.
type Entry struct {
	ID          string
	DisplayName string
	Category    models.Category
	Mandatory   bool
	Configured  bool
	Build       func(variant string) service.AnalystProvider
}

// ProviderSettings is the caller's per-provider switch. A provider missing
// from the settings map is treated as disabled.
type ProviderSettings struct {
	Enabled bool   `json:"enabled"`
	Variant string `json:"variant,omitempty"`
}

// ResolvedProvider is a live provider handle paired with its descriptor.
type ResolvedProvider struct {
	Descriptor models.ProviderDescriptor
	Handle     service.AnalystProvider
	Mandatory  bool
	Variant    string
}

// Registry maps caller settings to live provider handles. Resolve is a pure
// function of configuration and performs no network calls.
type Registry struct {
	entries []Entry
}

func New(entries []Entry) *Registry {
	return &Registry{entries: entries}
}

// Resolve filters the catalog to providers that are both configured and
// enabled by the given settings, preserving declaration order.
func (r *Registry) Resolve(settings map[string]ProviderSettings) []ResolvedProvider {
	out := make([]ResolvedProvider, 0, len(r.entries))
	for _, e := range r.entries {
		s, ok := settings[e.ID]
		if !ok || !s.Enabled || !e.Configured {
			continue
		}
		out = append(out, ResolvedProvider{
			Descriptor: models.ProviderDescriptor{
				ID:           e.ID,
				DisplayName:  e.DisplayName,
				Category:     e.Category,
				IsConfigured: e.Configured,
			},
			Handle:    e.Build(s.Variant),
			Mandatory: e.Mandatory,
			Variant:   s.Variant,
		})
	}
	return out
}

// Descriptors returns descriptors for the whole catalog in declaration
// order, regardless of settings. Used by the providers listing endpoint.
func (r *Registry) Descriptors() []models.ProviderDescriptor {
	out := make([]models.ProviderDescriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, models.ProviderDescriptor{
			ID:           e.ID,
			DisplayName:  e.DisplayName,
			Category:     e.Category,
			IsConfigured: e.Configured,
		})
	}
	return out
}
