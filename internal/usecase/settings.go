package usecase

import (
	"AnalystDesk/internal/registry"
	"AnalystDesk/internal/service/admission"
	"AnalystDesk/pkg/config"
)

// SettingsFromConfig maps the YAML provider section to run settings. These
// are the service defaults; callers may override them per request.
func SettingsFromConfig(cfg *config.Config) RunSettings {
	providers := make(map[string]registry.ProviderSettings, len(cfg.Analysis.Providers))
	for id, pc := range cfg.Analysis.Providers {
		providers[id] = registry.ProviderSettings{Enabled: pc.Enabled, Variant: pc.Variant}
	}
	return RunSettings{
		Providers:        providers,
		Quorum:           cfg.Analysis.Quorum.MinSuccess,
		RequireMandatory: cfg.Analysis.Quorum.RequireMandatory,
	}
}

// LimitsFromConfig maps per-provider rate limit definitions to the admission
// controller's limit table. Providers without limits are omitted, which
// means unlimited.
func LimitsFromConfig(cfg *config.Config) map[string]admission.Limit {
	limits := make(map[string]admission.Limit)
	for id, pc := range cfg.Analysis.Providers {
		if pc.PerMinute <= 0 && pc.PerDay <= 0 {
			continue
		}
		limits[id] = admission.Limit{PerMinute: pc.PerMinute, PerDay: pc.PerDay}
	}
	return limits
}
