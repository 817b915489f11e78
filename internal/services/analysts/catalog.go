package analysts

import (
	"AnalystDesk/internal/domain/models"
	"AnalystDesk/internal/domain/service"
	"AnalystDesk/internal/registry"
)

// Catalog declares the built-in analyst roster in display order. The
// valuation analyst is the mandatory baseline: when the mandatory-provider
// quorum policy is on, at least one of its opinions must survive fan-out.
func Catalog(base *ServiceBase, configured bool) []registry.Entry {
	build := func(id string) func(variant string) service.AnalystProvider {
		return func(variant string) service.AnalystProvider {
			return NewHTTPAnalyst(base, id, variant)
		}
	}

	return []registry.Entry{
		{
			ID:          "valuation",
			DisplayName: "Valuation Analyst",
			Category:    models.CategoryFundamental,
			Mandatory:   true,
			Configured:  configured,
			Build:       build("valuation"),
		},
		{
			ID:          "technical",
			DisplayName: "Technical Analyst",
			Category:    models.CategoryTechnical,
			Configured:  configured,
			Build:       build("technical"),
		},
		{
			ID:          "sentiment",
			DisplayName: "Sentiment Analyst",
			Category:    models.CategorySentiment,
			Configured:  configured,
			Build:       build("sentiment"),
		},
		{
			ID:          "macro",
			DisplayName: "Macro Analyst",
			Category:    models.CategoryMacro,
			Configured:  configured,
			Build:       build("macro"),
		},
		{
			ID:          "risk",
			DisplayName: "Risk Analyst",
			Category:    models.CategoryRisk,
			Configured:  configured,
			Build:       build("risk"),
		},
	}
}
