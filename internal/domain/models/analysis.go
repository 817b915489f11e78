package models

import "time"

// Category classifies a provider for display purposes only.
// Resolved once at registry build time, never re-derived from ids.
type Category string

const (
	CategoryFundamental Category = "fundamental"
	CategoryTechnical   Category = "technical"
	CategorySentiment   Category = "sentiment"
	CategoryMacro       Category = "macro"
	CategoryRisk        Category = "risk"
)

// Stance is a provider's overall directional view on the subject.
type Stance string

const (
	StanceBullish Stance = "bullish"
	StanceBearish Stance = "bearish"
	StanceNeutral Stance = "neutral"
)

// ProviderDescriptor identifies one analysis provider. Identity is ID;
// descriptors are never mutated after creation.
type ProviderDescriptor struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	Category     Category `json:"category"`
	IsConfigured bool     `json:"is_configured"`
}

// DimensionScore is one scored dimension of an opinion.
type DimensionScore struct {
	Score     int    `json:"score"` // 0-100
	Rationale string `json:"rationale"`
}

// AnalystOpinion is the structured report from one provider.
// Immutable once produced; tagged with the producing provider's id.
type AnalystOpinion struct {
	ProviderID   string         `json:"provider_id"`
	Stance       Stance         `json:"stance"`
	Fundamentals DimensionScore `json:"fundamentals"`
	Momentum     DimensionScore `json:"momentum"`
	Risk         DimensionScore `json:"risk"`
	Summary      string         `json:"summary,omitempty"`
}

// ContextDigest is the optional shared input computed once per run and
// passed to every provider.
type ContextDigest struct {
	Subject   string    `json:"subject"`
	Sentiment string    `json:"sentiment"`
	Score     float64   `json:"score"`
	Headlines []string  `json:"headlines,omitempty"`
	AsOf      time.Time `json:"as_of"`
}
