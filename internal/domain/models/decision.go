package models

import "time"

// Action is the synthesized recommendation on the subject.
type Action string

const (
	ActionAct   Action = "act"
	ActionHold  Action = "hold"
	ActionAvoid Action = "avoid"
)

// Confidence grades how strongly the synthesis stands behind the action.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FinalDecision is the synthesis output. Produced exactly once per run,
// by the synthesis stage only.
type FinalDecision struct {
	CompositeScore int        `json:"composite_score"` // 0-100
	Action         Action     `json:"action"`
	Confidence     Confidence `json:"confidence"`
	Rationale      string     `json:"rationale"`
	PositionSizing string     `json:"position_sizing,omitempty"`
	StopConditions []string   `json:"stop_conditions,omitempty"`
	WatchItems     []string   `json:"watch_items,omitempty"`
}

// CollaborativeReport is the orchestrator's sole output: the final decision
// plus the surviving opinions and the shared context, if any was collected.
type CollaborativeReport struct {
	Subject           string           `json:"subject"`
	Decision          *FinalDecision   `json:"decision"`
	Opinions          []AnalystOpinion `json:"opinions"`
	Context           *ContextDigest   `json:"context,omitempty"`
	DisabledProviders []string         `json:"disabled_providers,omitempty"`
	GeneratedAt       time.Time        `json:"generated_at"`
}
