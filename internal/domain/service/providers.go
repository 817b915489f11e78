package service

import (
	"context"

	"AnalystDesk/internal/domain/models"
)

// AnalystProvider is one independent remote analysis service. Analyze may
// fail; a failure never aborts the surrounding run on its own.
type AnalystProvider interface {
	Analyze(ctx context.Context, subject string, digest *models.ContextDigest) (models.AnalystOpinion, error)
}

// ContextProvider collects the optional shared context digest for a subject.
// Best-effort: callers absorb any error and proceed without context.
type ContextProvider interface {
	Collect(ctx context.Context, subject string) (*models.ContextDigest, error)
}

// SynthesisProvider reconciles all surviving opinions into one decision.
// Called at most once per run, with no retries.
type SynthesisProvider interface {
	Synthesize(ctx context.Context, subject string, opinions []models.AnalystOpinion, digest *models.ContextDigest) (*models.FinalDecision, error)
}
