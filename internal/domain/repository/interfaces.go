package repository

import (
	"context"
	"time"

	"AnalystDesk/internal/domain/models"
)

// RateLimitStore persists the ordered call timestamps per provider.
// The orchestrator does not own the storage; it only reads and writes
// through this interface. Implementations must tolerate unknown provider
// ids by returning an empty list.
type RateLimitStore interface {
	Get(ctx context.Context, providerID string) ([]time.Time, error)
	Put(ctx context.Context, providerID string, stamps []time.Time) error
}

// DecisionPublisher emits completed reports and provider-disable events to
// downstream consumers. Implementations may be nil-safe no-ops when eventing
// is disabled.
type DecisionPublisher interface {
	PublishReport(ctx context.Context, report *models.CollaborativeReport) error
	PublishProviderDisabled(ctx context.Context, providerID string) error
	Close() error
}

// Metrics records orchestration telemetry.
type Metrics interface {
	RecordRun(outcome string)
	RecordProviderCall(providerID, result string)
	RecordPhaseLatency(phase string, seconds float64)
}
