package repository

import (
	"context"
	"time"

	"AnalystDesk/internal/domain/models"
	"AnalystDesk/internal/domain/repository"
	pkgkafka "AnalystDesk/pkg/kafka"
)

// KafkaDecisionPublisher implements DecisionPublisher over a Kafka topic.
// Events are keyed by subject (reports) or provider id (disable events) so
// per-key ordering holds for downstream consumers.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaDecisionPublisher creates a Kafka-backed decision publisher.
func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) repository.DecisionPublisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

type decisionEvent struct {
	Kind       string                      `json:"kind"` // report | provider_disabled
	ProviderID string                      `json:"provider_id,omitempty"`
	Report     *models.CollaborativeReport `json:"report,omitempty"`
	EmittedAt  time.Time                   `json:"emitted_at"`
}

func (p *KafkaDecisionPublisher) PublishReport(ctx context.Context, report *models.CollaborativeReport) error {
	ev := decisionEvent{Kind: "report", Report: report, EmittedAt: time.Now()}
	return p.producer.Publish(ctx, p.topic, []byte(report.Subject), ev)
}

func (p *KafkaDecisionPublisher) PublishProviderDisabled(ctx context.Context, providerID string) error {
	ev := decisionEvent{Kind: "provider_disabled", ProviderID: providerID, EmittedAt: time.Now()}
	return p.producer.Publish(ctx, p.topic, []byte(providerID), ev)
}

func (p *KafkaDecisionPublisher) Close() error {
	return p.producer.Close()
}
