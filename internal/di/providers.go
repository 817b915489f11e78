package di

import (
	"fmt"

	domrepo "AnalystDesk/internal/domain/repository"
	domsvc "AnalystDesk/internal/domain/service"
	"AnalystDesk/internal/handler/api"
	"AnalystDesk/internal/registry"
	internalrepo "AnalystDesk/internal/repository"
	"AnalystDesk/internal/service/admission"
	"AnalystDesk/internal/services/analysts"
	"AnalystDesk/internal/usecase"
	"AnalystDesk/pkg/config"
	pkgkafka "AnalystDesk/pkg/kafka"
	xlogger "AnalystDesk/pkg/logger"
	"AnalystDesk/pkg/metrics"
	pkgqueue "AnalystDesk/pkg/queue"
	"AnalystDesk/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRedisClient creates a Redis client, or nil when Redis is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideRateLimitStore backs admission state with Redis when available so
// limits are shared across processes; otherwise an in-memory store.
func ProvideRateLimitStore(cfg *config.Config, cli *redis.Client) domrepo.RateLimitStore {
	if cli != nil {
		return internalrepo.NewRedisRateLimitStore(cli)
	}
	return internalrepo.NewMemoryRateLimitStore()
}

// ProvideAdmission creates the admission controller with the configured
// per-provider limits.
func ProvideAdmission(cfg *config.Config, store domrepo.RateLimitStore) *admission.Controller {
	return admission.New(store, usecase.LimitsFromConfig(cfg))
}

// ProvideServiceBase creates the shared HTTP client for analysis endpoints.
func ProvideServiceBase(cfg *config.Config) *analysts.ServiceBase {
	return analysts.NewServiceBase(cfg.Analysis.ServiceURL, cfg.Analysis.APIKey, cfg.Analysis.CallTimeout)
}

// ProvideRegistry builds the provider registry from the built-in catalog.
func ProvideRegistry(cfg *config.Config, base *analysts.ServiceBase) *registry.Registry {
	return registry.New(analysts.Catalog(base, cfg.Analysis.ServiceURL != ""))
}

// ProvideContextProvider creates the sentiment context collector, or nil
// when the context stage is disabled.
func ProvideContextProvider(cfg *config.Config, base *analysts.ServiceBase) domsvc.ContextProvider {
	if !cfg.Analysis.ContextEnabled {
		return nil
	}
	return analysts.NewHTTPContextProvider(base)
}

// ProvideSynthesizer creates the synthesis stage client.
func ProvideSynthesizer(base *analysts.ServiceBase) domsvc.SynthesisProvider {
	return analysts.NewHTTPSynthesizer(base)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when eventing is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher wraps the producer as a decision event publisher.
func ProvideDecisionPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.DecisionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideOrchestrator wires the three-stage analysis pipeline.
func ProvideOrchestrator(
	cfg *config.Config,
	logger *xlogger.Logger,
	reg *registry.Registry,
	adm *admission.Controller,
	contextProv domsvc.ContextProvider,
	synth domsvc.SynthesisProvider,
	m domrepo.Metrics,
	publisher domrepo.DecisionPublisher,
) *usecase.CouncilOrchestrator {
	return usecase.NewCouncilOrchestrator(
		logger, reg, adm, contextProv, synth, m, publisher,
		cfg.Analysis.CallTimeout, cfg.Analysis.ContextTimeout,
	)
}

// ProvideQueue creates the Redis job queue with the analysis job registered,
// or nil when the async path is disabled.
func ProvideQueue(
	cfg *config.Config,
	logger *xlogger.Logger,
	cli *redis.Client,
	orch *usecase.CouncilOrchestrator,
) *pkgqueue.RedisQueue {
	if !cfg.Queue.Enabled || cli == nil {
		return nil
	}
	job := usecase.NewAnalyzeJob(logger, orch, usecase.SettingsFromConfig(cfg))
	return pkgqueue.NewRedisConsumer(logger, &pkgqueue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryMax,
		RetryDelay: cfg.Queue.RetryDelay,
	}, cli, []pkgqueue.Job{job})
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	cfg *config.Config,
	logger *xlogger.Logger,
	orch *usecase.CouncilOrchestrator,
	reg *registry.Registry,
	rq *pkgqueue.RedisQueue,
) *api.AnalysisHandler {
	var qs pkgqueue.QueueService
	if rq != nil {
		qs = rq
	}
	return api.NewAnalysisHandler(logger, orch, reg, qs, usecase.SettingsFromConfig(cfg))
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler *api.AnalysisHandler,
	rq *pkgqueue.RedisQueue,
	publisher domrepo.DecisionPublisher,
) *server.App {
	return server.New(cfg, logger, handler, rq, publisher)
}
