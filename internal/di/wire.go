//go:build wireinject
// +build wireinject

package di

import (
	"AnalystDesk/pkg/config"
	"AnalystDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,
		ProvideKafkaProducer,

		// Admission state
		ProvideRateLimitStore,
		ProvideAdmission,

		// Analysis providers
		ProvideServiceBase,
		ProvideRegistry,
		ProvideContextProvider,
		ProvideSynthesizer,
		ProvideDecisionPublisher,

		// Use cases
		ProvideOrchestrator,
		ProvideQueue,

		// HTTP surface and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
