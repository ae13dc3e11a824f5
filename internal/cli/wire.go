//go:build wireinject
// +build wireinject

package cli

import (
	"github.com/google/wire"

	"github.com/sadopc/carbontrack/internal/bootstrap"
	"github.com/sadopc/carbontrack/internal/carbon"
	"github.com/sadopc/carbontrack/internal/config"
	"github.com/sadopc/carbontrack/internal/server"
)

func initializeServer(cfg *config.Config) (*bootstrap.App, func(), error) {
	wire.Build(
		provideLogger,
		provideRepository,
		provideCache,
		provideServiceOptions,
		carbon.NewService,
		server.NewMetrics,
		server.NewHandler,
		wire.Bind(new(server.EmissionService), new(*carbon.Service)),
		server.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
