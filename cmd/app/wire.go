//go:build wireinject
// +build wireinject

package main

import (
	"joingo/config"
	"joingo/internal/command"
	"joingo/internal/cron"
	"joingo/internal/database"
	storeRepo "joingo/internal/database/store/repository"
	"joingo/internal/handler"
	"joingo/internal/identity"
	"joingo/internal/middleware"
	"joingo/internal/realtime"
	"joingo/internal/router"
	"joingo/internal/service"
	"joingo/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			identity.ProviderSet,
			service.ProviderSet,
			realtime.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newHttpServer,
			telemetry.ProviderSet,
			newApp,
		),
	)
}

// wireCommand init application.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(
		wire.Build(
			database.NewDocumentStore,
			storeRepo.ProviderSet,
			telemetry.NewTrace,
			command.ProviderSet,
		),
	)
}
