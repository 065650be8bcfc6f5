//go:build wireinject
// +build wireinject

package main

import (
	"github.com/Jayjokeer/loyalty-api/config"
	"github.com/Jayjokeer/loyalty-api/dao"
	"github.com/Jayjokeer/loyalty-api/dao/cache"
	"github.com/Jayjokeer/loyalty-api/handler"
	"github.com/Jayjokeer/loyalty-api/pkg/client"
	"github.com/Jayjokeer/loyalty-api/pkg/database"
	"github.com/Jayjokeer/loyalty-api/pkg/server"
	"github.com/Jayjokeer/loyalty-api/service"

	"github.com/google/wire"
)

func InitServer(cfg *config.Config) (*server.AppProvider, func(), error) {
	wire.Build(
		database.NewDB,
		client.NewRedisClient,
		server.NewGinEngine,

		dao.ProviderSet,
		cache.ProviderSet,
		service.ProviderSet,

		wire.Struct(new(handler.Health), "*"),
		wire.Struct(new(handler.Customer), "*"),
		wire.Struct(new(handler.Point), "*"),
		wire.Struct(new(handler.Wallet), "*"),

		wire.Struct(new(server.AppProvider), "*"),
		wire.Struct(new(server.Handlers), "*"),
	)
	return nil, nil, nil
}
