//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/citysafe/crimebot/internal/bootstrap"
	"github.com/citysafe/crimebot/internal/domain/chat"
	"github.com/citysafe/crimebot/internal/domain/query"
	"github.com/citysafe/crimebot/internal/infra/config"
	httpiface "github.com/citysafe/crimebot/internal/interface/http"
	"github.com/citysafe/crimebot/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideChatConfig,
		provideModel,
		provideOracle,
		provideForecastEngine,
		provideContextStore,
		provideMessageLog,
		provideGeocoder,
		provideChatClient,
		query.NewExtractor,
		chat.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
