package fx

import (
	"league-advisor/internal/config"
	"league-advisor/internal/logger"
	"league-advisor/internal/riot"
	"league-advisor/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	// api client
	fx.Provide(riot.NewClient),
	fx.Provide(func(c *riot.Client) service.RiotAPI { return c }),
	// svc
	fx.Provide(service.NewAnalyzer),
)
