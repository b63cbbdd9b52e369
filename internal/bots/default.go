// internal/bots/default.go
package bots

import (
	"ufunda-bots/internal/bots/gmail"
	"ufunda-bots/internal/bots/nsfas"
	"ufunda-bots/internal/bots/stellenbosch"
	"ufunda-bots/internal/bots/uct"
	"ufunda-bots/internal/bots/uj"
	"ufunda-bots/internal/bots/wits"
	"ufunda-bots/internal/common/config"
	"ufunda-bots/internal/common/logger"
)

// Default builds the registry of built-in bots, honoring per-bot enablement
// from config. A bot with no config block is registered with defaults.
func Default(cfg *config.Config, log logger.Logger) *Registry {
	r := NewRegistry()

	register := func(id string, build func(config.BotConfig, logger.Logger) Adapter) {
		botCfg, ok := cfg.Bots[id]
		if ok && !botCfg.Enabled {
			log.Info("bot disabled by config", map[string]interface{}{"bot": id})
			return
		}
		r.Register(build(botCfg, log))
	}

	register(gmail.BotID, func(c config.BotConfig, l logger.Logger) Adapter { return gmail.NewService(c, l) })
	register(stellenbosch.BotID, func(c config.BotConfig, l logger.Logger) Adapter { return stellenbosch.NewService(c, l) })
	register(wits.BotID, func(c config.BotConfig, l logger.Logger) Adapter { return wits.NewService(c, l) })
	register(uj.BotID, func(c config.BotConfig, l logger.Logger) Adapter { return uj.NewService(c, l) })
	register(uct.BotID, func(c config.BotConfig, l logger.Logger) Adapter { return uct.NewService(c, l) })
	register(nsfas.BotID, func(c config.BotConfig, l logger.Logger) Adapter { return nsfas.NewService(c, l) })

	return r
}
