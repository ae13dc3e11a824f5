package cli

import (
	"log/slog"
	"os"

	"github.com/sadopc/carbontrack/internal/cache"
	"github.com/sadopc/carbontrack/internal/carbon"
	"github.com/sadopc/carbontrack/internal/config"
	"github.com/sadopc/carbontrack/internal/store"
	"github.com/sadopc/carbontrack/pkg/logger"
)

const gatewayService = "carbontrack-gateway"

func provideLogger(cfg *config.Config) *slog.Logger {
	return logger.New(os.Stdout, cfg.Log.Level, gatewayService)
}

func provideRepository(cfg *config.Config, logger *slog.Logger) (carbon.Repository, error) {
	return store.Open(cfg.Storage, logger)
}

func provideCache(cfg *config.Config, logger *slog.Logger) (carbon.Cache, func()) {
	c := cache.New(cfg.Cache, logger)
	return c, func() {
		if closer, ok := c.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

func provideServiceOptions(cfg *config.Config) carbon.Options {
	return carbon.Options{
		MinRecords:  cfg.Prediction.MinRecords,
		DefaultDays: cfg.Prediction.DefaultDays,
		CacheTTL:    cfg.Cache.TTL,
	}
}
