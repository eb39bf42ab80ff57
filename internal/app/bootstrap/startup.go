// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/roadmaphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// RoadmapHub applies the configured model deadline and, when seed_roadmaps
// is set, fills an empty catalog with the starter roadmaps.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Long: appCfg.GenerateTimeout})
	t := timeouts.Current()
	logger.Info("request deadlines",
		zap.Duration("ping", t.Ping),
		zap.Duration("short", t.Short),
		zap.Duration("medium", t.Medium),
		zap.Duration("long", t.Long),
	)

	if appCfg.SeedRoadmaps {
		if _, err := seedRoadmaps(ctx, deps.MongoDatabase, logger); err != nil {
			logger.Error("seeding roadmaps failed", zap.Error(err))
			return err
		}
	}
	return nil
}
