package main

import (
	"context"
	"time"

	"shop_return_desk/app"
	"shop_return_desk/config"
	"shop_return_desk/logger"
	"shop_return_desk/routes"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config", zap.Error(err))
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, app.ServiceName, cfg.Log.File)

	application := app.MustNew(cfg, log)
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := app.BootstrapFirstAdmin(ctx, cfg, application.Accounts, log); err != nil {
		log.Error("bootstrap first admin", zap.Error(err))
	}
	cancel()

	routes.RegisterRoutes(application.Router, application)

	log.Info("listening", zap.String("port", cfg.Port), zap.Bool("db_enabled", cfg.DBEnabled))
	if err := application.Router.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}
