package main

import (
	"repairdesk/internal/config"
	"repairdesk/internal/database"
	"repairdesk/internal/handler"
	"repairdesk/internal/middleware"
	"repairdesk/internal/observability/logger"
	"repairdesk/internal/observability/metrics"
	"repairdesk/internal/repository"
	"repairdesk/internal/server"
	"repairdesk/internal/service"
	"repairdesk/internal/websocket"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// @title           RepairDesk API
// @version         1.0
// @description     Order billing and ledger API of a repair-shop CRM.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		metrics.Module,
		database.Module,
		repository.Module,
		middleware.Module,
		websocket.Module,
		service.Module,
		handler.Module,
		server.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}
