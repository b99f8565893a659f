package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	_ "repairdesk/api/swagger" // swagger docs
	"repairdesk/internal/config"
	"repairdesk/internal/handler"
	"repairdesk/internal/middleware"
	"repairdesk/internal/observability/logger"
	"repairdesk/internal/observability/metrics"
	"repairdesk/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

// NewEngine builds the router with the cross-cutting middleware. Routes are added by RegisterRoutes.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics, registry *prometheus.Registry) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(logger.MiddlewareConfig{SkipPaths: []string{"/health", "/metrics"}}))
	router.Use(metrics.GinMiddleware(httpMetrics))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", logger.HeaderRequestID}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return router
}

type Routes struct {
	fx.In

	Auth       *middleware.Authenticator
	Hub        *websocket.Hub
	Clients    *handler.ClientHandler
	Catalog    *handler.CatalogHandler
	Orders     *handler.OrderHandler
	Purchases  *handler.PurchaseHandler
	Statistics *handler.StatisticsHandler
	Audit      *handler.AuditHandler
}

func RegisterRoutes(router *gin.Engine, r Routes) {
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(r.Hub, r.Auth, c)
	})

	api := router.Group("", r.Auth.Authenticate())
	r.Clients.RegisterRoutes(api)
	r.Catalog.RegisterRoutes(api)
	r.Orders.RegisterRoutes(api)
	r.Purchases.RegisterRoutes(api)
	r.Statistics.RegisterRoutes(api)
	r.Audit.RegisterRoutes(api)
}

// RunHTTP serves the router for the lifetime of the application.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, router *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}
