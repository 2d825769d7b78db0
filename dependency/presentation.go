package dependency

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/promptroom/api/infrastructure/cache"
	"github.com/promptroom/api/infrastructure/metrics"
	"github.com/promptroom/api/presentation/controllers/balance"
	"github.com/promptroom/api/presentation/controllers/message"
	"github.com/promptroom/api/presentation/controllers/room"
	"github.com/promptroom/api/presentation/middlewares"
	"github.com/promptroom/api/presentation/routes"
)

func (c *Container) initMiddleware() {
	c.ETagStore = middlewares.NewInMemoryETagStore()

	c.Logger.Info("Middleware components initialized successfully")
}

func (c *Container) initControllers() {
	c.RoomController = room.NewRoomController(c.HostUC)
	c.MessageController = message.NewMessageController(c.MessageUC)
	c.BalanceController = balance.NewBalanceController(c.BalanceUC, c.Config)

	c.Logger.Info("Controllers initialized successfully")
}

func (c *Container) SetupRouter() *gin.Engine {
	switch c.Config.Server.RunMode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	binding.Validator = new(middlewares.DefaultValidator)

	router := gin.Default()

	if c.Config.Sentry.Dsn != "" {
		router.Use(sentrygin.New(sentrygin.Options{
			Repanic:         true,
			WaitForDelivery: false,
			Timeout:         5 * time.Second,
		}))
	}

	if c.Config.IsProduction() {
		router.Use(middlewares.ForceHttps(c.Config))
	}

	router.Use(middlewares.GinLogger(c.Logger))
	router.Use(middlewares.CorsMiddleware(c.Config))

	router.GET("/health", c.healthCheckHandler)

	c.registerObservabilityRoutes(router)

	c.registerAPIRoutes(router)

	c.Logger.Info("Router configured successfully")

	return router
}

func (c *Container) registerAPIRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.Use(middlewares.RateLimiterMiddleware(cache.GetRedis(), c.Logger, middlewares.LenientRateLimiterConfig()))
		v1.Use(middlewares.ETagMiddleware(c.ETagStore))

		postLimiter := middlewares.RateLimiterMiddleware(cache.GetRedis(), c.Logger, middlewares.PromptRateLimiterConfig())

		routes.RoomRoutes(v1, c.RoomController)
		routes.MessageRoutes(v1, c.MessageController, postLimiter)
		routes.BalanceRoutes(v1, c.BalanceController)
	}
}

func (c *Container) healthCheckHandler(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (c *Container) registerObservabilityRoutes(router *gin.Engine) {
	metricsGroup := router.Group("/observability")
	{
		metrics.GetHandler(metricsGroup, c.MetricsManager)
	}
}

func (c *Container) Shutdown() error {
	c.Logger.Info("Shutting down dependencies...")

	if c.LogTrimJob != nil {
		c.LogTrimJob.Stop()
	}

	cache.CloseRedis()

	if err := c.Logger.Log.Sync(); err != nil {
		c.Logger.Error("failed to sync logger", zap.Error(err))
	}

	return nil
}
