package router

import (
	"time"

	"github.com/Payphone-Digital/storefront/config"
	"github.com/Payphone-Digital/storefront/internal/dto"
	"github.com/Payphone-Digital/storefront/internal/handler"
	"github.com/Payphone-Digital/storefront/internal/middleware"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"github.com/Payphone-Digital/storefront/pkg/metrics"
	"github.com/Payphone-Digital/storefront/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Router struct {
	catalogHandler  *handler.CatalogHandler
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	purchaseHandler *handler.PurchaseHandler
	cacheHandler    *handler.CacheHandler
	healthHandler   *handler.HealthHandler

	validMw *middleware.ValidationMiddleware
	jwtMw   *middleware.JWTMiddleware
	Config  *config.Config
}

func NewRouter(
	catalog *handler.CatalogHandler,
	auth *handler.AuthHandler,
	user *handler.UserHandler,
	purchase *handler.PurchaseHandler,
	cache *handler.CacheHandler,
	health *handler.HealthHandler,

	validMw *middleware.ValidationMiddleware,
	jwtMw *middleware.JWTMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		catalogHandler:  catalog,
		authHandler:     auth,
		userHandler:     user,
		purchaseHandler: purchase,
		cacheHandler:    cache,
		healthHandler:   health,

		validMw: validMw,
		jwtMw:   jwtMw,
		Config:  config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	// ShouldBind* goes through gin's own validator
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Register(v)
		dto.RegisterValidations(v)
	} else {
		logger.GetLogger().Warn("Gin validator engine is not go-playground/validator; custom tags unavailable")
	}

	router := gin.New()

	router.Use(middleware.RequestContext())
	router.Use(middleware.RequestTimeout(r.Config.App.Timeout))
	router.Use(middleware.Logging())
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityLogging())
	router.Use(middleware.CORS())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.BasicHealth)
		api.GET("/health/ready", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, time.Duration(r.Config.RateLimit.Duration)*time.Second))

			r.catalogRoutes(v1)
			r.authRoutes(v1)
			r.userRoutes(v1)
			r.purchaseRoutes(v1)

			if r.Config.App.Debug {
				r.cacheRoutes(v1)
			}
		}
	}

	logger.GetLogger().Info("Routes registered",
		zap.Int("count", len(router.Routes())),
		zap.Bool("cache_admin", r.Config.App.Debug),
	)

	return router
}

// body returns a ValidateRequestBody factory for T.
func body[T any]() func() interface{} {
	return func() interface{} { return new(T) }
}

// cacheRoutes defines catalog cache management routes
func (r *Router) cacheRoutes(rg *gin.RouterGroup) {
	cache := rg.Group("/cache")
	cache.Use(r.jwtMw.RequireAuth())
	{
		cache.GET("/stats", r.cacheHandler.GetCacheStats)
		cache.POST("/invalidate", r.validMw.ValidateRequestBody(body[dto.InvalidateCacheRequest]()), r.cacheHandler.InvalidateCache)
	}
}
