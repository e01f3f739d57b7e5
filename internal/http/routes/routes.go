package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/dali/internal/http/handlers"
	"github.com/phambaophuc/dali/internal/http/middleware"
	"github.com/phambaophuc/dali/internal/observability"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler  *handlers.ImageHandler
	healthHandler *handlers.HealthHandler
	observer      observability.Observer
	logger        *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	healthHandler *handlers.HealthHandler,
	observer observability.Observer,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler:  imageHandler,
		healthHandler: healthHandler,
		observer:      observer,
		logger:        logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", r.healthHandler.HealthCheck)

	// The whole request is carried in the query string.
	router.GET("/", middleware.Metrics(r.observer), r.imageHandler.ProcessImage)

	return router
}
