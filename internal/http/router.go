package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/voyplan/voyplan-backend/internal/http/handlers"
	httpMW "github.com/voyplan/voyplan-backend/internal/http/middleware"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	TripHandler       *httpH.TripHandler
	GenerationHandler *httpH.GenerationHandler
	EventsHandler     *httpH.EventsHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("voyplan-backend"))
	r.Use(httpMW.RequestTrace())
	r.Use(httpMW.CORS())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	if cfg.TripHandler != nil {
		api.POST("/trips", cfg.TripHandler.Create)
		api.GET("/trips", cfg.TripHandler.List)
		api.GET("/trips/:id", cfg.TripHandler.Get)
		api.PUT("/trips/:id/preferences", cfg.TripHandler.UpsertPreferences)
		api.GET("/trips/:id/preferences", cfg.TripHandler.GetPreferences)
	}

	if cfg.GenerationHandler != nil {
		api.POST("/trips/:id/generation/start", cfg.GenerationHandler.Start)
		api.POST("/trips/:id/generation/pause", cfg.GenerationHandler.Pause)
		api.POST("/trips/:id/generation/resume", cfg.GenerationHandler.Resume)
		api.POST("/trips/:id/generation/retry", cfg.GenerationHandler.Retry)
		api.GET("/trips/:id/generation", cfg.GenerationHandler.Status)
		api.GET("/trips/:id/days", cfg.GenerationHandler.Days)
	}

	if cfg.EventsHandler != nil {
		api.GET("/trips/:id/events", cfg.EventsHandler.Stream)
	}

	return r
}
