package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	httpx "github.com/voyplan/voyplan-backend/internal/http"
	httpH "github.com/voyplan/voyplan-backend/internal/http/handlers"
	httpMW "github.com/voyplan/voyplan-backend/internal/http/middleware"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/sse"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Trip       *httpH.TripHandler
	Generation *httpH.GenerationHandler
	Events     *httpH.EventsHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *sse.Hub) Handlers {
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Trip:       httpH.NewTripHandler(log, serviceset.Trip),
		Generation: httpH.NewGenerationHandler(log, serviceset.Generation),
		Events:     httpH.NewEventsHandler(log, hub, serviceset.Trip),
	}
}

func wireMiddleware(log *logger.Logger) (Middleware, error) {
	auth, err := httpMW.NewAuthMiddleware(log)
	if err != nil {
		return Middleware{}, fmt.Errorf("init auth middleware: %w", err)
	}
	return Middleware{Auth: auth}, nil
}

func wireRouter(log *logger.Logger, handlerset Handlers, mw Middleware) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		Log:            log,
		AuthMiddleware: mw.Auth,

		TripHandler:       handlerset.Trip,
		GenerationHandler: handlerset.Generation,
		EventsHandler:     handlerset.Events,
		HealthHandler:     handlerset.Health,
	})
}
