package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/voyplan/voyplan-backend/internal/http/response"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/services"
	"github.com/voyplan/voyplan-backend/internal/sse"
)

// EventsHandler exposes the per-trip SSE stream of generation events.
type EventsHandler struct {
	log   *logger.Logger
	hub   *sse.Hub
	trips services.TripService
}

func NewEventsHandler(baseLog *logger.Logger, hub *sse.Hub, trips services.TripService) *EventsHandler {
	return &EventsHandler{
		log:   baseLog.With("handler", "EventsHandler"),
		hub:   hub,
		trips: trips,
	}
}

// Stream subscribes the caller to the trip's event channel and holds the
// connection open. Ownership is checked before the subscription is created.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	if _, err := h.trips.Get(c.Request.Context(), userID, tripID); err != nil {
		response.RespondAppError(c, err)
		return
	}

	client := h.hub.NewClient(userID)
	h.hub.AddChannel(client, sse.TripChannel(tripID))
	defer h.hub.CloseClient(client)

	h.log.Debug("SSE stream opened", "trip_id", tripID, "user_id", userID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
