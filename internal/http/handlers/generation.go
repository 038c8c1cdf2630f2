package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/voyplan/voyplan-backend/internal/http/response"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/services"
)

type GenerationHandler struct {
	log *logger.Logger
	gen services.GenerationService
}

func NewGenerationHandler(baseLog *logger.Logger, gen services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		log: baseLog.With("handler", "GenerationHandler"),
		gen: gen,
	}
}

// Start kicks off (or fully restarts) itinerary generation for a trip. The
// call returns as soon as the run is accepted; progress arrives over SSE or
// via the status endpoint.
func (h *GenerationHandler) Start(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	rec, err := h.gen.Start(c.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"generation": rec})
}

func (h *GenerationHandler) Pause(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	rec, err := h.gen.Pause(c.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"generation": rec})
}

func (h *GenerationHandler) Resume(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	rec, err := h.gen.Resume(c.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"generation": rec})
}

// Retry re-queues failed days; ?day=N retries just that day.
func (h *GenerationHandler) Retry(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	dayNumber := 0
	if raw := strings.TrimSpace(c.Query("day")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
			return
		}
		dayNumber = n
	}
	rec, err := h.gen.Retry(c.Request.Context(), userID, tripID, dayNumber)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondAccepted(c, gin.H{"generation": rec})
}

func (h *GenerationHandler) Status(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	rec, err := h.gen.Status(c.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"generation": rec})
}

func (h *GenerationHandler) Days(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	days, err := h.gen.Days(c.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"days": days})
}
