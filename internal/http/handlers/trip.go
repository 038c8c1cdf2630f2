package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voyplan/voyplan-backend/internal/http/response"
	"github.com/voyplan/voyplan-backend/internal/platform/apperr"
	"github.com/voyplan/voyplan-backend/internal/platform/ctxutil"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/services"
)

type TripHandler struct {
	log   *logger.Logger
	trips services.TripService
}

func NewTripHandler(baseLog *logger.Logger, trips services.TripService) *TripHandler {
	return &TripHandler{
		log:   baseLog.With("handler", "TripHandler"),
		trips: trips,
	}
}

// requestUser pulls the authenticated user set by the auth middleware.
func requestUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing authenticated user"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func tripIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("%w: invalid trip id", apperr.ErrInvalidArgument))
		return uuid.Nil, false
	}
	return id, true
}

func (h *TripHandler) Create(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var in services.CreateTripInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	trip, err := h.trips.Create(c.Request.Context(), userID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"trip": trip})
}

func (h *TripHandler) List(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	trips, err := h.trips.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"trips": trips})
}

func (h *TripHandler) Get(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	trip, err := h.trips.Get(c.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"trip": trip})
}

func (h *TripHandler) UpsertPreferences(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	var in services.PreferencesInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	prefs, err := h.trips.UpsertPreferences(c.Request.Context(), userID, tripID, in)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

func (h *TripHandler) GetPreferences(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	tripID, ok := tripIDParam(c)
	if !ok {
		return
	}
	prefs, err := h.trips.GetPreferences(c.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}
