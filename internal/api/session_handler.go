package api

import (
	"alcyxob/coachlink/internal/scheduling"
	"alcyxob/coachlink/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs ---

type ProposeTimeRequest struct {
	Time time.Time `json:"time" binding:"required"` // RFC3339
}

// --- Handler Methods ---

// GetSlots godoc
// @Summary List bookable slots for a session on a date
// @Description Computes the half-hour slots offerable to the viewer, honoring the coach's weekly windows and both parties' blackouts.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {array} scheduling.Slot
// @Failure 403 {object} gin.H "Not a party of this enrollment"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{sessionId}/slots [get]
func (h *SessionHandler) GetSlots(c *gin.Context) {
	viewerID, ok := getActorID(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'date' must be YYYY-MM-DD.")
		return
	}

	slots, err := h.sessionService.GetAvailableSlots(c.Request.Context(), sessionID, date, viewerID)
	if err != nil {
		h.abortWithSchedulingError(c, err)
		return
	}

	if slots == nil {
		c.JSON(http.StatusOK, []scheduling.Slot{})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// ProposeTime godoc
// @Summary Propose a time for a session
// @Description Sets the proposed time and resets the other party's consent. The time must be a currently offered slot.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param proposal body ProposeTimeRequest true "Proposed time"
// @Success 200 {object} service.SessionView
// @Failure 409 {object} gin.H "Slot no longer available"
// @Router /sessions/{sessionId}/propose [post]
func (h *SessionHandler) ProposeTime(c *gin.Context) {
	var req ProposeTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	viewerID, ok := getActorID(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	view, err := h.sessionService.ProposeTime(c.Request.Context(), sessionID, req.Time, viewerID)
	if err != nil {
		h.abortWithSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AcceptTime godoc
// @Summary Accept the currently proposed time
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} service.SessionView
// @Failure 409 {object} gin.H "No proposal to accept"
// @Router /sessions/{sessionId}/accept [post]
func (h *SessionHandler) AcceptTime(c *gin.Context) {
	viewerID, ok := getActorID(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	view, err := h.sessionService.AcceptTime(c.Request.Context(), sessionID, viewerID)
	if err != nil {
		h.abortWithSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelTime godoc
// @Summary Cancel a scheduled session
// @Description Coaches may cancel any time; clients only more than 24 hours ahead.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} service.SessionView
// @Failure 409 {object} gin.H "Not cancellable"
// @Router /sessions/{sessionId}/cancel [post]
func (h *SessionHandler) CancelTime(c *gin.Context) {
	viewerID, ok := getActorID(c)
	if !ok {
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(c.Param("sessionId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}

	view, err := h.sessionService.CancelTime(c.Request.Context(), sessionID, viewerID)
	if err != nil {
		h.abortWithSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// abortWithSchedulingError maps negotiation errors onto HTTP statuses.
// Invalid slots and illegal transitions carry their specific message;
// concurrency and data-integrity trouble collapse to a generic one.
func (h *SessionHandler) abortWithSchedulingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrSlotUnavailable),
		errors.Is(err, scheduling.ErrCancelWindow),
		errors.Is(err, scheduling.ErrIllegalTransition):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotEnrollmentParty):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConcurrentUpdate):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Something went wrong, please try again.")
	}
}
