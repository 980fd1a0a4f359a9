package api

import (
	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/repository"
	"alcyxob/coachlink/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileHandler serves the authenticated profile's own scheduling data:
// the coach weekly schedule, blackouts, and the notification inbox.
type ProfileHandler struct {
	availabilityService service.AvailabilityService
	notificationRepo    repository.NotificationRepository
}

func NewProfileHandler(availabilityService service.AvailabilityService, notificationRepo repository.NotificationRepository) *ProfileHandler {
	return &ProfileHandler{
		availabilityService: availabilityService,
		notificationRepo:    notificationRepo,
	}
}

// --- DTOs ---

type DayWindowRequest struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // "hh:mm AM/PM", required when enabled
	End     string `json:"end"`
}

type SetAvailabilityRequest struct {
	Days [7]DayWindowRequest `json:"days" binding:"required"` // Index 0 = Sunday
}

type BlackoutRequest struct {
	Time time.Time `json:"time" binding:"required"` // RFC3339
}

// --- Availability ---

// SetAvailability godoc
// @Summary Set the coach's weekly schedule
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param schedule body SetAvailabilityRequest true "Weekly windows, Sunday first"
// @Success 200 {object} domain.WeeklyAvailability
// @Failure 400 {object} gin.H "Invalid schedule"
// @Router /coach/availability [put]
func (h *ProfileHandler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getActorID(c)
	if !ok {
		return
	}

	var days [7]domain.DayWindow
	for i, day := range req.Days {
		days[i] = domain.DayWindow{Enabled: day.Enabled, Start: day.Start, End: day.End}
	}

	availability, err := h.availabilityService.SetWeeklySchedule(c.Request.Context(), coachID, days)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSchedule) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to save schedule.")
		}
		return
	}

	c.JSON(http.StatusOK, availability)
}

// GetAvailability godoc
// @Summary Get the coach's weekly schedule
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.WeeklyAvailability
// @Failure 404 {object} gin.H "No schedule set up yet"
// @Router /coach/availability [get]
func (h *ProfileHandler) GetAvailability(c *gin.Context) {
	coachID, ok := getActorID(c)
	if !ok {
		return
	}

	availability, err := h.availabilityService.GetWeeklySchedule(c.Request.Context(), coachID)
	if err != nil {
		if errors.Is(err, service.ErrAvailabilityNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve schedule.")
		}
		return
	}

	c.JSON(http.StatusOK, availability)
}

// --- Blackouts ---

// ListBlackouts godoc
// @Summary List the profile's blackout instants
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} time.Time
// @Router /me/blackouts [get]
func (h *ProfileHandler) ListBlackouts(c *gin.Context) {
	profileID, ok := getActorID(c)
	if !ok {
		return
	}

	times, err := h.availabilityService.ListBlackouts(c.Request.Context(), profileID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve blackouts.")
		return
	}

	c.JSON(http.StatusOK, times)
}

// AddBlackout godoc
// @Summary Declare a blackout instant
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blackout body BlackoutRequest true "Instant (RFC3339)"
// @Success 204
// @Router /me/blackouts [post]
func (h *ProfileHandler) AddBlackout(c *gin.Context) {
	var req BlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	profileID, ok := getActorID(c)
	if !ok {
		return
	}

	if err := h.availabilityService.AddBlackout(c.Request.Context(), profileID, req.Time); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to save blackout.")
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveBlackout godoc
// @Summary Withdraw a blackout instant
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blackout body BlackoutRequest true "Instant (RFC3339)"
// @Success 204
// @Failure 404 {object} gin.H "No blackouts for this profile"
// @Router /me/blackouts [delete]
func (h *ProfileHandler) RemoveBlackout(c *gin.Context) {
	var req BlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	profileID, ok := getActorID(c)
	if !ok {
		return
	}

	err := h.availabilityService.RemoveBlackout(c.Request.Context(), profileID, req.Time)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "No blackouts declared for this profile.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to remove blackout.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Notifications ---

// GetNotifications godoc
// @Summary List the profile's notification inbox, newest first
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Notification
// @Router /me/notifications [get]
func (h *ProfileHandler) GetNotifications(c *gin.Context) {
	profileID, ok := getActorID(c)
	if !ok {
		return
	}

	notifications, err := h.notificationRepo.GetByRecipientID(c.Request.Context(), profileID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications.")
		return
	}

	if notifications == nil {
		c.JSON(http.StatusOK, []domain.Notification{})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead godoc
// @Summary Mark one inbox entry as read
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Param notificationId path string true "Notification ID"
// @Success 204
// @Failure 404 {object} gin.H "Notification not found"
// @Router /me/notifications/{notificationId}/read [post]
func (h *ProfileHandler) MarkNotificationRead(c *gin.Context) {
	profileID, ok := getActorID(c)
	if !ok {
		return
	}
	notificationID, err := primitive.ObjectIDFromHex(c.Param("notificationId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid notification ID format.")
		return
	}

	err = h.notificationRepo.MarkRead(c.Request.Context(), notificationID, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Notification not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update notification.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
