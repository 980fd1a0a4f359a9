package api

import (
	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/service"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
	sessionService    service.SessionService
}

func NewEnrollmentHandler(enrollmentService service.EnrollmentService, sessionService service.SessionService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		sessionService:    sessionService,
	}
}

// --- DTOs ---

type EnrollmentResponse struct {
	ID        string    `json:"id"`
	ProgramID string    `json:"programId"`
	CoachID   string    `json:"coachId"`
	ClientID  string    `json:"clientId"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Handler Methods ---

// Enroll godoc
// @Summary Enroll the authenticated client in a program
// @Description Creates the enrollment and materializes its sessions from the program's templates.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 201 {object} EnrollmentResponse
// @Failure 404 {object} gin.H "Program not found"
// @Failure 409 {object} gin.H "Already enrolled"
// @Router /programs/{programId}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	clientID, ok := getActorID(c)
	if !ok {
		return
	}
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), clientID, programID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAlreadyEnrolled):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrOwnProgram):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to enroll.")
		}
		return
	}

	c.JSON(http.StatusCreated, mapEnrollmentToResponse(enrollment))
}

// GetEnrollments godoc
// @Summary List the viewer's enrollments
// @Description Clients get their own enrollments; coaches get their roster.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} EnrollmentResponse
// @Router /enrollments [get]
func (h *EnrollmentHandler) GetEnrollments(c *gin.Context) {
	viewerID, ok := getActorID(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token.")
		return
	}

	var enrollments []domain.Enrollment
	if role == domain.RoleCoach {
		enrollments, err = h.enrollmentService.GetEnrollmentsByCoach(c.Request.Context(), viewerID)
	} else {
		enrollments, err = h.enrollmentService.GetEnrollmentsByClient(c.Request.Context(), viewerID)
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve enrollments.")
		return
	}

	responses := make([]EnrollmentResponse, len(enrollments))
	for i := range enrollments {
		responses[i] = mapEnrollmentToResponse(&enrollments[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetSessions godoc
// @Summary List an enrollment's sessions with the viewer's derived phase
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {array} service.SessionView
// @Failure 403 {object} gin.H "Not a party of this enrollment"
// @Failure 404 {object} gin.H "Enrollment not found"
// @Router /enrollments/{enrollmentId}/sessions [get]
func (h *EnrollmentHandler) GetSessions(c *gin.Context) {
	viewerID, ok := getActorID(c)
	if !ok {
		return
	}
	enrollmentID, err := primitive.ObjectIDFromHex(c.Param("enrollmentId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid enrollment ID format.")
		return
	}

	sessions, err := h.sessionService.GetSessions(c.Request.Context(), enrollmentID, viewerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEnrollmentNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotEnrollmentParty):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions.")
		}
		return
	}

	c.JSON(http.StatusOK, sessions)
}

func mapEnrollmentToResponse(enrollment *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:        enrollment.ID.Hex(),
		ProgramID: enrollment.ProgramID.Hex(),
		CoachID:   enrollment.CoachID.Hex(),
		ClientID:  enrollment.ClientID.Hex(),
		CreatedAt: enrollment.CreatedAt,
	}
}
