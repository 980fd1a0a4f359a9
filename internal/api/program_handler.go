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

type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type SessionTemplateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type CreateProgramRequest struct {
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	Sessions    []SessionTemplateRequest `json:"sessions" binding:"required,min=1,dive"`
}

type CoverUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ProgramResponse struct {
	ID          string                   `json:"id"`
	CoachID     string                   `json:"coachId"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Sessions    []domain.SessionTemplate `json:"sessions"`
	CoverURL    string                   `json:"coverUrl,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
}

// --- Handler Methods ---

// CreateProgram godoc
// @Summary Create a program offering
// @Description Creates a new program with its session templates for the authenticated coach.
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param program body CreateProgramRequest true "Program details"
// @Success 201 {object} ProgramResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /coach/programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getActorID(c)
	if !ok {
		return
	}

	templates := make([]domain.SessionTemplate, len(req.Sessions))
	for i, tmpl := range req.Sessions {
		templates[i] = domain.SessionTemplate{Title: tmpl.Title, Description: tmpl.Description}
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), coachID, req.Title, req.Description, templates)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create program.")
		return
	}

	c.JSON(http.StatusCreated, h.mapProgram(c, program))
}

// GetOwnPrograms godoc
// @Summary List the coach's own programs
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProgramResponse
// @Router /coach/programs [get]
func (h *ProgramHandler) GetOwnPrograms(c *gin.Context) {
	coachID, ok := getActorID(c)
	if !ok {
		return
	}

	programs, err := h.programService.GetProgramsByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve programs.")
		return
	}

	c.JSON(http.StatusOK, h.mapPrograms(c, programs))
}

// ListPrograms godoc
// @Summary Browse the marketplace catalogue
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProgramResponse
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programService.ListPrograms(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve programs.")
		return
	}

	c.JSON(http.StatusOK, h.mapPrograms(c, programs))
}

// RequestCoverUpload godoc
// @Summary Request a presigned URL to upload a program cover image
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param upload body CoverUploadRequest true "Cover content type"
// @Success 200 {object} service.CoverUploadResponse
// @Failure 403 {object} gin.H "Not the program owner"
// @Failure 404 {object} gin.H "Program not found"
// @Router /coach/programs/{programId}/cover [post]
func (h *ProgramHandler) RequestCoverUpload(c *gin.Context) {
	var req CoverUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	coachID, ok := getActorID(c)
	if !ok {
		return
	}
	programID, err := primitive.ObjectIDFromHex(c.Param("programId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid program ID format.")
		return
	}

	resp, err := h.programService.RequestCoverUpload(c.Request.Context(), coachID, programID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProgramNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrProgramAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to prepare cover upload.")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// --- Mapping helpers ---

func (h *ProgramHandler) mapProgram(c *gin.Context, program *domain.Program) ProgramResponse {
	resp := ProgramResponse{
		ID:          program.ID.Hex(),
		CoachID:     program.CoachID.Hex(),
		Title:       program.Title,
		Description: program.Description,
		Sessions:    program.Sessions,
		CreatedAt:   program.CreatedAt,
	}
	if program.CoverKey != "" {
		// Best effort: a cover that fails to presign just renders without one.
		if url, err := h.programService.GetCoverURL(c.Request.Context(), program.ID); err == nil {
			resp.CoverURL = url
		}
	}
	return resp
}

func (h *ProgramHandler) mapPrograms(c *gin.Context, programs []domain.Program) []ProgramResponse {
	responses := make([]ProgramResponse, len(programs))
	for i := range programs {
		responses[i] = h.mapProgram(c, &programs[i])
	}
	return responses
}
