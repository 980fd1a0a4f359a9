package api

import (
	"alcyxob/coachlink/internal/domain" // Needed for RoleMiddleware
	"alcyxob/coachlink/internal/repository"
	"alcyxob/coachlink/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	programService service.ProgramService,
	enrollmentService service.EnrollmentService,
	availabilityService service.AvailabilityService,
	sessionService service.SessionService,
	notificationRepo repository.NotificationRepository,
) {

	authHandler := NewAuthHandler(authService)
	programHandler := NewProgramHandler(programService)
	enrollmentHandler := NewEnrollmentHandler(enrollmentService, sessionService)
	sessionHandler := NewSessionHandler(sessionService)
	profileHandler := NewProfileHandler(availabilityService, notificationRepo)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Marketplace Catalogue ---
		// GET /api/v1/programs - anyone signed in can browse
		protected.GET("/programs", programHandler.ListPrograms)
		// POST /api/v1/programs/{programId}/enroll - clients only
		protected.POST("/programs/:programId/enroll", RoleMiddleware(domain.RoleClient), enrollmentHandler.Enroll)

		// --- Coach Specific Routes ---
		// All routes in this group require authentication (from 'protected')
		// AND the user to have the 'coach' role.
		coachApiGroup := protected.Group("/coach")
		coachApiGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			// POST /api/v1/coach/programs
			coachApiGroup.POST("/programs", programHandler.CreateProgram)
			// GET /api/v1/coach/programs
			coachApiGroup.GET("/programs", programHandler.GetOwnPrograms)
			// POST /api/v1/coach/programs/{programId}/cover
			coachApiGroup.POST("/programs/:programId/cover", programHandler.RequestCoverUpload)

			// --- Weekly Schedule ---
			// PUT /api/v1/coach/availability
			coachApiGroup.PUT("/availability", profileHandler.SetAvailability)
			// GET /api/v1/coach/availability
			coachApiGroup.GET("/availability", profileHandler.GetAvailability)
		}

		// --- Enrollments & Sessions (both parties) ---
		// GET /api/v1/enrollments - clients see their own, coaches their roster
		protected.GET("/enrollments", enrollmentHandler.GetEnrollments)
		// GET /api/v1/enrollments/{enrollmentId}/sessions
		protected.GET("/enrollments/:enrollmentId/sessions", enrollmentHandler.GetSessions)

		// GET /api/v1/sessions/{sessionId}/slots?date=YYYY-MM-DD
		protected.GET("/sessions/:sessionId/slots", sessionHandler.GetSlots)
		// POST /api/v1/sessions/{sessionId}/propose
		protected.POST("/sessions/:sessionId/propose", sessionHandler.ProposeTime)
		// POST /api/v1/sessions/{sessionId}/accept
		protected.POST("/sessions/:sessionId/accept", sessionHandler.AcceptTime)
		// POST /api/v1/sessions/{sessionId}/cancel
		protected.POST("/sessions/:sessionId/cancel", sessionHandler.CancelTime)

		// --- Own Profile (both parties) ---
		meGroup := protected.Group("/me")
		{
			meGroup.GET("/blackouts", profileHandler.ListBlackouts)
			meGroup.POST("/blackouts", profileHandler.AddBlackout)
			meGroup.DELETE("/blackouts", profileHandler.RemoveBlackout)

			meGroup.GET("/notifications", profileHandler.GetNotifications)
			meGroup.POST("/notifications/:notificationId/read", profileHandler.MarkNotificationRead)
		}
	}
}
