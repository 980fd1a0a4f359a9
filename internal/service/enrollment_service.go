package service

import (
	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/notify"
	"alcyxob/coachlink/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("client is already enrolled in this program")
	ErrNotEnrollmentParty = errors.New("profile is not a party of this enrollment")
	ErrOwnProgram         = errors.New("coaches cannot enroll in their own programs")
)

// --- Service Interface ---
type EnrollmentService interface {
	Enroll(ctx context.Context, clientID, programID primitive.ObjectID) (*domain.Enrollment, error)
	GetEnrollment(ctx context.Context, enrollmentID, viewerID primitive.ObjectID) (*domain.Enrollment, error)
	GetEnrollmentsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Enrollment, error)
	GetEnrollmentsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Enrollment, error)
}

// --- Service Implementation ---

type enrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	programRepo    repository.ProgramRepository
	sessionRepo    repository.SessionRepository
	notifier       notify.Notifier
	logger         *zap.Logger
}

// NewEnrollmentService creates a new instance of enrollmentService.
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	programRepo repository.ProgramRepository,
	sessionRepo repository.SessionRepository,
	notifier notify.Notifier,
	logger *zap.Logger,
) EnrollmentService {
	return &enrollmentService{
		enrollmentRepo: enrollmentRepo,
		programRepo:    programRepo,
		sessionRepo:    sessionRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// Enroll pairs the client with the program's coach and materializes one
// unscheduled session per program template.
func (s *enrollmentService) Enroll(ctx context.Context, clientID, programID primitive.ObjectID) (*domain.Enrollment, error) {
	if clientID == primitive.NilObjectID || programID == primitive.NilObjectID {
		return nil, errors.New("client ID and program ID are required")
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.CoachID == clientID {
		return nil, ErrOwnProgram
	}

	_, err = s.enrollmentRepo.GetByProgramAndClient(ctx, programID, clientID)
	if err == nil {
		return nil, ErrAlreadyEnrolled
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		ProgramID: programID,
		CoachID:   program.CoachID, // Denormalized for easier queries/auth
		ClientID:  clientID,
	}
	enrollmentID, err := s.enrollmentRepo.Create(ctx, enrollment)
	if err != nil {
		return nil, err
	}
	enrollment.ID = enrollmentID

	for _, tmpl := range program.Sessions {
		_, err := s.sessionRepo.Create(ctx, &domain.Session{
			EnrollmentID: enrollmentID,
			Title:        tmpl.Title,
			Description:  tmpl.Description,
		})
		if err != nil {
			// The enrollment stands; a missing session shows up as a short
			// session list the coach can repair. Log the inconsistency.
			s.logger.Error("failed to materialize session from template",
				zap.String("enrollmentId", enrollmentID.Hex()),
				zap.String("template", tmpl.Title),
				zap.Error(err),
			)
			return nil, err
		}
	}

	s.notifier.Notify(ctx, program.CoachID, fmt.Sprintf("A new client enrolled in %q.", program.Title))

	return enrollment, nil
}

// GetEnrollment retrieves an enrollment the viewer is a party of.
func (s *enrollmentService) GetEnrollment(ctx context.Context, enrollmentID, viewerID primitive.ObjectID) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	if _, isMember := enrollment.PartyOf(viewerID); !isMember {
		return nil, ErrNotEnrollmentParty
	}
	return enrollment, nil
}

// GetEnrollmentsByClient retrieves the client's enrollments.
func (s *enrollmentService) GetEnrollmentsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Enrollment, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.enrollmentRepo.GetByClientID(ctx, clientID)
}

// GetEnrollmentsByCoach retrieves the coach's roster.
func (s *enrollmentService) GetEnrollmentsByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Enrollment, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	return s.enrollmentRepo.GetByCoachID(ctx, coachID)
}
