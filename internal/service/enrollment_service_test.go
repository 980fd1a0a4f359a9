package service_test

import (
	"context"
	"errors"
	"testing"

	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/repository"
	"alcyxob/coachlink/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type programRepoStub struct {
	program *domain.Program
}

func (s *programRepoStub) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (s *programRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	if s.program == nil || s.program.ID != id {
		return nil, repository.ErrNotFound
	}
	return s.program, nil
}

func (s *programRepoStub) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error) {
	return nil, nil
}

func (s *programRepoStub) List(ctx context.Context) ([]domain.Program, error) {
	return nil, nil
}

func (s *programRepoStub) SetCoverKey(ctx context.Context, id primitive.ObjectID, coverKey string) error {
	return nil
}

func TestEnroll(t *testing.T) {
	coachID := primitive.NewObjectID()
	programID := primitive.NewObjectID()

	newProgram := func() *domain.Program {
		return &domain.Program{
			ID:      programID,
			CoachID: coachID,
			Title:   "Spring Tune-Up",
			Sessions: []domain.SessionTemplate{
				{Title: "Kickoff", Description: "Goals and baseline"},
				{Title: "Check-in"},
				{Title: "Wrap-up"},
			},
		}
	}

	t.Run("materializes one session per template", func(t *testing.T) {
		sessionRepo := &sessionRepoStub{}
		enrollmentRepo := &enrollmentRepoStub{}
		notifier := &notifierStub{}
		svc := service.NewEnrollmentService(enrollmentRepo, &programRepoStub{program: newProgram()}, sessionRepo, notifier, zap.NewNop())

		clientID := primitive.NewObjectID()
		enrollment, err := svc.Enroll(context.Background(), clientID, programID)
		require.NoError(t, err)
		assert.NotEqual(t, primitive.NilObjectID, enrollment.ID)
		assert.Equal(t, coachID, enrollment.CoachID)
		assert.Equal(t, clientID, enrollment.ClientID)

		require.Len(t, sessionRepo.created, 3)
		for i, created := range sessionRepo.created {
			assert.Equal(t, enrollment.ID, created.EnrollmentID)
			assert.Nil(t, created.Time, "materialized sessions start unscheduled")
			assert.False(t, created.ClientAgreed)
			assert.False(t, created.CoachAgreed)
			assert.Equal(t, newProgram().Sessions[i].Title, created.Title)
		}

		require.Len(t, notifier.recipients, 1)
		assert.Equal(t, coachID, notifier.recipients[0])
	})

	t.Run("unknown program", func(t *testing.T) {
		svc := service.NewEnrollmentService(&enrollmentRepoStub{}, &programRepoStub{}, &sessionRepoStub{}, &notifierStub{}, zap.NewNop())

		_, err := svc.Enroll(context.Background(), primitive.NewObjectID(), programID)
		assert.ErrorIs(t, err, service.ErrProgramNotFound)
	})

	t.Run("own program", func(t *testing.T) {
		svc := service.NewEnrollmentService(&enrollmentRepoStub{}, &programRepoStub{program: newProgram()}, &sessionRepoStub{}, &notifierStub{}, zap.NewNop())

		_, err := svc.Enroll(context.Background(), coachID, programID)
		assert.ErrorIs(t, err, service.ErrOwnProgram)
	})

	t.Run("duplicate enrollment", func(t *testing.T) {
		clientID := primitive.NewObjectID()
		enrollmentRepo := &enrollmentRepoStub{
			existing: &domain.Enrollment{ID: primitive.NewObjectID(), ProgramID: programID, ClientID: clientID},
		}
		notifier := &notifierStub{}
		svc := service.NewEnrollmentService(enrollmentRepo, &programRepoStub{program: newProgram()}, &sessionRepoStub{}, notifier, zap.NewNop())

		_, err := svc.Enroll(context.Background(), clientID, programID)
		assert.ErrorIs(t, err, service.ErrAlreadyEnrolled)
		assert.Empty(t, notifier.recipients)
	})

	t.Run("session creation failure surfaces", func(t *testing.T) {
		sessionRepo := &sessionRepoStub{createErr: errors.New("write failed")}
		notifier := &notifierStub{}
		svc := service.NewEnrollmentService(&enrollmentRepoStub{}, &programRepoStub{program: newProgram()}, sessionRepo, notifier, zap.NewNop())

		_, err := svc.Enroll(context.Background(), primitive.NewObjectID(), programID)
		assert.Error(t, err)
		assert.Empty(t, notifier.recipients, "a failed enrollment must not notify the coach")
	})
}

func TestGetEnrollment(t *testing.T) {
	enrollment := &domain.Enrollment{
		ID:       primitive.NewObjectID(),
		CoachID:  primitive.NewObjectID(),
		ClientID: primitive.NewObjectID(),
	}
	svc := service.NewEnrollmentService(&enrollmentRepoStub{enrollment: enrollment}, &programRepoStub{}, &sessionRepoStub{}, &notifierStub{}, zap.NewNop())

	t.Run("party may read", func(t *testing.T) {
		got, err := svc.GetEnrollment(context.Background(), enrollment.ID, enrollment.ClientID)
		require.NoError(t, err)
		assert.Equal(t, enrollment.ID, got.ID)

		_, err = svc.GetEnrollment(context.Background(), enrollment.ID, enrollment.CoachID)
		assert.NoError(t, err)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := svc.GetEnrollment(context.Background(), enrollment.ID, primitive.NewObjectID())
		assert.ErrorIs(t, err, service.ErrNotEnrollmentParty)
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		_, err := svc.GetEnrollment(context.Background(), primitive.NewObjectID(), enrollment.ClientID)
		assert.ErrorIs(t, err, service.ErrEnrollmentNotFound)
	})
}
