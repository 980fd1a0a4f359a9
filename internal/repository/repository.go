package repository

import (
	"alcyxob/coachlink/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("document changed between read and write")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ProgramRepository defines the interface for interacting with program data.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Program, error)
	List(ctx context.Context) ([]domain.Program, error)
	SetCoverKey(ctx context.Context, id primitive.ObjectID, coverKey string) error
}

// EnrollmentRepository defines the interface for interacting with enrollment data.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Enrollment, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Enrollment, error)
	GetByProgramAndClient(ctx context.Context, programID, clientID primitive.ObjectID) (*domain.Enrollment, error)
}

// SessionRepository defines the interface for interacting with session data.
// UpdateScheduling is the only write path for the scheduling triple
// {time, clientAgreed, coachAgreed}: it is a compare-and-set on the session's
// version counter and returns ErrConflict when the document moved underneath
// the caller, who must re-read and retry.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	GetByEnrollmentID(ctx context.Context, enrollmentID primitive.ObjectID) ([]domain.Session, error)
	UpdateScheduling(ctx context.Context, session *domain.Session) error
}

// AvailabilityRepository defines the interface for coaches' weekly schedules.
type AvailabilityRepository interface {
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) (*domain.WeeklyAvailability, error)
	Upsert(ctx context.Context, availability *domain.WeeklyAvailability) error
}

// BlackoutRepository defines the interface for per-profile unavailable instants.
// GetTimes returns an empty list (not ErrNotFound) for a profile that never
// declared any.
type BlackoutRepository interface {
	GetTimes(ctx context.Context, profileID primitive.ObjectID) ([]time.Time, error)
	Add(ctx context.Context, profileID primitive.ObjectID, t time.Time) error
	Remove(ctx context.Context, profileID primitive.ObjectID, t time.Time) error
}

// NotificationRepository defines the interface for inbox entries.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error)
	GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error
}
