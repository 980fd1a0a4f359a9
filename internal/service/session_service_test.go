package service_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/repository"
	"alcyxob/coachlink/internal/scheduling"
	"alcyxob/coachlink/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Stubs ---

type sessionRepoStub struct {
	session *domain.Session
	getErr  error

	// conflicts makes the next N UpdateScheduling calls fail with
	// ErrConflict before writes start sticking.
	conflicts int
	writes    int

	created   []domain.Session
	createErr error
}

func (s *sessionRepoStub) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if s.createErr != nil {
		return primitive.NilObjectID, s.createErr
	}
	id := primitive.NewObjectID()
	session.ID = id
	s.created = append(s.created, *session)
	return id, nil
}

func (s *sessionRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.session == nil || s.session.ID != id {
		return nil, repository.ErrNotFound
	}
	// The service re-reads on every attempt; hand out a copy the way a
	// real repository would decode a fresh document.
	copied := *s.session
	if s.session.Time != nil {
		t := *s.session.Time
		copied.Time = &t
	}
	return &copied, nil
}

func (s *sessionRepoStub) GetByEnrollmentID(ctx context.Context, enrollmentID primitive.ObjectID) ([]domain.Session, error) {
	if s.session == nil || s.session.EnrollmentID != enrollmentID {
		return nil, nil
	}
	return []domain.Session{*s.session}, nil
}

func (s *sessionRepoStub) UpdateScheduling(ctx context.Context, session *domain.Session) error {
	if s.conflicts > 0 {
		s.conflicts--
		return repository.ErrConflict
	}
	s.writes++
	stored := *session
	s.session = &stored
	return nil
}

type enrollmentRepoStub struct {
	enrollment *domain.Enrollment
	existing   *domain.Enrollment // answer for GetByProgramAndClient
}

func (s *enrollmentRepoStub) Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	enrollment.ID = id
	stored := *enrollment
	s.enrollment = &stored
	return id, nil
}

func (s *enrollmentRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	if s.enrollment == nil || s.enrollment.ID != id {
		return nil, repository.ErrNotFound
	}
	copied := *s.enrollment
	return &copied, nil
}

func (s *enrollmentRepoStub) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Enrollment, error) {
	return nil, nil
}

func (s *enrollmentRepoStub) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Enrollment, error) {
	return nil, nil
}

func (s *enrollmentRepoStub) GetByProgramAndClient(ctx context.Context, programID, clientID primitive.ObjectID) (*domain.Enrollment, error) {
	if s.existing != nil && s.existing.ProgramID == programID && s.existing.ClientID == clientID {
		return s.existing, nil
	}
	return nil, repository.ErrNotFound
}

type availabilityRepoStub struct {
	weekly *domain.WeeklyAvailability
}

func (s *availabilityRepoStub) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) (*domain.WeeklyAvailability, error) {
	if s.weekly == nil {
		return nil, repository.ErrNotFound
	}
	return s.weekly, nil
}

func (s *availabilityRepoStub) Upsert(ctx context.Context, availability *domain.WeeklyAvailability) error {
	s.weekly = availability
	return nil
}

type blackoutRepoStub struct {
	times map[primitive.ObjectID][]time.Time
}

func (s *blackoutRepoStub) GetTimes(ctx context.Context, profileID primitive.ObjectID) ([]time.Time, error) {
	return s.times[profileID], nil
}

func (s *blackoutRepoStub) Add(ctx context.Context, profileID primitive.ObjectID, t time.Time) error {
	if s.times == nil {
		s.times = map[primitive.ObjectID][]time.Time{}
	}
	s.times[profileID] = append(s.times[profileID], t)
	return nil
}

func (s *blackoutRepoStub) Remove(ctx context.Context, profileID primitive.ObjectID, t time.Time) error {
	return nil
}

type notifierStub struct {
	recipients []primitive.ObjectID
	messages   []string
}

func (n *notifierStub) Notify(ctx context.Context, recipientID primitive.ObjectID, message string) {
	n.recipients = append(n.recipients, recipientID)
	n.messages = append(n.messages, message)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// --- Fixture ---

type fixture struct {
	svc          service.SessionService
	sessionRepo  *sessionRepoStub
	blackoutRepo *blackoutRepoStub
	notifier     *notifierStub

	coachID   primitive.ObjectID
	clientID  primitive.ObjectID
	sessionID primitive.ObjectID
}

// testNow is a Monday morning; the coach works Mondays nine to five.
var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	coachID := primitive.NewObjectID()
	clientID := primitive.NewObjectID()
	enrollmentID := primitive.NewObjectID()
	sessionID := primitive.NewObjectID()

	weekly := &domain.WeeklyAvailability{CoachID: coachID}
	weekly.Days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "09:00 AM", End: "05:00 PM"}

	sessionRepo := &sessionRepoStub{
		session: &domain.Session{
			ID:           sessionID,
			EnrollmentID: enrollmentID,
			Title:        "Kickoff",
		},
	}
	enrollmentRepo := &enrollmentRepoStub{
		enrollment: &domain.Enrollment{
			ID:       enrollmentID,
			CoachID:  coachID,
			ClientID: clientID,
		},
	}
	blackoutRepo := &blackoutRepoStub{}
	notifier := &notifierStub{}

	svc := service.NewSessionService(
		sessionRepo,
		enrollmentRepo,
		&availabilityRepoStub{weekly: weekly},
		blackoutRepo,
		nil, // no slot cache
		notifier,
		fixedClock{now: testNow},
		zap.NewNop(),
	)

	return &fixture{
		svc:          svc,
		sessionRepo:  sessionRepo,
		blackoutRepo: blackoutRepo,
		notifier:     notifier,
		coachID:      coachID,
		clientID:     clientID,
		sessionID:    sessionID,
	}
}

// slotAt is a Monday 10:00, inside the coach's window.
var slotAt = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

// --- Tests ---

func TestProposeTime(t *testing.T) {
	t.Run("client proposes an offered slot", func(t *testing.T) {
		f := newFixture(t)

		view, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, f.clientID)
		require.NoError(t, err)
		require.NotNil(t, view.Time)
		assert.Equal(t, slotAt, *view.Time)
		assert.True(t, view.ClientAgreed)
		assert.False(t, view.CoachAgreed)
		assert.Equal(t, scheduling.PhaseWaiting, view.Phase)

		require.Len(t, f.notifier.recipients, 1)
		assert.Equal(t, f.coachID, f.notifier.recipients[0], "the counterparty gets notified")
		assert.Equal(t, 1, f.sessionRepo.writes)
	})

	t.Run("outside the coach's window", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt.Add(-2*time.Hour), f.clientID)
		assert.ErrorIs(t, err, scheduling.ErrSlotUnavailable)
		assert.Empty(t, f.notifier.recipients)
		assert.Zero(t, f.sessionRepo.writes)
	})

	t.Run("blocked by a fresh blackout", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.blackoutRepo.Add(context.Background(), f.coachID, slotAt.Add(30*time.Minute)))

		_, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, f.clientID)
		assert.ErrorIs(t, err, scheduling.ErrSlotUnavailable)
	})

	t.Run("coach may book outside their own window", func(t *testing.T) {
		f := newFixture(t)

		view, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt.Add(-3*time.Hour), f.coachID)
		require.NoError(t, err)
		assert.True(t, view.CoachAgreed)
		require.Len(t, f.notifier.recipients, 1)
		assert.Equal(t, f.clientID, f.notifier.recipients[0])
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, primitive.NewObjectID())
		assert.ErrorIs(t, err, service.ErrNotEnrollmentParty)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ProposeTime(context.Background(), primitive.NewObjectID(), slotAt, f.clientID)
		assert.ErrorIs(t, err, service.ErrSessionNotFound)
	})
}

func TestAcceptTime(t *testing.T) {
	t.Run("confirms and notifies once", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, f.clientID)
		require.NoError(t, err)

		view, err := f.svc.AcceptTime(context.Background(), f.sessionID, f.coachID)
		require.NoError(t, err)
		assert.Equal(t, scheduling.PhaseScheduled, view.Phase)
		assert.True(t, view.Confirmed())

		require.Len(t, f.notifier.recipients, 2) // proposal + confirmation
		assert.Equal(t, f.clientID, f.notifier.recipients[1])
	})

	t.Run("double accept is a silent no-op", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, f.clientID)
		require.NoError(t, err)
		_, err = f.svc.AcceptTime(context.Background(), f.sessionID, f.coachID)
		require.NoError(t, err)

		writes := f.sessionRepo.writes
		notifications := len(f.notifier.messages)

		view, err := f.svc.AcceptTime(context.Background(), f.sessionID, f.coachID)
		require.NoError(t, err)
		assert.Equal(t, scheduling.PhaseScheduled, view.Phase)
		assert.Equal(t, writes, f.sessionRepo.writes, "no-op accept must not write")
		assert.Len(t, f.notifier.messages, notifications, "no-op accept must not re-notify")
	})

	t.Run("without a proposal", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.AcceptTime(context.Background(), f.sessionID, f.coachID)
		assert.ErrorIs(t, err, scheduling.ErrIllegalTransition)
	})
}

func TestCancelTime(t *testing.T) {
	confirm := func(t *testing.T, f *fixture, at time.Time) {
		t.Helper()
		_, err := f.svc.ProposeTime(context.Background(), f.sessionID, at, f.clientID)
		require.NoError(t, err)
		_, err = f.svc.AcceptTime(context.Background(), f.sessionID, f.coachID)
		require.NoError(t, err)
	}

	t.Run("client with enough notice", func(t *testing.T) {
		f := newFixture(t)
		confirm(t, f, slotAt.AddDate(0, 0, 7)) // next Monday, well over 24h out

		view, err := f.svc.CancelTime(context.Background(), f.sessionID, f.clientID)
		require.NoError(t, err)
		assert.Nil(t, view.Time)
		assert.Equal(t, scheduling.PhaseUnscheduled, view.Phase)
	})

	t.Run("client inside 24 hours", func(t *testing.T) {
		f := newFixture(t)
		confirm(t, f, slotAt) // testNow is 08:00 the same day

		_, err := f.svc.CancelTime(context.Background(), f.sessionID, f.clientID)
		assert.ErrorIs(t, err, scheduling.ErrCancelWindow)
		require.NotNil(t, f.sessionRepo.session.Time, "refused cancel must not clear the session")
	})

	t.Run("coach inside 24 hours", func(t *testing.T) {
		f := newFixture(t)
		confirm(t, f, slotAt)
		notifications := len(f.notifier.messages)

		view, err := f.svc.CancelTime(context.Background(), f.sessionID, f.coachID)
		require.NoError(t, err)
		assert.Nil(t, view.Time)
		require.Len(t, f.notifier.messages, notifications+1)
		assert.Equal(t, f.clientID, f.notifier.recipients[len(f.notifier.recipients)-1])
	})

	t.Run("unscheduled session", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.CancelTime(context.Background(), f.sessionID, f.clientID)
		assert.ErrorIs(t, err, scheduling.ErrIllegalTransition)
	})
}

func TestSchedulingRetry(t *testing.T) {
	t.Run("recovers from transient conflicts", func(t *testing.T) {
		f := newFixture(t)
		f.sessionRepo.conflicts = 2

		view, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, f.clientID)
		require.NoError(t, err)
		assert.Equal(t, slotAt, *view.Time)
		assert.Equal(t, 1, f.sessionRepo.writes)
		assert.Len(t, f.notifier.messages, 1, "retries must not multiply notifications")
	})

	t.Run("gives up after exhausting retries", func(t *testing.T) {
		f := newFixture(t)
		f.sessionRepo.conflicts = 3

		_, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, f.clientID)
		assert.ErrorIs(t, err, service.ErrConcurrentUpdate)
		assert.Zero(t, f.sessionRepo.writes)
		assert.Empty(t, f.notifier.messages, "a failed transition must not notify")
	})
}

func TestGetSessions(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ProposeTime(context.Background(), f.sessionID, slotAt, f.clientID)
	require.NoError(t, err)

	enrollmentID := f.sessionRepo.session.EnrollmentID

	t.Run("phase follows the viewer", func(t *testing.T) {
		views, err := f.svc.GetSessions(context.Background(), enrollmentID, f.clientID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, scheduling.PhaseWaiting, views[0].Phase)

		views, err = f.svc.GetSessions(context.Background(), enrollmentID, f.coachID)
		require.NoError(t, err)
		assert.Equal(t, scheduling.PhaseProposed, views[0].Phase)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := f.svc.GetSessions(context.Background(), enrollmentID, primitive.NewObjectID())
		assert.ErrorIs(t, err, service.ErrNotEnrollmentParty)
	})
}

func TestGetAvailableSlots(t *testing.T) {
	f := newFixture(t)

	t.Run("client sees the window", func(t *testing.T) {
		slots, err := f.svc.GetAvailableSlots(context.Background(), f.sessionID, slotAt, f.clientID)
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		assert.Equal(t, "09:00 AM", slots[0].Label)
	})

	t.Run("coach sees the whole day", func(t *testing.T) {
		slots, err := f.svc.GetAvailableSlots(context.Background(), f.sessionID, slotAt, f.coachID)
		require.NoError(t, err)
		assert.Len(t, slots, 48)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		_, err := f.svc.GetAvailableSlots(context.Background(), f.sessionID, slotAt, primitive.NewObjectID())
		assert.ErrorIs(t, err, service.ErrNotEnrollmentParty)
	})
}
