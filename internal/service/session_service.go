package service

import (
	"alcyxob/coachlink/internal/cache"
	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/notify"
	"alcyxob/coachlink/internal/repository"
	"alcyxob/coachlink/internal/scheduling"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrConcurrentUpdate = errors.New("something went wrong, please try again")
)

// schedulingRetries bounds how often a negotiation operation is replayed
// against fresh state after the compare-and-set detects a concurrent writer.
const schedulingRetries = 3

const notifyTimeLayout = "Mon, 02 Jan 2006 at 03:04 PM"

// SessionView is a session together with its phase as derived for one viewer.
// The phase is computed, never read from storage.
type SessionView struct {
	domain.Session
	Phase scheduling.Phase `json:"phase"`
}

// --- Service Interface ---
type SessionService interface {
	GetSessions(ctx context.Context, enrollmentID, viewerID primitive.ObjectID) ([]SessionView, error)
	GetAvailableSlots(ctx context.Context, sessionID primitive.ObjectID, date time.Time, viewerID primitive.ObjectID) ([]scheduling.Slot, error)
	ProposeTime(ctx context.Context, sessionID primitive.ObjectID, at time.Time, proposerID primitive.ObjectID) (*SessionView, error)
	AcceptTime(ctx context.Context, sessionID, accepterID primitive.ObjectID) (*SessionView, error)
	CancelTime(ctx context.Context, sessionID, cancellerID primitive.ObjectID) (*SessionView, error)
}

// --- Service Implementation ---

type sessionService struct {
	sessionRepo      repository.SessionRepository
	enrollmentRepo   repository.EnrollmentRepository
	availabilityRepo repository.AvailabilityRepository
	blackoutRepo     repository.BlackoutRepository
	slotCache        *cache.SlotCache
	notifier         notify.Notifier
	clock            scheduling.Clock
	logger           *zap.Logger
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	enrollmentRepo repository.EnrollmentRepository,
	availabilityRepo repository.AvailabilityRepository,
	blackoutRepo repository.BlackoutRepository,
	slotCache *cache.SlotCache,
	notifier notify.Notifier,
	clock scheduling.Clock,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		sessionRepo:      sessionRepo,
		enrollmentRepo:   enrollmentRepo,
		availabilityRepo: availabilityRepo,
		blackoutRepo:     blackoutRepo,
		slotCache:        slotCache,
		notifier:         notifier,
		clock:            clock,
		logger:           logger,
	}
}

// GetSessions retrieves an enrollment's sessions with the phase derived for
// the viewer.
func (s *sessionService) GetSessions(ctx context.Context, enrollmentID, viewerID primitive.ObjectID) ([]SessionView, error) {
	enrollment, err := s.enrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	viewerIsCoach, isMember := enrollment.PartyOf(viewerID)
	if !isMember {
		return nil, ErrNotEnrollmentParty
	}

	sessions, err := s.sessionRepo.GetByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	views := make([]SessionView, len(sessions))
	for i := range sessions {
		views[i] = SessionView{
			Session: sessions[i],
			Phase:   scheduling.PhaseFor(&sessions[i], viewerIsCoach),
		}
	}
	return views, nil
}

// GetAvailableSlots computes the bookable slots for the session's enrollment
// on the given date, from the viewer's viewpoint. This read path may serve a
// cached offering; ProposeTime always revalidates against fresh state.
func (s *sessionService) GetAvailableSlots(ctx context.Context, sessionID primitive.ObjectID, date time.Time, viewerID primitive.ObjectID) ([]scheduling.Slot, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollment(ctx, session.EnrollmentID)
	if err != nil {
		return nil, err
	}
	viewerIsCoach, isMember := enrollment.PartyOf(viewerID)
	if !isMember {
		return nil, ErrNotEnrollmentParty
	}

	if slots, ok := s.slotCache.Get(ctx, enrollment.CoachID, enrollment.ClientID, date, viewerIsCoach); ok {
		return slots, nil
	}

	slots, err := s.computeSlots(ctx, enrollment, date, viewerIsCoach)
	if err != nil {
		return nil, err
	}

	s.slotCache.Set(ctx, enrollment.CoachID, enrollment.ClientID, date, viewerIsCoach, slots)
	return slots, nil
}

// ProposeTime suggests a new time for the session. The time must be in the
// current candidate set for the proposer's viewpoint; the apps only submit
// picker values but the backend re-validates regardless. A successful
// proposal resets the other party's consent, whatever it was before.
func (s *sessionService) ProposeTime(ctx context.Context, sessionID primitive.ObjectID, at time.Time, proposerID primitive.ObjectID) (*SessionView, error) {
	at = at.Truncate(time.Minute)

	var view *SessionView
	err := s.withRetry(ctx, sessionID, proposerID, func(session *domain.Session, enrollment *domain.Enrollment, byCoach bool) (bool, string, error) {
		// Validation runs inside the retry loop so every attempt checks the
		// proposed time against fresh blackout state.
		slots, err := s.computeSlots(ctx, enrollment, at, byCoach)
		if err != nil {
			return false, "", err
		}
		if !scheduling.Offered(slots, at) {
			return false, "", scheduling.ErrSlotUnavailable
		}

		scheduling.Propose(session, at, byCoach)
		message := fmt.Sprintf("New time proposed for %q: %s.", session.Title, at.Format(notifyTimeLayout))
		return true, message, nil
	}, &view)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AcceptTime records the accepter's consent to the proposed time. Accepting a
// time the accepter already agreed to is an idempotent no-op: no write, no
// second notification.
func (s *sessionService) AcceptTime(ctx context.Context, sessionID, accepterID primitive.ObjectID) (*SessionView, error) {
	var view *SessionView
	err := s.withRetry(ctx, sessionID, accepterID, func(session *domain.Session, enrollment *domain.Enrollment, byCoach bool) (bool, string, error) {
		alreadyAgreed := session.ClientAgreed
		if byCoach {
			alreadyAgreed = session.CoachAgreed
		}
		if err := scheduling.Accept(session, byCoach); err != nil {
			return false, "", err
		}
		if alreadyAgreed {
			return false, "", nil
		}

		message := fmt.Sprintf("Time accepted for %q: %s.", session.Title, session.Time.Format(notifyTimeLayout))
		if session.Confirmed() {
			message = fmt.Sprintf("%q is confirmed for %s.", session.Title, session.Time.Format(notifyTimeLayout))
		}
		return true, message, nil
	}, &view)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// CancelTime returns a scheduled session to unscheduled. Coaches may cancel
// at any point; clients only while the session is more than 24 hours away.
func (s *sessionService) CancelTime(ctx context.Context, sessionID, cancellerID primitive.ObjectID) (*SessionView, error) {
	var view *SessionView
	err := s.withRetry(ctx, sessionID, cancellerID, func(session *domain.Session, enrollment *domain.Enrollment, byCoach bool) (bool, string, error) {
		if session.Time == nil {
			return false, "", scheduling.ErrIllegalTransition
		}
		was := *session.Time
		if err := scheduling.Cancel(session, byCoach, s.clock.Now()); err != nil {
			return false, "", err
		}
		message := fmt.Sprintf("%q on %s was cancelled.", session.Title, was.Format(notifyTimeLayout))
		return true, message, nil
	}, &view)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// withRetry runs one negotiation transition against fresh state, applying it
// through the compare-and-set write. mutate returns whether a write is needed
// and the notification for the counterparty; the notification goes out
// exactly once, only after the write sticks. A conflicting writer triggers a
// re-read and replay, bounded by schedulingRetries.
func (s *sessionService) withRetry(
	ctx context.Context,
	sessionID, actorID primitive.ObjectID,
	mutate func(session *domain.Session, enrollment *domain.Enrollment, byCoach bool) (write bool, message string, err error),
	out **SessionView,
) error {
	for attempt := 0; attempt < schedulingRetries; attempt++ {
		session, err := s.session(ctx, sessionID)
		if err != nil {
			return err
		}
		enrollment, err := s.enrollment(ctx, session.EnrollmentID)
		if err != nil {
			return err
		}
		byCoach, isMember := enrollment.PartyOf(actorID)
		if !isMember {
			return ErrNotEnrollmentParty
		}

		write, message, err := mutate(session, enrollment, byCoach)
		if err != nil {
			return err
		}
		if !write {
			*out = &SessionView{Session: *session, Phase: scheduling.PhaseFor(session, byCoach)}
			return nil
		}

		err = s.sessionRepo.UpdateScheduling(ctx, session)
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Debug("session scheduling conflict, retrying",
				zap.String("sessionId", sessionID.Hex()),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrSessionNotFound
			}
			return err
		}

		counterparty := enrollment.ClientID
		if !byCoach {
			counterparty = enrollment.CoachID
		}
		s.notifier.Notify(ctx, counterparty, message)

		*out = &SessionView{Session: *session, Phase: scheduling.PhaseFor(session, byCoach)}
		return nil
	}
	return ErrConcurrentUpdate
}

// computeSlots assembles resolver input from fresh repository reads. A coach
// viewing their own calendar works without a stored weekly schedule (the
// window is not enforced for them); for a client a missing schedule is a
// data-integrity failure.
func (s *sessionService) computeSlots(ctx context.Context, enrollment *domain.Enrollment, date time.Time, viewerIsCoach bool) ([]scheduling.Slot, error) {
	weekly, err := s.availabilityRepo.GetByCoachID(ctx, enrollment.CoachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if !viewerIsCoach {
				return nil, ErrAvailabilityNotFound
			}
			weekly = &domain.WeeklyAvailability{CoachID: enrollment.CoachID}
		} else {
			return nil, err
		}
	}

	coachBlackouts, err := s.blackoutRepo.GetTimes(ctx, enrollment.CoachID)
	if err != nil {
		return nil, err
	}
	clientBlackouts, err := s.blackoutRepo.GetTimes(ctx, enrollment.ClientID)
	if err != nil {
		return nil, err
	}

	return scheduling.ComputeSlots(date, weekly, coachBlackouts, clientBlackouts, viewerIsCoach)
}

func (s *sessionService) session(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *sessionService) enrollment(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return enrollment, nil
}
