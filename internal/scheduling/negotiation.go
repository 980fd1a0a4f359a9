package scheduling

import (
	"errors"
	"time"

	"alcyxob/coachlink/internal/domain"
)

// CancelNotice is how far ahead of the confirmed time a client must be to
// cancel. Coaches are exempt; that asymmetry is a product decision, not an
// oversight.
const CancelNotice = 24 * time.Hour

// Phase is the derived scheduling state of a session from one viewer's
// perspective. It is recomputed from the session's flags on every read and
// never persisted.
type Phase string

const (
	PhaseUnscheduled Phase = "unscheduled"
	PhaseProposed    Phase = "proposed"  // the viewer must respond
	PhaseWaiting     Phase = "waiting"   // the viewer is waiting on the other party
	PhaseScheduled   Phase = "scheduled" // both parties agreed
)

var (
	// ErrSlotUnavailable rejects a proposal for a time outside the current
	// candidate set (stale app data or a bypassed picker).
	ErrSlotUnavailable = errors.New("that time is no longer available")

	// ErrIllegalTransition rejects accept/cancel calls made outside their
	// required source state.
	ErrIllegalTransition = errors.New("the session does not allow this action right now")

	// ErrCancelWindow rejects a client cancellation inside CancelNotice.
	ErrCancelWindow = errors.New("you can't cancel within 24 hours of the session")
)

// PhaseFor derives the session's phase for the given viewer. This is the one
// shared derivation used by both the read path and the transition guards, so
// the two can never disagree.
func PhaseFor(s *domain.Session, viewerIsCoach bool) Phase {
	if s.Time == nil {
		return PhaseUnscheduled
	}
	if s.ClientAgreed && s.CoachAgreed {
		return PhaseScheduled
	}
	if !s.ClientAgreed && !s.CoachAgreed {
		// Unreachable through the transitions below; a time nobody consented
		// to carries no live proposal.
		return PhaseUnscheduled
	}
	viewerAgreed := s.ClientAgreed
	if viewerIsCoach {
		viewerAgreed = s.CoachAgreed
	}
	if viewerAgreed {
		return PhaseWaiting
	}
	return PhaseProposed
}

// Propose replaces the session's time with at (minute granularity) and resets
// consent: the proposer agrees, the other party must answer afresh. Prior
// consent to a different time never carries forward.
func Propose(s *domain.Session, at time.Time, byCoach bool) {
	t := at.Truncate(time.Minute)
	s.Time = &t
	s.CoachAgreed = byCoach
	s.ClientAgreed = !byCoach
}

// Accept records the accepter's consent to the currently proposed time. Once
// both flags are set the session is scheduled. Accepting a time the accepter
// already agreed to is a no-op, so a double-tap never errors.
func Accept(s *domain.Session, byCoach bool) error {
	if s.Time == nil {
		return ErrIllegalTransition
	}
	if byCoach {
		s.CoachAgreed = true
	} else {
		s.ClientAgreed = true
	}
	return nil
}

// Cancel returns a scheduled session to unscheduled, clearing the time and
// both consent flags. Only a confirmed session can be cancelled, and clients
// may not cancel unless the time is more than CancelNotice away.
func Cancel(s *domain.Session, byCoach bool, now time.Time) error {
	if !s.Confirmed() {
		return ErrIllegalTransition
	}
	if !byCoach && !s.Time.After(now.Add(CancelNotice)) {
		return ErrCancelWindow
	}
	s.Time = nil
	s.ClientAgreed = false
	s.CoachAgreed = false
	return nil
}
