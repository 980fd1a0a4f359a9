package scheduling_test

import (
	"testing"
	"time"

	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseFor(t *testing.T) {
	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name          string
		time          *time.Time
		clientAgreed  bool
		coachAgreed   bool
		viewerIsCoach bool
		want          scheduling.Phase
	}{
		{name: "no time", want: scheduling.PhaseUnscheduled},
		{name: "no time, coach viewer", viewerIsCoach: true, want: scheduling.PhaseUnscheduled},
		{name: "both agreed", time: &when, clientAgreed: true, coachAgreed: true, want: scheduling.PhaseScheduled},
		{name: "both agreed, coach viewer", time: &when, clientAgreed: true, coachAgreed: true, viewerIsCoach: true, want: scheduling.PhaseScheduled},
		{name: "client proposed, client views", time: &when, clientAgreed: true, want: scheduling.PhaseWaiting},
		{name: "client proposed, coach views", time: &when, clientAgreed: true, viewerIsCoach: true, want: scheduling.PhaseProposed},
		{name: "coach proposed, client views", time: &when, coachAgreed: true, want: scheduling.PhaseProposed},
		{name: "coach proposed, coach views", time: &when, coachAgreed: true, viewerIsCoach: true, want: scheduling.PhaseWaiting},
		{name: "time without consent", time: &when, want: scheduling.PhaseUnscheduled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &domain.Session{Time: tc.time, ClientAgreed: tc.clientAgreed, CoachAgreed: tc.coachAgreed}
			assert.Equal(t, tc.want, scheduling.PhaseFor(s, tc.viewerIsCoach))
		})
	}
}

func TestProposeResetsConsent(t *testing.T) {
	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	later := when.Add(2 * time.Hour)

	s := &domain.Session{}
	scheduling.Propose(s, when, false)
	require.NotNil(t, s.Time)
	assert.Equal(t, when, *s.Time)
	assert.True(t, s.ClientAgreed)
	assert.False(t, s.CoachAgreed)

	// Coach counter-proposes: the client's prior consent does not carry over.
	scheduling.Propose(s, later, true)
	assert.Equal(t, later, *s.Time)
	assert.True(t, s.CoachAgreed)
	assert.False(t, s.ClientAgreed)
}

func TestProposeTruncatesToMinute(t *testing.T) {
	s := &domain.Session{}
	scheduling.Propose(s, time.Date(2026, 3, 2, 10, 0, 42, 999, time.UTC), true)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), *s.Time)
}

func TestAccept(t *testing.T) {
	when := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("without a proposal", func(t *testing.T) {
		s := &domain.Session{}
		assert.ErrorIs(t, scheduling.Accept(s, true), scheduling.ErrIllegalTransition)
	})

	t.Run("confirms the session", func(t *testing.T) {
		s := &domain.Session{}
		scheduling.Propose(s, when, false)
		require.NoError(t, scheduling.Accept(s, true))
		assert.True(t, s.Confirmed())
	})

	t.Run("double accept is a no-op", func(t *testing.T) {
		s := &domain.Session{}
		scheduling.Propose(s, when, false)
		require.NoError(t, scheduling.Accept(s, false))
		assert.False(t, s.Confirmed(), "proposer re-accepting must not confirm alone")
		require.NoError(t, scheduling.Accept(s, true))
		require.NoError(t, scheduling.Accept(s, true))
		assert.True(t, s.Confirmed())
	})
}

func TestCancel(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	confirmed := func(at time.Time) *domain.Session {
		s := &domain.Session{}
		scheduling.Propose(s, at, false)
		if err := scheduling.Accept(s, true); err != nil {
			t.Fatalf("confirming session: %v", err)
		}
		return s
	}

	t.Run("unconfirmed session", func(t *testing.T) {
		s := &domain.Session{}
		scheduling.Propose(s, now.Add(48*time.Hour), false)
		assert.ErrorIs(t, scheduling.Cancel(s, false, now), scheduling.ErrIllegalTransition)
	})

	t.Run("client with enough notice", func(t *testing.T) {
		s := confirmed(now.Add(scheduling.CancelNotice + time.Minute))
		require.NoError(t, scheduling.Cancel(s, false, now))
		assert.Nil(t, s.Time)
		assert.False(t, s.ClientAgreed)
		assert.False(t, s.CoachAgreed)
	})

	t.Run("client inside the notice window", func(t *testing.T) {
		s := confirmed(now.Add(scheduling.CancelNotice - time.Minute))
		err := scheduling.Cancel(s, false, now)
		assert.ErrorIs(t, err, scheduling.ErrCancelWindow)
		assert.True(t, s.Confirmed(), "a refused cancel must not change the session")
	})

	t.Run("client exactly at the boundary", func(t *testing.T) {
		// Exactly CancelNotice away is not "more than", so it is refused.
		s := confirmed(now.Add(scheduling.CancelNotice))
		assert.ErrorIs(t, scheduling.Cancel(s, false, now), scheduling.ErrCancelWindow)
	})

	t.Run("coach inside the notice window", func(t *testing.T) {
		s := confirmed(now.Add(time.Hour))
		require.NoError(t, scheduling.Cancel(s, true, now))
		assert.Nil(t, s.Time)
	})
}

func TestNegotiationLifecycle(t *testing.T) {
	// Client proposes, coach counter-proposes, client accepts, coach
	// cancels, and the session is reusable for a fresh round.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	first := now.Add(48 * time.Hour)
	second := first.Add(2 * time.Hour)

	s := &domain.Session{}
	assert.Equal(t, scheduling.PhaseUnscheduled, scheduling.PhaseFor(s, false))

	scheduling.Propose(s, first, false)
	assert.Equal(t, scheduling.PhaseWaiting, scheduling.PhaseFor(s, false))
	assert.Equal(t, scheduling.PhaseProposed, scheduling.PhaseFor(s, true))

	scheduling.Propose(s, second, true)
	assert.Equal(t, scheduling.PhaseProposed, scheduling.PhaseFor(s, false))
	assert.Equal(t, scheduling.PhaseWaiting, scheduling.PhaseFor(s, true))

	require.NoError(t, scheduling.Accept(s, false))
	assert.Equal(t, scheduling.PhaseScheduled, scheduling.PhaseFor(s, false))
	assert.Equal(t, scheduling.PhaseScheduled, scheduling.PhaseFor(s, true))

	require.NoError(t, scheduling.Cancel(s, true, now))
	assert.Equal(t, scheduling.PhaseUnscheduled, scheduling.PhaseFor(s, false))

	scheduling.Propose(s, first, true)
	assert.Equal(t, scheduling.PhaseProposed, scheduling.PhaseFor(s, false))
}
