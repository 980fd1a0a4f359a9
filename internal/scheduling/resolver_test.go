package scheduling_test

import (
	"testing"
	"time"

	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is a known Monday used across the slot tests.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func nineToFiveMondays() *domain.WeeklyAvailability {
	weekly := &domain.WeeklyAvailability{}
	weekly.Days[int(time.Monday)] = domain.DayWindow{
		Enabled: true,
		Start:   "09:00 AM",
		End:     "05:00 PM",
	}
	return weekly
}

func slotTimes(slots []scheduling.Slot) []time.Time {
	times := make([]time.Time, len(slots))
	for i, s := range slots {
		times[i] = s.Time
	}
	return times
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func TestComputeSlotsWindow(t *testing.T) {
	slots, err := scheduling.ComputeSlots(monday, nineToFiveMondays(), nil, nil, false)
	require.NoError(t, err)

	// 09:00 through 17:00 inclusive on the half-hour grid.
	require.Len(t, slots, 17)
	assert.Equal(t, at(9, 0), slots[0].Time)
	assert.Equal(t, "09:00 AM", slots[0].Label)
	assert.Equal(t, at(17, 0), slots[len(slots)-1].Time)
	assert.Equal(t, "05:00 PM", slots[len(slots)-1].Label)

	for _, s := range slots {
		assert.Zero(t, s.Time.Minute()%30, "slot %v off the half-hour grid", s.Time)
	}
}

func TestComputeSlotsDisabledDay(t *testing.T) {
	weekly := nineToFiveMondays()
	tuesday := monday.AddDate(0, 0, 1)

	slots, err := scheduling.ComputeSlots(tuesday, weekly, nil, nil, false)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsBlackoutBuffer(t *testing.T) {
	// A blackout at 10:00 withholds every slot strictly within an hour of
	// it: 09:30, 10:00, and 10:30. The 09:00 and 11:00 slots sit exactly an
	// hour away and survive.
	blackout := at(10, 0)

	slots, err := scheduling.ComputeSlots(monday, nineToFiveMondays(), []time.Time{blackout}, nil, false)
	require.NoError(t, err)

	times := slotTimes(slots)
	assert.Contains(t, times, at(9, 0))
	assert.NotContains(t, times, at(9, 30))
	assert.NotContains(t, times, at(10, 0))
	assert.NotContains(t, times, at(10, 30))
	assert.Contains(t, times, at(11, 0))
}

func TestComputeSlotsClientBlackout(t *testing.T) {
	// The client's own blackouts withhold slots the same way the coach's do.
	slots, err := scheduling.ComputeSlots(monday, nineToFiveMondays(), nil, []time.Time{at(14, 0)}, false)
	require.NoError(t, err)

	times := slotTimes(slots)
	assert.NotContains(t, times, at(14, 0))
	assert.NotContains(t, times, at(14, 30))
	assert.Contains(t, times, at(15, 0))
}

func TestComputeSlotsCoachViewerIgnoresWindow(t *testing.T) {
	// A coach booking their own time sees the full day regardless of the
	// declared window, even on a disabled day.
	weekly := nineToFiveMondays()
	tuesday := monday.AddDate(0, 0, 1)

	slots, err := scheduling.ComputeSlots(tuesday, weekly, nil, nil, true)
	require.NoError(t, err)
	require.Len(t, slots, 48)
	assert.Equal(t, tuesday, slots[0].Time)

	// Blackouts still apply to the coach.
	blocked := tuesday.Add(12 * time.Hour)
	slots, err = scheduling.ComputeSlots(tuesday, weekly, []time.Time{blocked}, nil, true)
	require.NoError(t, err)
	assert.NotContains(t, slotTimes(slots), blocked)
}

func TestComputeSlotsMalformedWindow(t *testing.T) {
	weekly := &domain.WeeklyAvailability{}
	weekly.Days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "9am", End: "05:00 PM"}

	_, err := scheduling.ComputeSlots(monday, weekly, nil, nil, false)
	require.Error(t, err)

	// The coach viewer never parses the window, so the same data is fine.
	_, err = scheduling.ComputeSlots(monday, weekly, nil, nil, true)
	assert.NoError(t, err)
}

func TestOffered(t *testing.T) {
	slots, err := scheduling.ComputeSlots(monday, nineToFiveMondays(), nil, nil, false)
	require.NoError(t, err)

	assert.True(t, scheduling.Offered(slots, at(9, 30)))
	assert.False(t, scheduling.Offered(slots, at(8, 30)), "before the window")
	assert.False(t, scheduling.Offered(slots, at(9, 15)), "off the grid")
	assert.False(t, scheduling.Offered(nil, at(9, 30)))
}
