package scheduling

import (
	"time"

	"alcyxob/coachlink/internal/domain"
)

const (
	// SlotInterval is the grid sessions can start on: every half hour.
	SlotInterval = 30 * time.Minute
	slotsPerDay  = 48

	// BlackoutBuffer withholds any slot starting strictly within this
	// distance of a declared blackout instant, for either party.
	BlackoutBuffer = time.Hour

	slotLabelLayout = "03:04 PM"
)

// Slot is a half-hour-aligned instant offerable for booking, labeled for
// display ("02:30 PM").
type Slot struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
}

// ComputeSlots returns, in chronological order, the bookable slots on the
// calendar day containing date. A slot is offered when neither party has a
// blackout within BlackoutBuffer of it and, unless the viewer is the coach
// themself, it falls inside the coach's enabled window for that weekday.
// Coaches booking their own time may override their declared hours.
//
// Pure except for the strict parse of stored window boundaries: a malformed
// boundary is a data-integrity failure and is returned as an error rather
// than silently defaulted.
func ComputeSlots(date time.Time, weekly *domain.WeeklyAvailability, coachBlackouts, clientBlackouts []time.Time, viewerIsCoach bool) ([]Slot, error) {
	day := weekly.DayFor(date.Weekday())

	var windowStart, windowEnd domain.ClockTime
	if !viewerIsCoach {
		if !day.Enabled {
			return nil, nil
		}
		var err error
		windowStart, windowEnd, err = day.Window()
		if err != nil {
			return nil, err
		}
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	slots := make([]Slot, 0, slotsPerDay)
	for k := 0; k < slotsPerDay; k++ {
		t := midnight.Add(time.Duration(k) * SlotInterval)
		if !clearOf(coachBlackouts, t) || !clearOf(clientBlackouts, t) {
			continue
		}
		if !viewerIsCoach {
			minute := t.Hour()*60 + t.Minute()
			if minute < windowStart.MinuteOfDay() || minute > windowEnd.MinuteOfDay() {
				continue
			}
		}
		slots = append(slots, Slot{Time: t, Label: t.Format(slotLabelLayout)})
	}
	return slots, nil
}

// Offered reports whether t is one of the given candidate slots. Used to
// re-validate a proposed time server-side; the apps are expected to only
// submit times from the candidate set, but must not be trusted to.
func Offered(slots []Slot, t time.Time) bool {
	for _, s := range slots {
		if s.Time.Equal(t) {
			return true
		}
	}
	return false
}

// clearOf reports whether t keeps the required distance from every blackout.
func clearOf(blackouts []time.Time, t time.Time) bool {
	for _, b := range blackouts {
		d := t.Sub(b)
		if d < 0 {
			d = -d
		}
		if d < BlackoutBuffer {
			return false
		}
	}
	return true
}
