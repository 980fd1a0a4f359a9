package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClockTime layout for stored day-window boundaries, e.g. "09:00 AM".
// Parsing is strict: anything a coach's app stored in another shape is a
// data-integrity failure, not something to silently default.
const clockTimeLayout = "03:04 PM"

// ClockTime is a wall-clock time of day with no date component.
type ClockTime struct {
	Hour   int // 0..23
	Minute int // 0..59
}

// ParseClockTime parses a stored "hh:mm AM/PM" string.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(clockTimeLayout, s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("malformed clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MinuteOfDay returns the minute offset from midnight, for ordering checks.
func (c ClockTime) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return time.Date(0, 1, 1, c.Hour, c.Minute, 0, 0, time.UTC).Format(clockTimeLayout)
}

// DayWindow is one weekday's bookable window in a coach's recurring schedule.
// Start and End are stored in the "hh:mm AM/PM" shape the apps submit and are
// parsed on use. A disabled day offers no slots to clients.
type DayWindow struct {
	Enabled bool   `bson:"enabled" json:"enabled"`
	Start   string `bson:"start,omitempty" json:"start,omitempty"`
	End     string `bson:"end,omitempty" json:"end,omitempty"`
}

// Window parses the boundaries of an enabled day. Callers must not use the
// returned times when err != nil.
func (w DayWindow) Window() (start, end ClockTime, err error) {
	start, err = ParseClockTime(w.Start)
	if err != nil {
		return
	}
	end, err = ParseClockTime(w.End)
	return
}

// WeeklyAvailability is a coach's recurring weekly schedule, one window per
// weekday (index 0 = Sunday .. 6 = Saturday).
type WeeklyAvailability struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	Days      [7]DayWindow       `bson:"days" json:"days"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DayFor returns the window governing the given weekday.
func (a *WeeklyAvailability) DayFor(weekday time.Weekday) DayWindow {
	return a.Days[int(weekday)]
}

// Validate checks every enabled day parses and has start <= end.
func (a *WeeklyAvailability) Validate() error {
	for i, day := range a.Days {
		if !day.Enabled {
			continue
		}
		start, end, err := day.Window()
		if err != nil {
			return fmt.Errorf("weekday %d: %w", i, err)
		}
		if start.MinuteOfDay() > end.MinuteOfDay() {
			return fmt.Errorf("weekday %d: window start %s is after end %s", i, day.Start, day.End)
		}
	}
	return nil
}
