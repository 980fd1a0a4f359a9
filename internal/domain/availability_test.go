package domain_test

import (
	"testing"
	"time"

	"alcyxob/coachlink/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := domain.ParseClockTime("09:00 AM")
		require.NoError(t, err)
		assert.Equal(t, 9, c.Hour)
		assert.Equal(t, 0, c.Minute)

		c, err = domain.ParseClockTime("11:30 PM")
		require.NoError(t, err)
		assert.Equal(t, 23, c.Hour)
		assert.Equal(t, 30, c.Minute)

		c, err = domain.ParseClockTime("12:00 AM")
		require.NoError(t, err)
		assert.Equal(t, 0, c.Hour)
	})

	t.Run("malformed", func(t *testing.T) {
		// Parsing is strict: anything off the stored shape is rejected,
		// never defaulted.
		for _, s := range []string{"", "9am", "09:00", "9:00 AM", "09:00 am", "25:00 PM", "09:60 AM"} {
			_, err := domain.ParseClockTime(s)
			assert.Error(t, err, "input %q", s)
		}
	})
}

func TestClockTimeMinuteOfDay(t *testing.T) {
	assert.Equal(t, 0, domain.ClockTime{}.MinuteOfDay())
	assert.Equal(t, 9*60+30, domain.ClockTime{Hour: 9, Minute: 30}.MinuteOfDay())
	assert.Equal(t, 23*60+59, domain.ClockTime{Hour: 23, Minute: 59}.MinuteOfDay())
}

func TestClockTimeString(t *testing.T) {
	assert.Equal(t, "09:30 AM", domain.ClockTime{Hour: 9, Minute: 30}.String())
	assert.Equal(t, "12:00 AM", domain.ClockTime{}.String())
	assert.Equal(t, "05:00 PM", domain.ClockTime{Hour: 17}.String())
}

func TestWeeklyAvailabilityValidate(t *testing.T) {
	t.Run("valid schedule", func(t *testing.T) {
		weekly := &domain.WeeklyAvailability{}
		weekly.Days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "09:00 AM", End: "05:00 PM"}
		assert.NoError(t, weekly.Validate())
	})

	t.Run("disabled days are not parsed", func(t *testing.T) {
		weekly := &domain.WeeklyAvailability{}
		weekly.Days[int(time.Sunday)] = domain.DayWindow{Enabled: false, Start: "garbage", End: ""}
		assert.NoError(t, weekly.Validate())
	})

	t.Run("malformed boundary", func(t *testing.T) {
		weekly := &domain.WeeklyAvailability{}
		weekly.Days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "9am", End: "05:00 PM"}
		assert.Error(t, weekly.Validate())
	})

	t.Run("inverted window", func(t *testing.T) {
		weekly := &domain.WeeklyAvailability{}
		weekly.Days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "05:00 PM", End: "09:00 AM"}
		assert.Error(t, weekly.Validate())
	})

	t.Run("zero-length window", func(t *testing.T) {
		weekly := &domain.WeeklyAvailability{}
		weekly.Days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "09:00 AM", End: "09:00 AM"}
		assert.NoError(t, weekly.Validate())
	})
}
