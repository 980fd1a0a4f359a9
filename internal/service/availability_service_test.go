package service_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetWeeklySchedule(t *testing.T) {
	coachID := primitive.NewObjectID()

	t.Run("stores a valid schedule", func(t *testing.T) {
		repo := &availabilityRepoStub{}
		svc := service.NewAvailabilityService(repo, &blackoutRepoStub{}, nil)

		var days [7]domain.DayWindow
		days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "09:00 AM", End: "05:00 PM"}

		availability, err := svc.SetWeeklySchedule(context.Background(), coachID, days)
		require.NoError(t, err)
		assert.Equal(t, coachID, availability.CoachID)
		require.NotNil(t, repo.weekly)
		assert.Equal(t, days, repo.weekly.Days)
	})

	t.Run("rejects a malformed window up front", func(t *testing.T) {
		repo := &availabilityRepoStub{}
		svc := service.NewAvailabilityService(repo, &blackoutRepoStub{}, nil)

		var days [7]domain.DayWindow
		days[int(time.Monday)] = domain.DayWindow{Enabled: true, Start: "9am", End: "05:00 PM"}

		_, err := svc.SetWeeklySchedule(context.Background(), coachID, days)
		assert.ErrorIs(t, err, service.ErrInvalidSchedule)
		assert.Nil(t, repo.weekly, "a rejected schedule must not be stored")
	})

	t.Run("rejects an inverted window", func(t *testing.T) {
		svc := service.NewAvailabilityService(&availabilityRepoStub{}, &blackoutRepoStub{}, nil)

		var days [7]domain.DayWindow
		days[int(time.Friday)] = domain.DayWindow{Enabled: true, Start: "05:00 PM", End: "09:00 AM"}

		_, err := svc.SetWeeklySchedule(context.Background(), coachID, days)
		assert.ErrorIs(t, err, service.ErrInvalidSchedule)
	})
}

func TestGetWeeklySchedule(t *testing.T) {
	coachID := primitive.NewObjectID()
	svc := service.NewAvailabilityService(&availabilityRepoStub{}, &blackoutRepoStub{}, nil)

	_, err := svc.GetWeeklySchedule(context.Background(), coachID)
	assert.ErrorIs(t, err, service.ErrAvailabilityNotFound)
}

func TestBlackouts(t *testing.T) {
	profileID := primitive.NewObjectID()
	blackoutRepo := &blackoutRepoStub{}
	svc := service.NewAvailabilityService(&availabilityRepoStub{}, blackoutRepo, nil)

	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.AddBlackout(context.Background(), profileID, at))

	times, err := svc.ListBlackouts(context.Background(), profileID)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{at}, times)

	// A profile that never declared any gets an empty list, not an error.
	times, err = svc.ListBlackouts(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, times)
}
