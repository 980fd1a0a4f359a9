package service

import (
	"alcyxob/coachlink/internal/cache"
	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAvailabilityNotFound = errors.New("coach has not set up a weekly schedule")
	ErrInvalidSchedule      = errors.New("invalid weekly schedule")
)

// --- Service Interface ---
type AvailabilityService interface {
	SetWeeklySchedule(ctx context.Context, coachID primitive.ObjectID, days [7]domain.DayWindow) (*domain.WeeklyAvailability, error)
	GetWeeklySchedule(ctx context.Context, coachID primitive.ObjectID) (*domain.WeeklyAvailability, error)
	AddBlackout(ctx context.Context, profileID primitive.ObjectID, t time.Time) error
	RemoveBlackout(ctx context.Context, profileID primitive.ObjectID, t time.Time) error
	ListBlackouts(ctx context.Context, profileID primitive.ObjectID) ([]time.Time, error)
}

// --- Service Implementation ---

type availabilityService struct {
	availabilityRepo repository.AvailabilityRepository
	blackoutRepo     repository.BlackoutRepository
	slotCache        *cache.SlotCache
}

// NewAvailabilityService creates a new instance of availabilityService.
func NewAvailabilityService(
	availabilityRepo repository.AvailabilityRepository,
	blackoutRepo repository.BlackoutRepository,
	slotCache *cache.SlotCache,
) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		blackoutRepo:     blackoutRepo,
		slotCache:        slotCache,
	}
}

// SetWeeklySchedule validates and stores the coach's recurring schedule.
// Window boundaries are parsed strictly here so a bad submission is rejected
// up front instead of poisoning every later slot computation.
func (s *availabilityService) SetWeeklySchedule(ctx context.Context, coachID primitive.ObjectID, days [7]domain.DayWindow) (*domain.WeeklyAvailability, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}

	availability := &domain.WeeklyAvailability{
		CoachID: coachID,
		Days:    days,
	}
	if err := availability.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	if err := s.availabilityRepo.Upsert(ctx, availability); err != nil {
		return nil, err
	}

	s.slotCache.InvalidateProfile(ctx, coachID)
	return availability, nil
}

// GetWeeklySchedule retrieves the coach's recurring schedule.
func (s *availabilityService) GetWeeklySchedule(ctx context.Context, coachID primitive.ObjectID) (*domain.WeeklyAvailability, error) {
	availability, err := s.availabilityRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAvailabilityNotFound
		}
		return nil, err
	}
	return availability, nil
}

// AddBlackout declares the profile unavailable around the given instant.
func (s *availabilityService) AddBlackout(ctx context.Context, profileID primitive.ObjectID, t time.Time) error {
	if profileID == primitive.NilObjectID {
		return errors.New("profile ID is required")
	}
	if err := s.blackoutRepo.Add(ctx, profileID, t); err != nil {
		return err
	}
	s.slotCache.InvalidateProfile(ctx, profileID)
	return nil
}

// RemoveBlackout withdraws a declared blackout.
func (s *availabilityService) RemoveBlackout(ctx context.Context, profileID primitive.ObjectID, t time.Time) error {
	if profileID == primitive.NilObjectID {
		return errors.New("profile ID is required")
	}
	if err := s.blackoutRepo.Remove(ctx, profileID, t); err != nil {
		return err
	}
	s.slotCache.InvalidateProfile(ctx, profileID)
	return nil
}

// ListBlackouts retrieves the profile's declared blackout instants.
func (s *availabilityService) ListBlackouts(ctx context.Context, profileID primitive.ObjectID) ([]time.Time, error) {
	if profileID == primitive.NilObjectID {
		return nil, errors.New("profile ID is required")
	}
	return s.blackoutRepo.GetTimes(ctx, profileID)
}
