package mongo

import (
	"alcyxob/coachlink/internal/domain"
	"alcyxob/coachlink/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const availabilityCollectionName = "availability"

// mongoAvailabilityRepository implements repository.AvailabilityRepository
type mongoAvailabilityRepository struct {
	collection *mongo.Collection
}

// NewMongoAvailabilityRepository creates a new WeeklyAvailability repository backed by MongoDB.
func NewMongoAvailabilityRepository(db *mongo.Database) repository.AvailabilityRepository {
	return &mongoAvailabilityRepository{
		collection: db.Collection(availabilityCollectionName),
	}
}

// GetByCoachID retrieves a coach's weekly schedule. A coach who never set one
// up has no record, which surfaces as ErrNotFound: the scheduling paths treat
// that as a data-integrity problem rather than inventing a default schedule.
func (r *mongoAvailabilityRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) (*domain.WeeklyAvailability, error) {
	var availability domain.WeeklyAvailability
	filter := bson.M{"coachId": coachID}

	err := r.collection.FindOne(ctx, filter).Decode(&availability)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &availability, nil
}

// Upsert stores the coach's weekly schedule, replacing any previous one.
func (r *mongoAvailabilityRepository) Upsert(ctx context.Context, availability *domain.WeeklyAvailability) error {
	if availability.CoachID == primitive.NilObjectID {
		return errors.New("availability requires coachId")
	}

	filter := bson.M{"coachId": availability.CoachID}
	update := bson.M{"$set": bson.M{
		"coachId":   availability.CoachID,
		"days":      availability.Days,
		"updatedAt": time.Now().UTC(),
	}}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// EnsureAvailabilityIndexes creates necessary indexes for the availability collection.
func EnsureAvailabilityIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal here; startup logs it.
	}
}
