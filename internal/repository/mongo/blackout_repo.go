package mongo

import (
	"alcyxob/coachlink/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const blackoutCollectionName = "blackouts"

// blackoutDoc is the stored shape: one document per profile holding all of
// its declared unavailable instants.
type blackoutDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ProfileID primitive.ObjectID `bson:"profileId"`
	Times     []time.Time        `bson:"times"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// mongoBlackoutRepository implements repository.BlackoutRepository
type mongoBlackoutRepository struct {
	collection *mongo.Collection
}

// NewMongoBlackoutRepository creates a new Blackout repository backed by MongoDB.
func NewMongoBlackoutRepository(db *mongo.Database) repository.BlackoutRepository {
	return &mongoBlackoutRepository{
		collection: db.Collection(blackoutCollectionName),
	}
}

// GetTimes retrieves a profile's blackout instants. A profile that never
// declared any gets an empty list, not an error.
func (r *mongoBlackoutRepository) GetTimes(ctx context.Context, profileID primitive.ObjectID) ([]time.Time, error) {
	var doc blackoutDoc
	filter := bson.M{"profileId": profileID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []time.Time{}, nil
		}
		return nil, err
	}

	times := make([]time.Time, len(doc.Times))
	for i, t := range doc.Times {
		times[i] = t.UTC()
	}
	return times, nil
}

// Add records a blackout instant for the profile, minute-truncated. $addToSet
// keeps repeated submissions of the same instant from piling up.
func (r *mongoBlackoutRepository) Add(ctx context.Context, profileID primitive.ObjectID, t time.Time) error {
	filter := bson.M{"profileId": profileID}
	update := bson.M{
		"$addToSet": bson.M{"times": t.UTC().Truncate(time.Minute)},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// Remove deletes a blackout instant from the profile's list.
func (r *mongoBlackoutRepository) Remove(ctx context.Context, profileID primitive.ObjectID, t time.Time) error {
	filter := bson.M{"profileId": profileID}
	update := bson.M{
		"$pull": bson.M{"times": t.UTC().Truncate(time.Minute)},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureBlackoutIndexes creates necessary indexes for the blackouts collection.
func EnsureBlackoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profileId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal here; startup logs it.
	}
}
