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

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session into the database. Sessions start unscheduled:
// no time, no consent from either side, version zero.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.EnrollmentID == primitive.NilObjectID || session.Title == "" {
		return primitive.NilObjectID, errors.New("session requires enrollmentId and title")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.Time = nil
	session.ClientAgreed = false
	session.CoachAgreed = false
	session.Version = 0

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}

	return insertedID, nil
}

// GetByID retrieves a session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByEnrollmentID retrieves all sessions of an enrollment in creation order.
func (r *mongoSessionRepository) GetByEnrollmentID(ctx context.Context, enrollmentID primitive.ObjectID) ([]domain.Session, error) {
	var sessions []domain.Session
	filter := bson.M{"enrollmentId": enrollmentID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateScheduling writes the scheduling triple {time, clientAgreed,
// coachAgreed} with a compare-and-set on the version the caller read. The
// filter matches both _id and that version; when another writer got in first
// the match count is zero and ErrConflict tells the caller to re-read and
// retry. This is the linearization point for the whole negotiation.
func (r *mongoSessionRepository) UpdateScheduling(ctx context.Context, session *domain.Session) error {
	if session.ID == primitive.NilObjectID {
		return errors.New("session ID is required for update")
	}

	filter := bson.M{"_id": session.ID, "version": session.Version}

	updateFields := bson.M{
		"clientAgreed": session.ClientAgreed,
		"coachAgreed":  session.CoachAgreed,
		"updatedAt":    time.Now().UTC(),
	}
	if session.Time != nil {
		updateFields["time"] = *session.Time
	}

	update := bson.M{
		"$set": updateFields,
		"$inc": bson.M{"version": 1},
	}
	if session.Time == nil {
		update["$unset"] = bson.M{"time": ""}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		// Either the session is gone or the version moved. Distinguish so
		// callers can retry conflicts but not chase deleted sessions.
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": session.ID})
		if err != nil {
			return err
		}
		if exists == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	session.Version++
	return nil
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "enrollmentId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "time", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal here; startup logs it.
	}
}
