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

const enrollmentCollectionName = "enrollments"

// mongoEnrollmentRepository implements repository.EnrollmentRepository
type mongoEnrollmentRepository struct {
	collection *mongo.Collection
}

// NewMongoEnrollmentRepository creates a new Enrollment repository backed by MongoDB.
func NewMongoEnrollmentRepository(db *mongo.Database) repository.EnrollmentRepository {
	return &mongoEnrollmentRepository{
		collection: db.Collection(enrollmentCollectionName),
	}
}

// Create inserts a new enrollment into the database.
func (r *mongoEnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) (primitive.ObjectID, error) {
	if enrollment.ProgramID == primitive.NilObjectID ||
		enrollment.CoachID == primitive.NilObjectID ||
		enrollment.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("enrollment requires programId, coachId, and clientId")
	}

	enrollment.ID = primitive.NewObjectID()
	enrollment.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, enrollment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted enrollment ID")
	}

	return insertedID, nil
}

// GetByID retrieves an enrollment by its ID.
func (r *mongoEnrollmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// GetByClientID retrieves all enrollments of a client, newest first.
func (r *mongoEnrollmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Enrollment, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

// GetByCoachID retrieves all enrollments into a coach's programs, newest first.
func (r *mongoEnrollmentRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Enrollment, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

// GetByProgramAndClient retrieves the enrollment of a client in a program, if any.
func (r *mongoEnrollmentRepository) GetByProgramAndClient(ctx context.Context, programID, clientID primitive.ObjectID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	filter := bson.M{"programId": programID, "clientId": clientID}

	err := r.collection.FindOne(ctx, filter).Decode(&enrollment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *mongoEnrollmentRepository) find(ctx context.Context, filter bson.M) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// EnsureEnrollmentIndexes creates necessary indexes for the enrollments collection.
func EnsureEnrollmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One enrollment per client per program
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal here; startup logs it.
	}
}
