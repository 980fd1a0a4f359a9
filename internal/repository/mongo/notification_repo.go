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

const notificationCollectionName = "notifications"

// mongoNotificationRepository implements repository.NotificationRepository
type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new Notification repository backed by MongoDB.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

// Create inserts a new inbox entry.
func (r *mongoNotificationRepository) Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error) {
	if notification.RecipientID == primitive.NilObjectID || notification.Message == "" {
		return primitive.NilObjectID, errors.New("notification requires recipientId and message")
	}

	notification.ID = primitive.NewObjectID()
	notification.Read = false
	notification.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted notification ID")
	}

	return insertedID, nil
}

// GetByRecipientID retrieves a profile's inbox, newest first.
func (r *mongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error) {
	var notifications []domain.Notification
	filter := bson.M{"recipientId": recipientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkRead flags an inbox entry as read. The recipient filter keeps one user
// from touching another's inbox.
func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "recipientId": recipientID}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureNotificationIndexes creates necessary indexes for the notifications collection.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal here; startup logs it.
	}
}
