package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is one entry in a profile's inbox, written when the other
// party of an enrollment proposes, accepts or cancels a session time.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID `bson:"recipientId" json:"recipientId"`
	Message     string             `bson:"message" json:"message"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
