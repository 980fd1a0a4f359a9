package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionTemplate describes one session a program promises its enrollees.
// When a client enrolls, each template is materialized into a Session with
// no time and no consent from either side.
type SessionTemplate struct {
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// Program is a coach's offering on the marketplace.
type Program struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID     primitive.ObjectID `bson:"coachId" json:"coachId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CoverKey    string             `bson:"coverKey,omitempty" json:"-"` // S3 object key for the cover image
	Sessions    []SessionTemplate  `bson:"sessions" json:"sessions"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
