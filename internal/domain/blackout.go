package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlackoutList holds the absolute instants a profile (coach or client) has
// declared itself unavailable. One document per profile; instants are stored
// minute-truncated in UTC. A candidate slot within an hour of any entry is
// withheld from both parties' offerings.
type BlackoutList struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ProfileID primitive.ObjectID `bson:"profileId" json:"profileId"`
	Times     []time.Time        `bson:"times" json:"times"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
