package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment pairs one client with one coach around a specific program.
// All of the pair's sessions hang off this record. CoachID is denormalized
// from the program for easier queries and authorization checks.
type Enrollment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID primitive.ObjectID `bson:"programId" json:"programId"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// PartyOf reports whether the given profile is the coach of this enrollment,
// the client, or neither.
func (e *Enrollment) PartyOf(profileID primitive.ObjectID) (isCoach bool, isMember bool) {
	switch profileID {
	case e.CoachID:
		return true, true
	case e.ClientID:
		return false, true
	}
	return false, false
}
