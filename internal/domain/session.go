package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is one coaching session inside an Enrollment. It is created from a
// program's session template with no time and no consent, and from then on is
// mutated only through the propose/accept/cancel scheduling operations.
//
// The scheduling state (unscheduled/proposed/waiting/scheduled) is never
// stored; it is always derived from {Time, ClientAgreed, CoachAgreed} plus the
// viewer's identity, so it cannot drift from the underlying flags.
type Session struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EnrollmentID primitive.ObjectID `bson:"enrollmentId" json:"enrollmentId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Time         *time.Time         `bson:"time,omitempty" json:"time,omitempty"` // Proposed/confirmed instant, minute granularity, UTC
	ClientAgreed bool               `bson:"clientAgreed" json:"clientAgreed"`
	CoachAgreed  bool               `bson:"coachAgreed" json:"coachAgreed"`
	Version      int64              `bson:"version" json:"-"` // Optimistic-lock counter, bumped on every scheduling write
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Confirmed reports whether both parties have agreed to the current time.
// A session can never be confirmed without a time.
func (s *Session) Confirmed() bool {
	return s.Time != nil && s.ClientAgreed && s.CoachAgreed
}
