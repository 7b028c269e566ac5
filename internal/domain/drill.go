package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Drill is a reusable exercise in the club's drill library, as opposed to a
// GeneratedDrill which lives inside one session plan.
type Drill struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubID      primitive.ObjectID `bson:"clubId" json:"clubId"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Name        string             `bson:"name" json:"name"`
	Category    DrillCategory      `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AgeGroups   []string           `bson:"ageGroups,omitempty" json:"ageGroups,omitempty"`
	Duration    int                `bson:"duration,omitempty" json:"duration,omitempty"` // typical minutes
	Equipment   []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Difficulty  string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g. "beginner", "intermediate"
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
