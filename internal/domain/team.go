package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SkillLevel buckets a team's overall ability.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Team is a roster of players within a club for one season.
// Players are embedded; the roster is small and always read with the team.
type Team struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubID     primitive.ObjectID `bson:"clubId" json:"clubId"`
	Name       string             `bson:"name" json:"name"`
	AgeGroup   string             `bson:"ageGroup" json:"ageGroup"` // e.g. "U10"
	SkillLevel SkillLevel         `bson:"skillLevel" json:"skillLevel"`
	Season     string             `bson:"season" json:"season"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	Players    []Player           `bson:"players,omitempty" json:"players,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Player is a roster entry. Players are not users; parents are linked at the
// club level through memberships.
type Player struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Position     string             `bson:"position,omitempty" json:"position,omitempty"`
	JerseyNumber int                `bson:"jerseyNumber,omitempty" json:"jerseyNumber,omitempty"`
	JoinedAt     time.Time          `bson:"joinedAt" json:"joinedAt"`
}
