package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Club is the top-level tenant. All teams, sessions and drills belong to a club.
type Club struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	LogoURL      string             `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	PrimaryColor string             `bson:"primaryColor,omitempty" json:"primaryColor,omitempty"`
	Subscription string             `bson:"subscription,omitempty" json:"subscription,omitempty"` // e.g. "trial"
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Invitation is a pending offer to join a club with a given role.
// Single-use, expires after a configurable number of days (default 7).
type Invitation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubID      primitive.ObjectID `bson:"clubId" json:"clubId"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Role        Role               `bson:"role" json:"role"`
	Token       string             `bson:"token" json:"token"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expiresAt"`
	UsedAt      *time.Time         `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	UsedByEmail string             `bson:"usedByEmail,omitempty" json:"usedByEmail,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i *Invitation) IsUsed() bool {
	return i.UsedAt != nil
}
