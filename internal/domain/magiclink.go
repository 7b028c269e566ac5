package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MagicLink is a single-use, time-boxed login token delivered by email.
type MagicLink struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"` // stored lowercased
	Token     string             `bson:"token" json:"-"`     // 64 hex chars
	ExpiresAt time.Time          `bson:"expiresAt" json:"expiresAt"`
	UsedAt    *time.Time         `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (l *MagicLink) IsExpired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

func (l *MagicLink) IsUsed() bool {
	return l.UsedAt != nil
}
