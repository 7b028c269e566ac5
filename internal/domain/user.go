package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a user's role within a specific club.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleHeadCoach      Role = "head_coach"
	RoleAssistantCoach Role = "assistant_coach"
	RoleParent         Role = "parent"
)

// Membership status values.
const (
	MembershipActive   = "active"
	MembershipInactive = "inactive"
)

// User represents an account in the system. A user belongs to zero or more
// clubs through Membership records; roles are always club-scoped.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"` // unique, stored lowercased
	Name         string             `bson:"name,omitempty" json:"name,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty" json:"-"` // empty for magic-link-only accounts
	// IdentityID links to the external identity provider. Accounts created
	// through magic-link verification get a synthesized "magic-" placeholder.
	IdentityID          string    `bson:"identityId,omitempty" json:"-"`
	AvatarURL           string    `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	PreferredLanguage   string    `bson:"preferredLanguage,omitempty" json:"preferredLanguage,omitempty"`
	OnboardingCompleted bool      `bson:"onboardingCompleted" json:"onboardingCompleted"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Membership ties a user to a club with a role.
type Membership struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	ClubID   primitive.ObjectID `bson:"clubId" json:"clubId"`
	Role     Role               `bson:"role" json:"role"`
	Status   string             `bson:"status" json:"status"`
	JoinedAt time.Time          `bson:"joinedAt" json:"joinedAt"`
}

func (m Membership) IsActive() bool {
	return m.Status == MembershipActive
}
