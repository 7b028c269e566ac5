package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus tracks the lifecycle of a training session.
type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionPlanned   SessionStatus = "planned"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// SessionType distinguishes what a session is for.
type SessionType string

const (
	SessionTraining  SessionType = "training"
	SessionMatchPrep SessionType = "match_prep"
	SessionSkills    SessionType = "skills"
)

// DrillCategory buckets activities within a session plan.
type DrillCategory string

const (
	CategoryTechnical DrillCategory = "technical"
	CategoryTactical  DrillCategory = "tactical"
	CategoryPhysical  DrillCategory = "physical"
	CategoryMental    DrillCategory = "mental"
)

// Session is a stored training session. Once created by the generation
// pipeline the plan is never mutated by it again.
type Session struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClubID      primitive.ObjectID `bson:"clubId" json:"clubId"`
	TeamID      primitive.ObjectID `bson:"teamId" json:"teamId"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Title       string             `bson:"title" json:"title"`
	Date        time.Time          `bson:"date" json:"date"`
	Duration    int                `bson:"duration" json:"duration"` // minutes
	Type        SessionType        `bson:"type" json:"type"`
	Status      SessionStatus      `bson:"status" json:"status"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Plan        *SessionPlan       `bson:"plan,omitempty" json:"plan,omitempty"`
	AIGenerated bool               `bson:"aiGenerated" json:"aiGenerated"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SessionPlan is the normalized plan shape shared by both generation paths.
type SessionPlan struct {
	Title          string           `bson:"title" json:"title"`
	Objectives     []string         `bson:"objectives" json:"objectives"`
	WarmUp         GeneratedDrill   `bson:"warmUp" json:"warmUp"`
	MainActivities []GeneratedDrill `bson:"mainActivities" json:"mainActivities"`
	CoolDown       GeneratedDrill   `bson:"coolDown" json:"coolDown"`
	Notes          string           `bson:"notes" json:"notes"`
	TotalDuration  int              `bson:"totalDuration" json:"totalDuration"`
	Metadata       PlanMetadata     `bson:"metadata" json:"metadata"`
}

// GeneratedDrill is one activity inside a plan.
type GeneratedDrill struct {
	Name           string        `bson:"name" json:"name"`
	Category       DrillCategory `bson:"category" json:"category"`
	Duration       int           `bson:"duration" json:"duration"`
	Description    string        `bson:"description" json:"description"`
	Objectives     []string      `bson:"objectives" json:"objectives"`
	Setup          DrillSetup    `bson:"setup" json:"setup"`
	Instructions   []string      `bson:"instructions" json:"instructions"`
	CoachingPoints []string      `bson:"coachingPoints" json:"coachingPoints"`
	Progressions   []string      `bson:"progressions,omitempty" json:"progressions,omitempty"`
}

type DrillSetup struct {
	Space        string   `bson:"space" json:"space"`
	Equipment    []string `bson:"equipment" json:"equipment"`
	Organization string   `bson:"organization" json:"organization"`
}

// MetadataKind discriminates which generation path produced a plan.
type MetadataKind string

const (
	MetadataPrimary  MetadataKind = "primary"
	MetadataFallback MetadataKind = "fallback"
)

// PlanMetadata is a tagged union: exactly one of Primary or Fallback is set,
// according to Kind.
type PlanMetadata struct {
	Kind     MetadataKind      `bson:"kind" json:"kind"`
	Primary  *PrimaryMetadata  `bson:"primary,omitempty" json:"primary,omitempty"`
	Fallback *FallbackMetadata `bson:"fallback,omitempty" json:"fallback,omitempty"`
}

// PrimaryMetadata records provenance of a plan produced by the workflow provider.
type PrimaryMetadata struct {
	WorkflowSessionID string `bson:"workflowSessionId,omitempty" json:"workflowSessionId,omitempty"`
	RequestID         string `bson:"requestId,omitempty" json:"requestId,omitempty"`
	GeneratedAt       string `bson:"generatedAt,omitempty" json:"generatedAt,omitempty"`
}

// FallbackMetadata records that the secondary generator produced the plan
// and why the primary path was abandoned.
type FallbackMetadata struct {
	FallbackUsed bool   `bson:"fallbackUsed" json:"fallbackUsed"`
	Reason       string `bson:"reason" json:"reason"`
}
