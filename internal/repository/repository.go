package repository

import (
	"context"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TransactionRunner executes fn inside a single datastore transaction.
// Repository calls made with the ctx passed to fn join that transaction.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// ClubRepository defines the interface for interacting with club data.
type ClubRepository interface {
	Create(ctx context.Context, club *domain.Club) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Club, error)
	Update(ctx context.Context, club *domain.Club) error
}

// MembershipRepository manages user-club role records.
type MembershipRepository interface {
	Create(ctx context.Context, m *domain.Membership) (primitive.ObjectID, error)
	GetByUserAndClub(ctx context.Context, userID, clubID primitive.ObjectID) (*domain.Membership, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Membership, error)
	GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Membership, error)
	SetStatus(ctx context.Context, userID, clubID primitive.ObjectID, status string) error
}

// TeamRepository defines the interface for interacting with team data.
// The player roster is embedded in the team document.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error)
	GetByClub(ctx context.Context, clubID primitive.ObjectID, activeOnly bool) ([]domain.Team, error)
	Update(ctx context.Context, team *domain.Team) error
	AddPlayer(ctx context.Context, teamID primitive.ObjectID, player domain.Player) error
	RemovePlayer(ctx context.Context, teamID, playerID primitive.ObjectID) error
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	ClubID primitive.ObjectID
	TeamID *primitive.ObjectID
	Status *domain.SessionStatus
	Limit  int64
	Offset int64
}

// SessionRepository defines the interface for interacting with session data.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	GetByClub(ctx context.Context, filter SessionFilter) ([]domain.Session, error)
	GetByTeam(ctx context.Context, teamID primitive.ObjectID, limit, offset int64) ([]domain.Session, error)
	// GetRecentByTeam returns sessions for the team dated at or after since,
	// most recent first, at most limit entries. Used as generation context.
	GetRecentByTeam(ctx context.Context, teamID primitive.ObjectID, since time.Time, limit int64) ([]domain.Session, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MagicLinkRepository manages single-use login tokens.
type MagicLinkRepository interface {
	Create(ctx context.Context, link *domain.MagicLink) (primitive.ObjectID, error)
	GetByToken(ctx context.Context, token string) (*domain.MagicLink, error)
	MarkUsed(ctx context.Context, id primitive.ObjectID, usedAt time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteExpired removes expired and spent tokens; maintenance, on demand.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// InvitationRepository manages club invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Invitation, error)
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Invitation, error)
	MarkUsed(ctx context.Context, id primitive.ObjectID, usedAt time.Time, usedByEmail string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DrillRepository defines the interface for the club drill library.
type DrillRepository interface {
	Create(ctx context.Context, drill *domain.Drill) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Drill, error)
	GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Drill, error)
	Update(ctx context.Context, drill *domain.Drill) error
	Delete(ctx context.Context, id, clubID primitive.ObjectID) error
}
