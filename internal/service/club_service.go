package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/email"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"
	"github.com/joshshaloo/project-unify-sub000/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrClubNotFound       = errors.New("club not found")
	ErrInvalidInvitation  = errors.New("invitation is invalid, expired or already used")
	ErrAlreadyMember      = errors.New("user is already a member of this club")
	ErrInvalidRole        = errors.New("invalid role")
	ErrMemberNotFound     = errors.New("member not found in this club")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrLogoNotSet         = errors.New("club has no logo")
)

const invitationTTL = 7 * 24 * time.Hour

// ClubMember pairs a membership with the member's profile for listings.
type ClubMember struct {
	User       domain.User       `json:"user"`
	Membership domain.Membership `json:"membership"`
}

// ClubService manages clubs, memberships and invitations.
type ClubService interface {
	// CreateClub creates the club and makes the creator its admin,
	// atomically.
	CreateClub(ctx context.Context, creatorID string, name, primaryColor string) (*domain.Club, error)
	// CompleteOnboarding finishes first-login setup: sets the user's name,
	// marks onboarding done and, when clubName is given, creates a club with
	// the user enrolled under their chosen role. All in one transaction.
	CompleteOnboarding(ctx context.Context, userID, name string, role domain.Role, clubName string) (*domain.User, *domain.Club, error)
	GetClub(ctx context.Context, userID, clubID string) (*domain.Club, error)
	UpdateClub(ctx context.Context, userID, clubID string, name, primaryColor, logoURL *string) (*domain.Club, error)
	ListUserClubs(ctx context.Context, userID string) ([]domain.Club, []domain.Membership, error)
	ListMembers(ctx context.Context, userID, clubID string) ([]ClubMember, error)
	SetMemberStatus(ctx context.Context, actorID, clubID, memberID, status string) error

	CreateInvitation(ctx context.Context, actorID, clubID, inviteeEmail string, role domain.Role) (*domain.Invitation, error)
	ListInvitations(ctx context.Context, actorID, clubID string) ([]domain.Invitation, error)
	RevokeInvitation(ctx context.Context, actorID, clubID, invitationID string) error
	// AcceptInvitation consumes the token and enrolls the user. Marking the
	// invitation used and creating the membership happen in one transaction.
	AcceptInvitation(ctx context.Context, userID, token string) (*domain.Club, *domain.Membership, error)

	// LogoUploadURL returns a presigned PUT URL for the club logo and the
	// object key the client should report back via UpdateClub.
	LogoUploadURL(ctx context.Context, userID, clubID, contentType string) (uploadURL, objectKey string, err error)
	// LogoDownloadURL returns a presigned GET URL for the club logo. Any
	// active member may read it.
	LogoDownloadURL(ctx context.Context, userID, clubID string) (string, error)
}

type clubService struct {
	clubRepo       repository.ClubRepository
	membershipRepo repository.MembershipRepository
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	tx             repository.TransactionRunner
	mailer         email.Mailer
	fileStorage    storage.FileStorage
	now            func() time.Time
}

// NewClubService creates a new instance of clubService.
func NewClubService(
	clubRepo repository.ClubRepository,
	membershipRepo repository.MembershipRepository,
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	tx repository.TransactionRunner,
	mailer email.Mailer,
	fileStorage storage.FileStorage,
) ClubService {
	return &clubService{
		clubRepo:       clubRepo,
		membershipRepo: membershipRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		tx:             tx,
		mailer:         mailer,
		fileStorage:    fileStorage,
		now:            time.Now,
	}
}

func (s *clubService) CreateClub(ctx context.Context, creatorID string, name, primaryColor string) (*domain.Club, error) {
	userID, err := parseObjectID(creatorID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("club name cannot be empty")
	}

	club := &domain.Club{
		Name:         name,
		PrimaryColor: primaryColor,
		Subscription: "trial",
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		clubID, err := s.clubRepo.Create(txCtx, club)
		if err != nil {
			return err
		}
		club.ID = clubID

		_, err = s.membershipRepo.Create(txCtx, &domain.Membership{
			UserID: userID,
			ClubID: clubID,
			Role:   domain.RoleAdmin,
			Status: domain.MembershipActive,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return club, nil
}

func (s *clubService) CompleteOnboarding(ctx context.Context, userID, name string, role domain.Role, clubName string) (*domain.User, *domain.Club, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, errors.New("name cannot be empty")
	}
	switch role {
	case domain.RoleAdmin, domain.RoleHeadCoach, domain.RoleAssistantCoach, domain.RoleParent:
	default:
		return nil, nil, ErrInvalidRole
	}

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	var club *domain.Club
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		user.Name = name
		user.OnboardingCompleted = true
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return err
		}

		if clubName = strings.TrimSpace(clubName); clubName == "" {
			return nil
		}
		club = &domain.Club{
			Name:         clubName,
			Subscription: "trial",
		}
		clubID, err := s.clubRepo.Create(txCtx, club)
		if err != nil {
			return err
		}
		club.ID = clubID
		_, err = s.membershipRepo.Create(txCtx, &domain.Membership{
			UserID: uid,
			ClubID: clubID,
			Role:   role,
			Status: domain.MembershipActive,
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = ""
	return user, club, nil
}

func (s *clubService) GetClub(ctx context.Context, userID, clubID string) (*domain.Club, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	// Any active member may view the club.
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleParent); err != nil {
		return nil, err
	}
	club, err := s.clubRepo.GetByID(ctx, cid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

func (s *clubService) UpdateClub(ctx context.Context, userID, clubID string, name, primaryColor, logoURL *string) (*domain.Club, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleAdmin); err != nil {
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, cid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		club.Name = strings.TrimSpace(*name)
	}
	if primaryColor != nil {
		club.PrimaryColor = *primaryColor
	}
	if logoURL != nil && *logoURL != club.LogoURL {
		// Remove the replaced object so the bucket does not accumulate
		// orphaned logos.
		if club.LogoURL != "" {
			if err := s.fileStorage.DeleteObject(ctx, club.LogoURL); err != nil {
				log.Printf("WARN: Failed to delete old logo %s for club %s: %v", club.LogoURL, club.ID.Hex(), err)
			}
		}
		club.LogoURL = *logoURL
	}
	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, err
	}
	return club, nil
}

func (s *clubService) ListUserClubs(ctx context.Context, userID string) ([]domain.Club, []domain.Membership, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, nil, err
	}
	memberships, err := s.membershipRepo.GetByUser(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	clubs := make([]domain.Club, 0, len(memberships))
	active := make([]domain.Membership, 0, len(memberships))
	for _, m := range memberships {
		if !m.IsActive() {
			continue
		}
		club, err := s.clubRepo.GetByID(ctx, m.ClubID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				log.Printf("WARN: Membership %s references missing club %s", m.ID.Hex(), m.ClubID.Hex())
				continue
			}
			return nil, nil, err
		}
		clubs = append(clubs, *club)
		active = append(active, m)
	}
	return clubs, active, nil
}

func (s *clubService) ListMembers(ctx context.Context, userID, clubID string) ([]ClubMember, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleParent); err != nil {
		return nil, err
	}

	memberships, err := s.membershipRepo.GetByClub(ctx, cid)
	if err != nil {
		return nil, err
	}
	members := make([]ClubMember, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.userRepo.GetByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		user.PasswordHash = ""
		members = append(members, ClubMember{User: *user, Membership: m})
	}
	return members, nil
}

func (s *clubService) SetMemberStatus(ctx context.Context, actorID, clubID, memberID, status string) error {
	uid, cid, err := parseUserAndClub(actorID, clubID)
	if err != nil {
		return err
	}
	mid, err := parseObjectID(memberID)
	if err != nil {
		return err
	}
	if status != domain.MembershipActive && status != domain.MembershipInactive {
		return errors.New("status must be active or inactive")
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleAdmin); err != nil {
		return err
	}
	if uid == mid {
		return errors.New("cannot change your own membership status")
	}

	if err := s.membershipRepo.SetStatus(ctx, mid, cid, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

// --- Invitations ---

func (s *clubService) CreateInvitation(ctx context.Context, actorID, clubID, inviteeEmail string, role domain.Role) (*domain.Invitation, error) {
	uid, cid, err := parseUserAndClub(actorID, clubID)
	if err != nil {
		return nil, err
	}
	switch role {
	case domain.RoleAdmin, domain.RoleHeadCoach, domain.RoleAssistantCoach, domain.RoleParent:
	default:
		return nil, ErrInvalidRole
	}
	actorRole, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleHeadCoach)
	if err != nil {
		return nil, err
	}
	// Only an admin can hand out the admin role.
	if role == domain.RoleAdmin && actorRole != domain.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	club, err := s.clubRepo.GetByID(ctx, cid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	token, err := invitationToken()
	if err != nil {
		return nil, err
	}
	inv := &domain.Invitation{
		ClubID:    cid,
		Email:     strings.ToLower(strings.TrimSpace(inviteeEmail)),
		Role:      role,
		Token:     token,
		CreatedBy: uid,
		ExpiresAt: s.now().Add(invitationTTL),
	}
	invID, err := s.invitationRepo.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	inv.ID = invID

	if inv.Email != "" {
		if err := s.mailer.SendInvitation(inv.Email, inv, club.Name); err != nil {
			// The invitation stands; the link can still be shared manually.
			log.Printf("ERROR: Failed to send invitation email to %s: %v", inv.Email, err)
		}
	}
	return inv, nil
}

func (s *clubService) ListInvitations(ctx context.Context, actorID, clubID string) ([]domain.Invitation, error) {
	uid, cid, err := parseUserAndClub(actorID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleHeadCoach); err != nil {
		return nil, err
	}
	return s.invitationRepo.GetByClub(ctx, cid)
}

func (s *clubService) RevokeInvitation(ctx context.Context, actorID, clubID, invitationID string) error {
	uid, cid, err := parseUserAndClub(actorID, clubID)
	if err != nil {
		return err
	}
	iid, err := parseObjectID(invitationID)
	if err != nil {
		return err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleHeadCoach); err != nil {
		return err
	}

	inv, err := s.invitationRepo.GetByID(ctx, iid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}
	if inv.ClubID != cid {
		return ErrInvitationNotFound
	}
	return s.invitationRepo.Delete(ctx, iid)
}

func (s *clubService) AcceptInvitation(ctx context.Context, userID, token string) (*domain.Club, *domain.Membership, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, nil, err
	}
	if token == "" {
		return nil, nil, ErrInvalidInvitation
	}

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidInvitation
		}
		return nil, nil, err
	}
	if inv.IsUsed() || inv.IsExpired(s.now()) {
		return nil, nil, ErrInvalidInvitation
	}

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	// Email-bound invitations can only be accepted by that email's account.
	if inv.Email != "" && inv.Email != user.Email {
		return nil, nil, ErrInvalidInvitation
	}

	if existing, err := s.membershipRepo.GetByUserAndClub(ctx, uid, inv.ClubID); err == nil && existing.IsActive() {
		return nil, nil, ErrAlreadyMember
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	membership := &domain.Membership{
		UserID: uid,
		ClubID: inv.ClubID,
		Role:   inv.Role,
		Status: domain.MembershipActive,
	}
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.invitationRepo.MarkUsed(txCtx, inv.ID, s.now(), user.Email); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidInvitation
			}
			return err
		}
		id, err := s.membershipRepo.Create(txCtx, membership)
		if err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyMember
			}
			return err
		}
		membership.ID = id
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, inv.ClubID)
	if err != nil {
		return nil, nil, err
	}
	return club, membership, nil
}

func (s *clubService) LogoUploadURL(ctx context.Context, userID, clubID, contentType string) (string, string, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return "", "", err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleAdmin); err != nil {
		return "", "", err
	}
	if contentType == "" {
		contentType = "image/png"
	}

	objectKey := "clubs/" + cid.Hex() + "/logo"
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", err
	}
	return uploadURL, objectKey, nil
}

func (s *clubService) LogoDownloadURL(ctx context.Context, userID, clubID string) (string, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return "", err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleParent); err != nil {
		return "", err
	}
	club, err := s.clubRepo.GetByID(ctx, cid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrClubNotFound
		}
		return "", err
	}
	if club.LogoURL == "" {
		return "", ErrLogoNotSet
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, club.LogoURL, storage.DefaultPresignedURLExpiry)
}

func parseUserAndClub(userID, clubID string) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	cid, err := parseObjectID(clubID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return uid, cid, nil
}

func invitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
