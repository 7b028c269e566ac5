package service

import (
	"context"
	"testing"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type clubTestEnv struct {
	svc            ClubService
	clubRepo       *fakeClubRepo
	membershipRepo *fakeMembershipRepo
	invitationRepo *fakeInvitationRepo
	userRepo       *fakeUserRepo
	mailer         *fakeMailer
	storage        *fakeStorage
}

func newClubTestEnv(t *testing.T) *clubTestEnv {
	t.Helper()
	env := &clubTestEnv{
		clubRepo:       newFakeClubRepo(),
		membershipRepo: &fakeMembershipRepo{},
		invitationRepo: newFakeInvitationRepo(),
		userRepo:       newFakeUserRepo(),
		mailer:         &fakeMailer{},
		storage:        &fakeStorage{},
	}
	env.svc = NewClubService(env.clubRepo, env.membershipRepo, env.invitationRepo, env.userRepo, fakeTxRunner{}, env.mailer, env.storage)
	return env
}

func (e *clubTestEnv) addUser(t *testing.T, email string) primitive.ObjectID {
	t.Helper()
	id, err := e.userRepo.Create(context.Background(), &domain.User{Email: email})
	require.NoError(t, err)
	return id
}

func TestCreateClubMakesCreatorAdmin(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	creatorID := env.addUser(t, "founder@example.com")

	club, err := env.svc.CreateClub(ctx, creatorID.Hex(), "FC Test", "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "FC Test", club.Name)
	assert.Equal(t, "trial", club.Subscription)

	m, err := env.membershipRepo.GetByUserAndClub(ctx, creatorID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, m.Role)
	assert.True(t, m.IsActive())
}

func TestGetClubRequiresMembership(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	creatorID := env.addUser(t, "founder@example.com")
	outsiderID := env.addUser(t, "outsider@example.com")

	club, err := env.svc.CreateClub(ctx, creatorID.Hex(), "FC Test", "")
	require.NoError(t, err)

	_, err = env.svc.GetClub(ctx, outsiderID.Hex(), club.ID.Hex())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	got, err := env.svc.GetClub(ctx, creatorID.Hex(), club.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, club.ID, got.ID)
}

func TestCreateInvitationRoleRules(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	headCoachID := env.addUser(t, "head@example.com")
	env.membershipRepo.add(headCoachID, club.ID, domain.RoleHeadCoach, domain.MembershipActive)
	parentID := env.addUser(t, "parent@example.com")
	env.membershipRepo.add(parentID, club.ID, domain.RoleParent, domain.MembershipActive)

	// Head coach can invite coaches and parents.
	inv, err := env.svc.CreateInvitation(ctx, headCoachID.Hex(), club.ID.Hex(), "new@example.com", domain.RoleAssistantCoach)
	require.NoError(t, err)
	assert.Len(t, inv.Token, 64)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), inv.ExpiresAt, time.Minute)
	assert.Equal(t, []string{"new@example.com"}, env.mailer.invitations)

	// Only an admin can hand out the admin role.
	_, err = env.svc.CreateInvitation(ctx, headCoachID.Hex(), club.ID.Hex(), "x@example.com", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = env.svc.CreateInvitation(ctx, adminID.Hex(), club.ID.Hex(), "x@example.com", domain.RoleAdmin)
	assert.NoError(t, err)

	// Parents cannot invite at all.
	_, err = env.svc.CreateInvitation(ctx, parentID.Hex(), club.ID.Hex(), "y@example.com", domain.RoleParent)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestAcceptInvitation(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	inv, err := env.svc.CreateInvitation(ctx, adminID.Hex(), club.ID.Hex(), "coach@example.com", domain.RoleAssistantCoach)
	require.NoError(t, err)

	inviteeID := env.addUser(t, "coach@example.com")
	gotClub, membership, err := env.svc.AcceptInvitation(ctx, inviteeID.Hex(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, club.ID, gotClub.ID)
	assert.Equal(t, domain.RoleAssistantCoach, membership.Role)
	assert.True(t, membership.IsActive())

	// Single use.
	otherID := env.addUser(t, "coach2@example.com")
	_, _, err = env.svc.AcceptInvitation(ctx, otherID.Hex(), inv.Token)
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestAcceptInvitationEmailBound(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	inv, err := env.svc.CreateInvitation(ctx, adminID.Hex(), club.ID.Hex(), "intended@example.com", domain.RoleParent)
	require.NoError(t, err)

	// A different account cannot claim an invitation bound to another email.
	wrongID := env.addUser(t, "wrong@example.com")
	_, _, err = env.svc.AcceptInvitation(ctx, wrongID.Hex(), inv.Token)
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestAcceptInvitationExpired(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	inv, err := env.svc.CreateInvitation(ctx, adminID.Hex(), club.ID.Hex(), "late@example.com", domain.RoleParent)
	require.NoError(t, err)
	env.invitationRepo.invitations[inv.ID].ExpiresAt = time.Now().Add(-time.Hour)

	lateID := env.addUser(t, "late@example.com")
	_, _, err = env.svc.AcceptInvitation(ctx, lateID.Hex(), inv.Token)
	assert.ErrorIs(t, err, ErrInvalidInvitation)
}

func TestAcceptInvitationAlreadyMember(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	inv, err := env.svc.CreateInvitation(ctx, adminID.Hex(), club.ID.Hex(), "admin@example.com", domain.RoleParent)
	require.NoError(t, err)

	_, _, err = env.svc.AcceptInvitation(ctx, adminID.Hex(), inv.Token)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestLogoUploadURL(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	uploadURL, objectKey, err := env.svc.LogoUploadURL(ctx, adminID.Hex(), club.ID.Hex(), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "clubs/"+club.ID.Hex()+"/logo", objectKey)
	assert.Contains(t, uploadURL, objectKey)

	// Parents cannot request an upload URL.
	parentID := env.addUser(t, "parent@example.com")
	env.membershipRepo.add(parentID, club.ID, domain.RoleParent, domain.MembershipActive)
	_, _, err = env.svc.LogoUploadURL(ctx, parentID.Hex(), club.ID.Hex(), "image/png")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestLogoDownloadURL(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	// No logo uploaded yet.
	_, err = env.svc.LogoDownloadURL(ctx, adminID.Hex(), club.ID.Hex())
	assert.ErrorIs(t, err, ErrLogoNotSet)

	objectKey := "clubs/" + club.ID.Hex() + "/logo"
	_, err = env.svc.UpdateClub(ctx, adminID.Hex(), club.ID.Hex(), nil, nil, &objectKey)
	require.NoError(t, err)

	// Any active member may fetch the logo, parents included.
	parentID := env.addUser(t, "parent@example.com")
	env.membershipRepo.add(parentID, club.ID, domain.RoleParent, domain.MembershipActive)
	downloadURL, err := env.svc.LogoDownloadURL(ctx, parentID.Hex(), club.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/download/"+objectKey, downloadURL)

	// Non-members cannot.
	strangerID := env.addUser(t, "stranger@example.com")
	_, err = env.svc.LogoDownloadURL(ctx, strangerID.Hex(), club.ID.Hex())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateClubDeletesReplacedLogo(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	adminID := env.addUser(t, "admin@example.com")
	club, err := env.svc.CreateClub(ctx, adminID.Hex(), "FC Test", "")
	require.NoError(t, err)

	oldKey := "clubs/" + club.ID.Hex() + "/logo-old"
	_, err = env.svc.UpdateClub(ctx, adminID.Hex(), club.ID.Hex(), nil, nil, &oldKey)
	require.NoError(t, err)
	assert.Empty(t, env.storage.deleted)

	newKey := "clubs/" + club.ID.Hex() + "/logo"
	updated, err := env.svc.UpdateClub(ctx, adminID.Hex(), club.ID.Hex(), nil, nil, &newKey)
	require.NoError(t, err)
	assert.Equal(t, newKey, updated.LogoURL)
	assert.Equal(t, []string{oldKey}, env.storage.deleted)

	// Re-submitting the same key does not delete the live object.
	_, err = env.svc.UpdateClub(ctx, adminID.Hex(), club.ID.Hex(), nil, nil, &newKey)
	require.NoError(t, err)
	assert.Equal(t, []string{oldKey}, env.storage.deleted)
}

func TestCompleteOnboarding(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "new@example.com")

	user, club, err := env.svc.CompleteOnboarding(ctx, userID.Hex(), "Sam Coach", domain.RoleHeadCoach, "Riverside FC")
	require.NoError(t, err)
	assert.Equal(t, "Sam Coach", user.Name)
	assert.True(t, user.OnboardingCompleted)
	require.NotNil(t, club)
	assert.Equal(t, "Riverside FC", club.Name)
	assert.Equal(t, "trial", club.Subscription)

	m, err := env.membershipRepo.GetByUserAndClub(ctx, userID, club.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHeadCoach, m.Role)
	assert.True(t, m.IsActive())
}

func TestCompleteOnboardingWithoutClub(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "solo@example.com")

	user, club, err := env.svc.CompleteOnboarding(ctx, userID.Hex(), "Solo Parent", domain.RoleParent, "")
	require.NoError(t, err)
	assert.Nil(t, club)
	assert.True(t, user.OnboardingCompleted)

	memberships, err := env.membershipRepo.GetByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, memberships)
}

func TestCompleteOnboardingValidation(t *testing.T) {
	env := newClubTestEnv(t)
	ctx := context.Background()
	userID := env.addUser(t, "x@example.com")

	_, _, err := env.svc.CompleteOnboarding(ctx, userID.Hex(), "  ", domain.RoleParent, "")
	assert.Error(t, err)

	_, _, err = env.svc.CompleteOnboarding(ctx, userID.Hex(), "Name", "superuser", "")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
