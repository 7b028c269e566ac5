package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-for-auth-service"

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo, *fakeMagicLinkRepo, *fakeMailer) {
	t.Helper()
	userRepo := newFakeUserRepo()
	membershipRepo := &fakeMembershipRepo{}
	linkRepo := newFakeMagicLinkRepo()
	mailer := &fakeMailer{}
	svc := NewAuthService(userRepo, membershipRepo, linkRepo, mailer, &fakeStorage{}, testJWTSecret, 30*24*time.Hour)
	return svc, userRepo, linkRepo, mailer
}

func TestRequestMagicLinkIssuesToken(t *testing.T) {
	svc, _, linkRepo, mailer := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestMagicLink(ctx, "Coach@Example.com"))

	require.Len(t, mailer.magicLinks, 1)
	token := mailer.magicLinks[0]
	assert.Len(t, token, 64)

	link, err := linkRepo.GetByToken(ctx, token)
	require.NoError(t, err)
	// Email is normalized to lowercase.
	assert.Equal(t, "coach@example.com", link.Email)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), link.ExpiresAt, time.Minute)
}

func TestRequestMagicLinkRateLimited(t *testing.T) {
	svc, _, _, mailer := newTestAuthService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RequestMagicLink(ctx, "coach@example.com"))
	}
	err := svc.RequestMagicLink(ctx, "coach@example.com")
	assert.ErrorIs(t, err, ErrTooManyRequests)

	// The limit is per email; another address is unaffected.
	assert.NoError(t, svc.RequestMagicLink(ctx, "other@example.com"))
	assert.Len(t, mailer.magicLinks, 4)
}

func TestRequestMagicLinkRejectsBadEmail(t *testing.T) {
	svc, _, _, mailer := newTestAuthService(t)

	assert.Error(t, svc.RequestMagicLink(context.Background(), "not-an-email"))
	assert.Empty(t, mailer.magicLinks)
}

func TestVerifyMagicLinkCreatesAccountOnFirstLogin(t *testing.T) {
	svc, userRepo, _, mailer := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestMagicLink(ctx, "new@example.com"))
	token := mailer.magicLinks[0]

	sessionToken, user, err := svc.VerifyMagicLink(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionToken)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	stored, err := userRepo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	// Magic-link accounts get a synthesized identity placeholder.
	assert.Contains(t, stored.IdentityID, "magic-")
}

func TestVerifyMagicLinkIsSingleUse(t *testing.T) {
	svc, _, _, mailer := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestMagicLink(ctx, "coach@example.com"))
	token := mailer.magicLinks[0]

	_, _, err := svc.VerifyMagicLink(ctx, token)
	require.NoError(t, err)

	_, _, err = svc.VerifyMagicLink(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidMagicLink)
}

func TestVerifyMagicLinkExpired(t *testing.T) {
	svc, _, linkRepo, mailer := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestMagicLink(ctx, "coach@example.com"))
	token := mailer.magicLinks[0]

	// Force the token past its expiry.
	link, err := linkRepo.GetByToken(ctx, token)
	require.NoError(t, err)
	linkRepo.links[link.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, _, err = svc.VerifyMagicLink(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidMagicLink)
	// Expired tokens are removed eagerly.
	_, err = linkRepo.GetByToken(ctx, token)
	assert.Error(t, err)
}

func TestVerifyMagicLinkUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, _, err := svc.VerifyMagicLink(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidMagicLink)

	_, _, err = svc.VerifyMagicLink(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidMagicLink)
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Sam Coach", "sam@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	// Duplicate email is rejected.
	_, err = svc.Register(ctx, "Sam Again", "sam@example.com", "another-pass")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, loggedIn, err := svc.Login(ctx, "sam@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = svc.Login(ctx, "sam@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestLoginRejectsMagicLinkOnlyAccount(t *testing.T) {
	svc, _, _, mailer := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestMagicLink(ctx, "passwordless@example.com"))
	_, _, err := svc.VerifyMagicLink(ctx, mailer.magicLinks[0])
	require.NoError(t, err)

	// The account exists but has no password hash.
	_, _, err = svc.Login(ctx, "passwordless@example.com", "anything")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestRegisterPasswordTooShort(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "Sam", "sam@example.com", "short")
	assert.Error(t, err)
}

func TestRegisterRateLimited(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	// The first succeeds; repeats fail on the duplicate check but still
	// count against the window.
	_, err := svc.Register(ctx, "Coach", "burst@example.com", "password123")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.Register(ctx, "Coach", "burst@example.com", "password123")
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	}
	_, err = svc.Register(ctx, "Coach", "burst@example.com", "password123")
	assert.ErrorIs(t, err, ErrTooManyRequests)
}

func TestAvatarUploadAndDownloadURL(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Sam", "sam@example.com", "password123")
	require.NoError(t, err)
	userID := user.ID.Hex()

	uploadURL, objectKey, err := svc.AvatarUploadURL(ctx, userID, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "users/"+userID+"/avatar", objectKey)
	assert.Contains(t, uploadURL, objectKey)

	// Nothing to download until the key is stored on the profile.
	_, err = svc.AvatarDownloadURL(ctx, userID)
	assert.ErrorIs(t, err, ErrAvatarNotSet)

	updated, err := svc.UpdateProfile(ctx, userID, nil, nil, &objectKey, nil)
	require.NoError(t, err)
	assert.Equal(t, objectKey, updated.AvatarURL)

	downloadURL, err := svc.AvatarDownloadURL(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/download/"+objectKey, downloadURL)
}
