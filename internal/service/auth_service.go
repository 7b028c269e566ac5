package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/email"
	"github.com/joshshaloo/project-unify-sub000/internal/ratelimit"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"
	"github.com/joshshaloo/project-unify-sub000/internal/storage"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	// ErrInvalidMagicLink covers unknown, expired and already-used tokens.
	// Callers must not distinguish between those cases.
	ErrInvalidMagicLink = errors.New("invalid or expired login link")
	ErrTooManyRequests  = errors.New("too many sign-in attempts, try again later")
	ErrAvatarNotSet     = errors.New("user has no avatar")
)

const (
	magicLinkTTL       = 15 * time.Minute
	magicLinkRateLimit = 3
	magicLinkRateSpan  = 15 * time.Minute
)

// AuthService handles both sign-in paths: passwordless magic links and
// email/password credentials. Both end in the same JWT session token.
type AuthService interface {
	// RequestMagicLink issues a single-use login token and emails it.
	// It succeeds whether or not an account exists for the email, so the
	// endpoint cannot be used to enumerate accounts.
	RequestMagicLink(ctx context.Context, emailAddr string) error
	// VerifyMagicLink consumes a token, creating the account on first login.
	VerifyMagicLink(ctx context.Context, token string) (sessionToken string, user *domain.User, err error)
	Register(ctx context.Context, name, emailAddr, password string) (*domain.User, error)
	Login(ctx context.Context, emailAddr, password string) (token string, user *domain.User, err error)
	GetUser(ctx context.Context, userID string) (*domain.User, []domain.Membership, error)
	UpdateProfile(ctx context.Context, userID string, name, preferredLanguage, avatarURL *string, onboardingCompleted *bool) (*domain.User, error)
	// AvatarUploadURL returns a presigned PUT URL for the user's avatar and
	// the object key to store on the profile.
	AvatarUploadURL(ctx context.Context, userID, contentType string) (uploadURL, objectKey string, err error)
	// AvatarDownloadURL returns a presigned GET URL for the user's avatar.
	AvatarDownloadURL(ctx context.Context, userID string) (string, error)
	GetJWTSecret() string
}

type authService struct {
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	magicLinkRepo  repository.MagicLinkRepository
	mailer         email.Mailer
	fileStorage    storage.FileStorage
	limiter        *ratelimit.Limiter
	jwtSecret      string
	jwtExpiration  time.Duration
	now            func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	magicLinkRepo repository.MagicLinkRepository,
	mailer email.Mailer,
	fileStorage storage.FileStorage,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 30 * 24 * time.Hour
	}
	return &authService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		magicLinkRepo:  magicLinkRepo,
		mailer:         mailer,
		fileStorage:    fileStorage,
		limiter:        ratelimit.NewLimiter(magicLinkRateLimit, magicLinkRateSpan),
		jwtSecret:      jwtSecret,
		jwtExpiration:  jwtExpiration,
		now:            time.Now,
	}
}

// RequestMagicLink issues and emails a login token.
func (s *authService) RequestMagicLink(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return errors.New("a valid email address is required")
	}

	if !s.limiter.Allow("signin:" + emailAddr) {
		return ErrTooManyRequests
	}

	token, err := randomToken()
	if err != nil {
		return ErrTokenGeneration
	}

	link := &domain.MagicLink{
		Email:     emailAddr,
		Token:     token,
		ExpiresAt: s.now().Add(magicLinkTTL),
	}
	if _, err := s.magicLinkRepo.Create(ctx, link); err != nil {
		return err
	}

	if err := s.mailer.SendMagicLink(emailAddr, token); err != nil {
		log.Printf("ERROR: Failed to send magic link email to %s: %v", emailAddr, err)
		return errors.New("failed to send login email")
	}
	return nil
}

// VerifyMagicLink consumes a token and signs the user in, creating the
// account on first use. Every failure mode maps to ErrInvalidMagicLink.
func (s *authService) VerifyMagicLink(ctx context.Context, token string) (string, *domain.User, error) {
	if token == "" {
		return "", nil, ErrInvalidMagicLink
	}

	link, err := s.magicLinkRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidMagicLink
		}
		return "", nil, err
	}

	now := s.now()
	if link.IsUsed() {
		return "", nil, ErrInvalidMagicLink
	}
	if link.IsExpired(now) {
		// Spent tokens are useless; remove eagerly rather than waiting for
		// the maintenance sweep.
		if delErr := s.magicLinkRepo.Delete(ctx, link.ID); delErr != nil {
			log.Printf("WARN: Failed to delete expired magic link: %v", delErr)
		}
		return "", nil, ErrInvalidMagicLink
	}

	// MarkUsed only matches unused documents, so two concurrent
	// verifications cannot both succeed.
	if err := s.magicLinkRepo.MarkUsed(ctx, link.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidMagicLink
		}
		return "", nil, err
	}

	user, err := s.getOrCreateUser(ctx, link.Email)
	if err != nil {
		return "", nil, err
	}

	sessionToken, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	s.limiter.Reset("signin:" + link.Email)
	user.PasswordHash = ""
	return sessionToken, user, nil
}

func (s *authService) getOrCreateUser(ctx context.Context, emailAddr string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user = &domain.User{
		Email:      emailAddr,
		IdentityID: "magic-" + uuid.NewString(),
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Concurrent first-login race: the other request created the account.
		if errors.Is(err, repository.ErrDuplicate) {
			return s.userRepo.GetByEmail(ctx, emailAddr)
		}
		return nil, err
	}
	user.ID = userID
	return user, nil
}

// Register handles password-based account creation.
func (s *authService) Register(ctx context.Context, name, emailAddr, password string) (*domain.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if name == "" || emailAddr == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if !s.limiter.Allow("register:" + emailAddr) {
		return nil, ErrTooManyRequests
	}

	_, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hashedPassword),
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

// Login handles password authentication and JWT generation.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (token string, user *domain.User, err error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
		}
		return "", nil, err
	}

	// Magic-link-only accounts have no hash to compare against.
	if user.PasswordHash == "" {
		return "", nil, ErrAuthenticationFailed
	}
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// GetUser returns the user's profile together with their club memberships.
func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, []domain.Membership, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	memberships, err := s.membershipRepo.GetByUser(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	user.PasswordHash = ""
	return user, memberships, nil
}

// UpdateProfile applies the provided (non-nil) profile fields.
func (s *authService) UpdateProfile(ctx context.Context, userID string, name, preferredLanguage, avatarURL *string, onboardingCompleted *bool) (*domain.User, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		user.Name = *name
	}
	if preferredLanguage != nil {
		user.PreferredLanguage = *preferredLanguage
	}
	if avatarURL != nil && *avatarURL != user.AvatarURL {
		if user.AvatarURL != "" {
			if err := s.fileStorage.DeleteObject(ctx, user.AvatarURL); err != nil {
				log.Printf("WARN: Failed to delete old avatar %s for user %s: %v", user.AvatarURL, user.ID.Hex(), err)
			}
		}
		user.AvatarURL = *avatarURL
	}
	if onboardingCompleted != nil {
		user.OnboardingCompleted = *onboardingCompleted
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// AvatarUploadURL hands out a presigned PUT URL for the caller's avatar. The
// client reports the returned object key back via UpdateProfile once the
// upload finishes.
func (s *authService) AvatarUploadURL(ctx context.Context, userID, contentType string) (string, string, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return "", "", err
	}
	if contentType == "" {
		contentType = "image/png"
	}

	objectKey := "users/" + id.Hex() + "/avatar"
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", "", err
	}
	return uploadURL, objectKey, nil
}

// AvatarDownloadURL returns a presigned GET URL for the caller's avatar.
func (s *authService) AvatarDownloadURL(ctx context.Context, userID string) (string, error) {
	id, err := parseObjectID(userID)
	if err != nil {
		return "", err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user.AvatarURL == "" {
		return "", ErrAvatarNotSet
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, user.AvatarURL, storage.DefaultPresignedURLExpiry)
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := s.now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			Issuer:    "project-unify",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}

// randomToken returns 32 random bytes hex-encoded (64 characters).
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
