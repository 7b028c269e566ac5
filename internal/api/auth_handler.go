package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService  service.AuthService
	cookieSecure bool
	cookieMaxAge int
}

// NewAuthHandler creates a new AuthHandler. cookieSecure should be true
// everywhere except local development over plain HTTP.
func NewAuthHandler(authService service.AuthService, cookieSecure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
		cookieMaxAge: int(sessionTTL.Seconds()),
	}
}

// --- Request/Response Structs ---

type MagicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse excludes sensitive info like password hash.
type UserResponse struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	Name                string    `json:"name,omitempty"`
	AvatarURL           string    `json:"avatarUrl,omitempty"`
	PreferredLanguage   string    `json:"preferredLanguage,omitempty"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

type MembershipResponse struct {
	ClubID   string      `json:"clubId"`
	Role     domain.Role `json:"role"`
	Status   string      `json:"status"`
	JoinedAt time.Time   `json:"joinedAt"`
}

type SessionTokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	Name                *string `json:"name,omitempty"`
	PreferredLanguage   *string `json:"preferredLanguage,omitempty"`
	AvatarURL           *string `json:"avatarUrl,omitempty"`
	OnboardingCompleted *bool   `json:"onboardingCompleted,omitempty"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType,omitempty"`
}

func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:                  user.ID.Hex(),
		Email:               user.Email,
		Name:                user.Name,
		AvatarURL:           user.AvatarURL,
		PreferredLanguage:   user.PreferredLanguage,
		OnboardingCompleted: user.OnboardingCompleted,
		CreatedAt:           user.CreatedAt,
	}
}

func MapMembershipToResponse(m domain.Membership) MembershipResponse {
	return MembershipResponse{
		ClubID:   m.ClubID.Hex(),
		Role:     m.Role,
		Status:   m.Status,
		JoinedAt: m.JoinedAt,
	}
}

// --- Handler Methods ---

// RequestMagicLink godoc
// @Summary Request a sign-in link by email
// @Description Issues a single-use login link. Responds 200 whether or not
// an account exists for the address.
// @Tags Auth
// @Router /auth/magic-link [post]
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err := h.authService.RequestMagicLink(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrTooManyRequests) {
			abortWithError(c, http.StatusTooManyRequests, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not send login link")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a login link has been sent"})
}

// VerifyMagicLink godoc
// @Summary Verify a sign-in link token
// @Description Consumes the token, creates the account on first login and
// starts a session.
// @Tags Auth
// @Router /auth/verify [get]
func (h *AuthHandler) VerifyMagicLink(c *gin.Context) {
	token := c.Query("token")

	sessionToken, user, err := h.authService.VerifyMagicLink(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidMagicLink) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not verify login link")
		}
		return
	}

	h.setSessionCookie(c, sessionToken)
	c.JSON(http.StatusOK, SessionTokenResponse{Token: sessionToken, User: MapUserToResponse(user)})
}

// Register creates a password-based account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login authenticates with email and password and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else if errors.Is(err, service.ErrTokenGeneration) {
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, SessionTokenResponse{Token: token, User: MapUserToResponse(user)})
}

// Logout clears the session cookie. The JWT itself stays valid until expiry;
// there is no server-side session store to revoke.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user's profile and club memberships.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, memberships, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	membershipResponses := make([]MembershipResponse, 0, len(memberships))
	for _, m := range memberships {
		membershipResponses = append(membershipResponses, MapMembershipToResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{
		"user":        MapUserToResponse(user),
		"memberships": membershipResponses,
	})
}

// UpdateProfile applies partial profile changes for the authenticated user.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req.Name, req.PreferredLanguage, req.AvatarURL, req.OnboardingCompleted)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// AvatarUploadURL hands the client a presigned PUT URL for their avatar.
func (h *AuthHandler) AvatarUploadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	uploadURL, objectKey, err := h.authService.AvatarUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL")
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL, "objectKey": objectKey})
}

// AvatarDownloadURL returns a presigned GET URL for the caller's avatar.
func (h *AuthHandler) AvatarDownloadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	downloadURL, err := h.authService.AvatarDownloadURL(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrAvatarNotSet) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create download URL")
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": downloadURL})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, h.cookieMaxAge, "/", "", h.cookieSecure, true)
}
