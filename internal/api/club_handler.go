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

// ClubHandler holds the club service dependency.
type ClubHandler struct {
	clubService service.ClubService
}

// NewClubHandler creates a new ClubHandler.
func NewClubHandler(clubService service.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

// --- Request/Response Structs ---

type CreateClubRequest struct {
	Name         string `json:"name" binding:"required"`
	PrimaryColor string `json:"primaryColor,omitempty"`
}

type CompleteOnboardingRequest struct {
	Name     string      `json:"name" binding:"required"`
	Role     domain.Role `json:"role" binding:"required,oneof=admin head_coach assistant_coach parent"`
	ClubName string      `json:"clubName,omitempty"`
}

type UpdateClubRequest struct {
	Name         *string `json:"name,omitempty"`
	PrimaryColor *string `json:"primaryColor,omitempty"`
	LogoURL      *string `json:"logoUrl,omitempty"`
}

type CreateInvitationRequest struct {
	Email string      `json:"email,omitempty" binding:"omitempty,email"`
	Role  domain.Role `json:"role" binding:"required,oneof=admin head_coach assistant_coach parent"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" binding:"required"`
}

type SetMemberStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

type LogoUploadRequest struct {
	ContentType string `json:"contentType,omitempty"`
}

type ClubResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LogoURL      string    `json:"logoUrl,omitempty"`
	PrimaryColor string    `json:"primaryColor,omitempty"`
	Subscription string    `json:"subscription,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type InvitationResponse struct {
	ID        string      `json:"id"`
	ClubID    string      `json:"clubId"`
	Email     string      `json:"email,omitempty"`
	Role      domain.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Used      bool        `json:"used"`
}

func MapClubToResponse(club *domain.Club) ClubResponse {
	return ClubResponse{
		ID:           club.ID.Hex(),
		Name:         club.Name,
		LogoURL:      club.LogoURL,
		PrimaryColor: club.PrimaryColor,
		Subscription: club.Subscription,
		CreatedAt:    club.CreatedAt,
	}
}

func MapInvitationToResponse(inv *domain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID.Hex(),
		ClubID:    inv.ClubID.Hex(),
		Email:     inv.Email,
		Role:      inv.Role,
		Token:     inv.Token,
		ExpiresAt: inv.ExpiresAt,
		Used:      inv.IsUsed(),
	}
}

// --- Handler Methods ---

func (h *ClubHandler) CreateClub(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	club, err := h.clubService.CreateClub(c.Request.Context(), userID, req.Name, req.PrimaryColor)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create club")
		return
	}
	c.JSON(http.StatusCreated, MapClubToResponse(club))
}

func (h *ClubHandler) CompleteOnboarding(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CompleteOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, club, err := h.clubService.CompleteOnboarding(c.Request.Context(), userID, req.Name, req.Role, req.ClubName)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) || errors.Is(err, service.ErrInvalidID) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to complete onboarding")
		return
	}

	resp := gin.H{"user": MapUserToResponse(user)}
	if club != nil {
		resp["club"] = MapClubToResponse(club)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClubHandler) GetClub(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	club, err := h.clubService.GetClub(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		respondClubError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapClubToResponse(club))
}

func (h *ClubHandler) UpdateClub(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	club, err := h.clubService.UpdateClub(c.Request.Context(), userID, c.Param("clubId"), req.Name, req.PrimaryColor, req.LogoURL)
	if err != nil {
		respondClubError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapClubToResponse(club))
}

func (h *ClubHandler) ListMyClubs(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	clubs, memberships, err := h.clubService.ListUserClubs(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list clubs")
		return
	}

	type clubWithRole struct {
		ClubResponse
		Role domain.Role `json:"role"`
	}
	out := make([]clubWithRole, 0, len(clubs))
	for i, club := range clubs {
		out = append(out, clubWithRole{ClubResponse: MapClubToResponse(&club), Role: memberships[i].Role})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ClubHandler) ListMembers(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	members, err := h.clubService.ListMembers(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		respondClubError(c, err)
		return
	}

	type memberResponse struct {
		User       UserResponse       `json:"user"`
		Membership MembershipResponse `json:"membership"`
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			User:       MapUserToResponse(&m.User),
			Membership: MapMembershipToResponse(m.Membership),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ClubHandler) SetMemberStatus(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req SetMemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err = h.clubService.SetMemberStatus(c.Request.Context(), userID, c.Param("clubId"), c.Param("memberId"), req.Status)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		respondClubError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member status updated"})
}

// --- Invitations ---

func (h *ClubHandler) CreateInvitation(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	inv, err := h.clubService.CreateInvitation(c.Request.Context(), userID, c.Param("clubId"), req.Email, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondClubError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapInvitationToResponse(inv))
}

func (h *ClubHandler) ListInvitations(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	invitations, err := h.clubService.ListInvitations(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		respondClubError(c, err)
		return
	}

	out := make([]InvitationResponse, 0, len(invitations))
	for i := range invitations {
		out = append(out, MapInvitationToResponse(&invitations[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ClubHandler) RevokeInvitation(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	err = h.clubService.RevokeInvitation(c.Request.Context(), userID, c.Param("clubId"), c.Param("invitationId"))
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		respondClubError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked"})
}

func (h *ClubHandler) AcceptInvitation(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	club, membership, err := h.clubService.AcceptInvitation(c.Request.Context(), userID, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvitation):
			abortWithError(c, http.StatusGone, err.Error())
		case errors.Is(err, service.ErrAlreadyMember):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to accept invitation")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"club":       MapClubToResponse(club),
		"membership": MapMembershipToResponse(*membership),
	})
}

// LogoUploadURL hands the client a presigned PUT URL for the club logo.
func (h *ClubHandler) LogoUploadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req LogoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	uploadURL, objectKey, err := h.clubService.LogoUploadURL(c.Request.Context(), userID, c.Param("clubId"), req.ContentType)
	if err != nil {
		respondClubError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL, "objectKey": objectKey})
}

// LogoDownloadURL returns a presigned GET URL for the club logo.
func (h *ClubHandler) LogoDownloadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	downloadURL, err := h.clubService.LogoDownloadURL(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		respondClubError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": downloadURL})
}

// respondClubError maps common club service errors to HTTP statuses.
func respondClubError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrClubNotFound), errors.Is(err, service.ErrLogoNotSet):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidID):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
