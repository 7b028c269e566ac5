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

// AIHandler holds the AI generation service dependency.
type AIHandler struct {
	aiService service.AIService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(aiService service.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// --- Request/Response Structs ---

type GenerateSessionRequest struct {
	ClubID             string             `json:"clubId" binding:"required"`
	TeamID             string             `json:"teamId" binding:"required"`
	Duration           int                `json:"duration" binding:"required"`
	FocusAreas         []string           `json:"focusAreas,omitempty"`
	Date               time.Time          `json:"date,omitempty"`
	Type               domain.SessionType `json:"type,omitempty" binding:"omitempty,oneof=training match_prep skills"`
	WeatherConditions  string             `json:"weatherConditions,omitempty"`
	AvailableEquipment []string           `json:"availableEquipment,omitempty"`
}

type GenerateSessionResponse struct {
	Session        SessionResponse `json:"session"`
	UsedFallback   bool            `json:"usedFallback"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
}

// --- Handler Methods ---

// GenerateSession godoc
// @Summary Generate a training session plan
// @Description Runs the two-provider generation pipeline and stores the
// resulting session as a draft.
// @Tags AI
// @Router /ai/sessions [post]
func (h *AIHandler) GenerateSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req GenerateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.aiService.GenerateSession(c.Request.Context(), userID, service.GenerateSessionInput{
		ClubID:             req.ClubID,
		TeamID:             req.TeamID,
		Duration:           req.Duration,
		FocusAreas:         req.FocusAreas,
		Date:               req.Date,
		Type:               req.Type,
		WeatherConditions:  req.WeatherConditions,
		AvailableEquipment: req.AvailableEquipment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDuration):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPermissionDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrTeamNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidID):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrGenerationFailed):
			abortWithError(c, http.StatusBadGateway, "Session generation is currently unavailable")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate session")
		}
		return
	}

	c.JSON(http.StatusCreated, GenerateSessionResponse{
		Session:        MapSessionToResponse(result.Session),
		UsedFallback:   result.UsedFallback,
		FallbackReason: result.FallbackReason,
	})
}

type SuggestDrillsRequest struct {
	AgeGroup    string               `json:"ageGroup" binding:"required"`
	Category    domain.DrillCategory `json:"category" binding:"required,oneof=technical tactical physical mental"`
	Focus       string               `json:"focus" binding:"required"`
	PlayerCount int                  `json:"playerCount,omitempty"`
	Duration    int                  `json:"duration,omitempty"`
}

// SuggestDrills returns drill ideas for a focus area.
func (h *AIHandler) SuggestDrills(c *gin.Context) {
	var req SuggestDrillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	drills, err := h.aiService.SuggestDrills(c.Request.Context(), service.DrillSuggestionInput{
		AgeGroup:    req.AgeGroup,
		Category:    req.Category,
		Focus:       req.Focus,
		PlayerCount: req.PlayerCount,
		Duration:    req.Duration,
	})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"drills": drills})
}

// ProviderStatus reports whether the primary workflow provider is reachable.
func (h *AIHandler) ProviderStatus(c *gin.Context) {
	healthy := h.aiService.ProviderHealthy(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"workflowHealthy": healthy})
}
