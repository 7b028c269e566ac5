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

// DrillHandler holds the drill library service dependency.
type DrillHandler struct {
	drillService service.DrillService
}

// NewDrillHandler creates a new DrillHandler.
func NewDrillHandler(drillService service.DrillService) *DrillHandler {
	return &DrillHandler{drillService: drillService}
}

// --- Request/Response Structs ---

type DrillRequest struct {
	Name        string               `json:"name" binding:"required"`
	Category    domain.DrillCategory `json:"category" binding:"required,oneof=technical tactical physical mental"`
	Description string               `json:"description,omitempty"`
	AgeGroups   []string             `json:"ageGroups,omitempty"`
	Duration    int                  `json:"duration,omitempty"`
	Equipment   []string             `json:"equipment,omitempty"`
	Difficulty  string               `json:"difficulty,omitempty"`
	VideoURL    string               `json:"videoUrl,omitempty" binding:"omitempty,url"`
}

type DrillResponse struct {
	ID          string               `json:"id"`
	ClubID      string               `json:"clubId"`
	Name        string               `json:"name"`
	Category    domain.DrillCategory `json:"category"`
	Description string               `json:"description,omitempty"`
	AgeGroups   []string             `json:"ageGroups,omitempty"`
	Duration    int                  `json:"duration,omitempty"`
	Equipment   []string             `json:"equipment,omitempty"`
	Difficulty  string               `json:"difficulty,omitempty"`
	VideoURL    string               `json:"videoUrl,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func MapDrillToResponse(drill *domain.Drill) DrillResponse {
	return DrillResponse{
		ID:          drill.ID.Hex(),
		ClubID:      drill.ClubID.Hex(),
		Name:        drill.Name,
		Category:    drill.Category,
		Description: drill.Description,
		AgeGroups:   drill.AgeGroups,
		Duration:    drill.Duration,
		Equipment:   drill.Equipment,
		Difficulty:  drill.Difficulty,
		VideoURL:    drill.VideoURL,
		CreatedAt:   drill.CreatedAt,
	}
}

func drillInputFromRequest(req DrillRequest) service.DrillInput {
	return service.DrillInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		AgeGroups:   req.AgeGroups,
		Duration:    req.Duration,
		Equipment:   req.Equipment,
		Difficulty:  req.Difficulty,
		VideoURL:    req.VideoURL,
	}
}

// --- Handler Methods ---

func (h *DrillHandler) CreateDrill(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req DrillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	drill, err := h.drillService.CreateDrill(c.Request.Context(), userID, c.Param("clubId"), drillInputFromRequest(req))
	if err != nil {
		respondDrillError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapDrillToResponse(drill))
}

func (h *DrillHandler) GetDrill(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	drill, err := h.drillService.GetDrill(c.Request.Context(), userID, c.Param("drillId"))
	if err != nil {
		respondDrillError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapDrillToResponse(drill))
}

func (h *DrillHandler) ListDrills(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	drills, err := h.drillService.ListDrills(c.Request.Context(), userID, c.Param("clubId"))
	if err != nil {
		respondDrillError(c, err)
		return
	}

	out := make([]DrillResponse, 0, len(drills))
	for i := range drills {
		out = append(out, MapDrillToResponse(&drills[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *DrillHandler) UpdateDrill(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req DrillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	drill, err := h.drillService.UpdateDrill(c.Request.Context(), userID, c.Param("drillId"), drillInputFromRequest(req))
	if err != nil {
		respondDrillError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapDrillToResponse(drill))
}

func (h *DrillHandler) DeleteDrill(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.drillService.DeleteDrill(c.Request.Context(), userID, c.Param("drillId")); err != nil {
		respondDrillError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Drill deleted"})
}

func respondDrillError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrDrillNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidID):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
