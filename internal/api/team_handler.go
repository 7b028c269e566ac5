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

// TeamHandler holds the team service dependency.
type TeamHandler struct {
	teamService service.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// --- Request/Response Structs ---

type TeamRequest struct {
	Name       string            `json:"name" binding:"required"`
	AgeGroup   string            `json:"ageGroup" binding:"required"`
	SkillLevel domain.SkillLevel `json:"skillLevel" binding:"required,oneof=beginner intermediate advanced"`
	Season     string            `json:"season,omitempty"`
	IsActive   *bool             `json:"isActive,omitempty"`
}

type AddPlayerRequest struct {
	Name         string `json:"name" binding:"required"`
	Position     string `json:"position,omitempty"`
	JerseyNumber int    `json:"jerseyNumber,omitempty"`
}

type PlayerResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Position     string    `json:"position,omitempty"`
	JerseyNumber int       `json:"jerseyNumber,omitempty"`
	JoinedAt     time.Time `json:"joinedAt"`
}

type TeamResponse struct {
	ID         string            `json:"id"`
	ClubID     string            `json:"clubId"`
	Name       string            `json:"name"`
	AgeGroup   string            `json:"ageGroup"`
	SkillLevel domain.SkillLevel `json:"skillLevel"`
	Season     string            `json:"season,omitempty"`
	IsActive   bool              `json:"isActive"`
	Players    []PlayerResponse  `json:"players"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func MapTeamToResponse(team *domain.Team) TeamResponse {
	players := make([]PlayerResponse, 0, len(team.Players))
	for _, p := range team.Players {
		players = append(players, PlayerResponse{
			ID:           p.ID.Hex(),
			Name:         p.Name,
			Position:     p.Position,
			JerseyNumber: p.JerseyNumber,
			JoinedAt:     p.JoinedAt,
		})
	}
	return TeamResponse{
		ID:         team.ID.Hex(),
		ClubID:     team.ClubID.Hex(),
		Name:       team.Name,
		AgeGroup:   team.AgeGroup,
		SkillLevel: team.SkillLevel,
		Season:     team.Season,
		IsActive:   team.IsActive,
		Players:    players,
		CreatedAt:  team.CreatedAt,
	}
}

// --- Handler Methods ---

func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), userID, c.Param("clubId"), service.TeamInput{
		Name:       req.Name,
		AgeGroup:   req.AgeGroup,
		SkillLevel: req.SkillLevel,
		Season:     req.Season,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTeamToResponse(team))
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	team, err := h.teamService.GetTeam(c.Request.Context(), userID, c.Param("teamId"))
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTeamToResponse(team))
}

func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	activeOnly := c.Query("active") == "true"
	teams, err := h.teamService.ListTeams(c.Request.Context(), userID, c.Param("clubId"), activeOnly)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	out := make([]TeamResponse, 0, len(teams))
	for i := range teams {
		out = append(out, MapTeamToResponse(&teams[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	team, err := h.teamService.UpdateTeam(c.Request.Context(), userID, c.Param("teamId"), service.TeamInput{
		Name:       req.Name,
		AgeGroup:   req.AgeGroup,
		SkillLevel: req.SkillLevel,
		Season:     req.Season,
	}, req.IsActive)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapTeamToResponse(team))
}

func (h *TeamHandler) AddPlayer(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req AddPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	team, err := h.teamService.AddPlayer(c.Request.Context(), userID, c.Param("teamId"), req.Name, req.Position, req.JerseyNumber)
	if err != nil {
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapTeamToResponse(team))
}

func (h *TeamHandler) RemovePlayer(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	err = h.teamService.RemovePlayer(c.Request.Context(), userID, c.Param("teamId"), c.Param("playerId"))
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		respondTeamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Player removed"})
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTeamNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidID):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
