package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler holds the session service dependency.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- Request/Response Structs ---

type CreateSessionRequest struct {
	TeamID   string             `json:"teamId" binding:"required"`
	Title    string             `json:"title" binding:"required"`
	Date     time.Time          `json:"date" binding:"required"`
	Duration int                `json:"duration" binding:"required,min=1"`
	Type     domain.SessionType `json:"type" binding:"required,oneof=training match_prep skills"`
	Location string             `json:"location,omitempty"`
	Notes    string             `json:"notes,omitempty"`
}

type UpdateSessionStatusRequest struct {
	Status domain.SessionStatus `json:"status" binding:"required,oneof=draft planned completed cancelled"`
}

type SessionResponse struct {
	ID          string               `json:"id"`
	ClubID      string               `json:"clubId"`
	TeamID      string               `json:"teamId"`
	CreatedBy   string               `json:"createdBy"`
	Title       string               `json:"title"`
	Date        time.Time            `json:"date"`
	Duration    int                  `json:"duration"`
	Type        domain.SessionType   `json:"type"`
	Status      domain.SessionStatus `json:"status"`
	Location    string               `json:"location,omitempty"`
	Notes       string               `json:"notes,omitempty"`
	Plan        *domain.SessionPlan  `json:"plan,omitempty"`
	AIGenerated bool                 `json:"aiGenerated"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func MapSessionToResponse(session *domain.Session) SessionResponse {
	return SessionResponse{
		ID:          session.ID.Hex(),
		ClubID:      session.ClubID.Hex(),
		TeamID:      session.TeamID.Hex(),
		CreatedBy:   session.CreatedBy.Hex(),
		Title:       session.Title,
		Date:        session.Date,
		Duration:    session.Duration,
		Type:        session.Type,
		Status:      session.Status,
		Location:    session.Location,
		Notes:       session.Notes,
		Plan:        session.Plan,
		AIGenerated: session.AIGenerated,
		CreatedAt:   session.CreatedAt,
	}
}

// --- Handler Methods ---

func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	session, err := h.sessionService.CreateSession(c.Request.Context(), userID, c.Param("clubId"), service.SessionInput{
		TeamID:   req.TeamID,
		Title:    req.Title,
		Date:     req.Date,
		Duration: req.Duration,
		Type:     req.Type,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), userID, c.Param("sessionId"))
	if err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionToResponse(session))
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), userID, c.Param("clubId"), service.SessionListOptions{
		TeamID: c.Query("teamId"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondSessionError(c, err)
		return
	}

	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, MapSessionToResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *SessionHandler) ListTeamSessions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	sessions, err := h.sessionService.ListTeamSessions(c.Request.Context(), userID, c.Param("teamId"), limit, offset)
	if err != nil {
		respondSessionError(c, err)
		return
	}

	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, MapSessionToResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.sessionService.UpdateStatus(c.Request.Context(), userID, c.Param("sessionId"), req.Status); err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session status updated"})
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), userID, c.Param("sessionId")); err != nil {
		respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

func respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrTeamNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidID), errors.Is(err, service.ErrInvalidStatus):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusBadRequest, err.Error())
	}
}
