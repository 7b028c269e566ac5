package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/ai"
	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"
)

var (
	ErrInvalidDuration  = errors.New("session duration must be between 30 and 180 minutes")
	ErrGenerationFailed = errors.New("session generation failed")
)

// Duration bounds accepted by the generation endpoint, in minutes.
const (
	MinSessionDuration = 30
	MaxSessionDuration = 180
)

// How much history feeds the generator as context.
const (
	historyWindow      = 14 * 24 * time.Hour
	historyMaxSessions = 5
)

// GenerateSessionInput is the request for AI session generation.
type GenerateSessionInput struct {
	ClubID             string
	TeamID             string
	Duration           int
	FocusAreas         []string
	Date               time.Time
	Type               domain.SessionType
	WeatherConditions  string
	AvailableEquipment []string
}

// GenerateSessionResult reports what the pipeline produced. UsedFallback and
// FallbackReason mirror the persisted plan metadata so callers can surface
// them without re-reading the session.
type GenerateSessionResult struct {
	Session        *domain.Session `json:"session"`
	UsedFallback   bool            `json:"usedFallback"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
}

// AIService runs the two-provider session generation pipeline: the Coach
// Winston workflow first, the OpenAI generator when the workflow fails.
type AIService interface {
	GenerateSession(ctx context.Context, userID string, input GenerateSessionInput) (*GenerateSessionResult, error)
	// SuggestDrills offers drill ideas for a focus area. Available to any
	// authenticated coach; the suggestions carry no club data.
	SuggestDrills(ctx context.Context, input DrillSuggestionInput) ([]DrillSuggestion, error)
	// ProviderHealthy reports whether the primary workflow provider responds.
	ProviderHealthy(ctx context.Context) bool
}

type aiService struct {
	workflow       ai.WorkflowClient
	generator      ai.PlanGenerator
	sessionRepo    repository.SessionRepository
	teamRepo       repository.TeamRepository
	membershipRepo repository.MembershipRepository
	now            func() time.Time
}

// NewAIService creates a new instance of aiService.
func NewAIService(
	workflow ai.WorkflowClient,
	generator ai.PlanGenerator,
	sessionRepo repository.SessionRepository,
	teamRepo repository.TeamRepository,
	membershipRepo repository.MembershipRepository,
) AIService {
	return &aiService{
		workflow:       workflow,
		generator:      generator,
		sessionRepo:    sessionRepo,
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		now:            time.Now,
	}
}

// GenerateSession runs the full pipeline: validate, authorize, gather
// context, call the workflow, fall back to the generator if needed, persist.
// Nothing is persisted unless one of the providers produced a plan.
func (s *aiService) GenerateSession(ctx context.Context, userID string, input GenerateSessionInput) (*GenerateSessionResult, error) {
	// Validation happens before any authorization or datastore work.
	if input.Duration < MinSessionDuration || input.Duration > MaxSessionDuration {
		return nil, ErrInvalidDuration
	}

	uid, cid, err := parseUserAndClub(userID, input.ClubID)
	if err != nil {
		return nil, err
	}
	tid, err := parseObjectID(input.TeamID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleAssistantCoach); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, tid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	if team.ClubID != cid {
		return nil, ErrTeamNotFound
	}

	history := s.recentHistory(ctx, team)

	sessionType := input.Type
	if sessionType == "" {
		sessionType = domain.SessionTraining
	}
	equipment := input.AvailableEquipment
	if len(equipment) == 0 {
		equipment = ai.DefaultEquipment
	}
	if input.FocusAreas == nil {
		input.FocusAreas = []string{}
	}
	if input.WeatherConditions == "" {
		input.WeatherConditions = ai.DefaultWeather
	}

	plan, usedFallback, fallbackReason, err := s.generatePlan(ctx, team, input, sessionType, equipment, history)
	if err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	session := &domain.Session{
		ClubID:      cid,
		TeamID:      tid,
		CreatedBy:   uid,
		Title:       plan.Title,
		Date:        date,
		Duration:    input.Duration,
		Type:        sessionType,
		Status:      domain.SessionDraft,
		Plan:        plan,
		AIGenerated: true,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = sessionID

	return &GenerateSessionResult{
		Session:        session,
		UsedFallback:   usedFallback,
		FallbackReason: fallbackReason,
	}, nil
}

// generatePlan tries the workflow first, then the generator. The returned
// reason is only set when the fallback path was taken.
func (s *aiService) generatePlan(
	ctx context.Context,
	team *domain.Team,
	input GenerateSessionInput,
	sessionType domain.SessionType,
	equipment []string,
	history []ai.PreviousSession,
) (*domain.SessionPlan, bool, string, error) {
	workflowReq := ai.WorkflowRequest{
		TeamID:             team.ID.Hex(),
		Duration:           input.Duration,
		FocusAreas:         input.FocusAreas,
		AgeGroup:           team.AgeGroup,
		SkillLevel:         string(team.SkillLevel),
		PlayerCount:        len(team.Players),
		WeatherConditions:  input.WeatherConditions,
		AvailableEquipment: equipment,
	}

	resp, err := s.workflow.GenerateSession(ctx, workflowReq)
	if err == nil {
		plan := ai.BuildPlanFromWorkflow(resp.SessionPlan)
		meta := &domain.PrimaryMetadata{WorkflowSessionID: resp.SessionID}
		if resp.Metadata != nil {
			meta.RequestID = resp.Metadata.RequestID
			meta.GeneratedAt = resp.Metadata.GeneratedAt
		}
		plan.Metadata = domain.PlanMetadata{Kind: domain.MetadataPrimary, Primary: meta}
		return plan, false, "", nil
	}
	if ctx.Err() != nil {
		return nil, false, "", ctx.Err()
	}

	reason := fallbackReason(err)
	log.Printf("WARN: Workflow generation failed (%s), falling back to secondary generator", reason)

	plan, genErr := s.generator.Generate(ctx, ai.GenerationParams{
		TeamID:           team.ID.Hex(),
		AgeGroup:         team.AgeGroup,
		SkillLevel:       team.SkillLevel,
		Duration:         input.Duration,
		SessionType:      sessionType,
		Focus:            input.FocusAreas,
		PlayerCount:      len(team.Players),
		Equipment:        equipment,
		PreviousSessions: history,
	})
	if genErr != nil {
		log.Printf("ERROR: Both generation providers failed: workflow: %v, generator: %v", err, genErr)
		return nil, false, "", fmt.Errorf("%w: %v", ErrGenerationFailed, genErr)
	}

	plan.Metadata = domain.PlanMetadata{
		Kind:     domain.MetadataFallback,
		Fallback: &domain.FallbackMetadata{FallbackUsed: true, Reason: reason},
	}
	return plan, true, reason, nil
}

// recentHistory loads the team's recent sessions as generation context.
// History is a nice-to-have; lookup failures degrade to no context.
func (s *aiService) recentHistory(ctx context.Context, team *domain.Team) []ai.PreviousSession {
	since := s.now().Add(-historyWindow)
	sessions, err := s.sessionRepo.GetRecentByTeam(ctx, team.ID, since, historyMaxSessions)
	if err != nil {
		log.Printf("WARN: Failed to load recent sessions for team %s, generating without history: %v", team.ID.Hex(), err)
		return nil
	}

	history := make([]ai.PreviousSession, 0, len(sessions))
	for _, sess := range sessions {
		prev := ai.PreviousSession{Date: sess.Date}
		if sess.Plan != nil {
			prev.Focus = sess.Plan.Objectives
			for _, drill := range sess.Plan.MainActivities {
				prev.Drills = append(prev.Drills, drill.Name)
			}
		}
		history = append(history, prev)
	}
	return history
}

// fallbackReason condenses a workflow failure into the string stored in the
// plan metadata.
func fallbackReason(err error) string {
	var provErr *ai.ProviderError
	if errors.As(err, &provErr) {
		return fmt.Sprintf("workflow %s: %s", provErr.Kind, provErr.Message)
	}
	return "workflow error: " + err.Error()
}

func (s *aiService) ProviderHealthy(ctx context.Context) bool {
	return s.workflow.HealthCheck(ctx)
}

// DrillSuggestionInput describes what kind of drill the coach is looking for.
type DrillSuggestionInput struct {
	AgeGroup    string
	Category    domain.DrillCategory
	Focus       string
	PlayerCount int
	Duration    int
}

// DrillSuggestion is one suggested drill. Suggestions are synthesized from
// the request rather than looked up; they are starting points for a coach,
// not library entries.
type DrillSuggestion struct {
	Name        string               `json:"name"`
	Category    domain.DrillCategory `json:"category"`
	Duration    int                  `json:"duration"`
	Description string               `json:"description"`
	Difficulty  string               `json:"difficulty"`
}

func (s *aiService) SuggestDrills(ctx context.Context, input DrillSuggestionInput) ([]DrillSuggestion, error) {
	switch input.Category {
	case domain.CategoryTechnical, domain.CategoryTactical, domain.CategoryPhysical, domain.CategoryMental:
	default:
		return nil, errors.New("category must be technical, tactical, physical or mental")
	}
	if input.Focus == "" || input.AgeGroup == "" {
		return nil, errors.New("focus and age group are required")
	}
	if input.Duration <= 0 {
		input.Duration = 15
	}

	return []DrillSuggestion{
		{
			Name:        input.Focus + " Development Drill",
			Category:    input.Category,
			Duration:    input.Duration,
			Description: fmt.Sprintf("A drill focused on improving %s for %s players", input.Focus, input.AgeGroup),
			Difficulty:  "intermediate",
		},
	}, nil
}
