package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"
)

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found on this team")
)

// TeamInput carries the writable team fields.
type TeamInput struct {
	Name       string
	AgeGroup   string
	SkillLevel domain.SkillLevel
	Season     string
}

// TeamService manages teams and their rosters.
type TeamService interface {
	CreateTeam(ctx context.Context, userID, clubID string, input TeamInput) (*domain.Team, error)
	GetTeam(ctx context.Context, userID, teamID string) (*domain.Team, error)
	ListTeams(ctx context.Context, userID, clubID string, activeOnly bool) ([]domain.Team, error)
	UpdateTeam(ctx context.Context, userID, teamID string, input TeamInput, isActive *bool) (*domain.Team, error)
	AddPlayer(ctx context.Context, userID, teamID string, name, position string, jerseyNumber int) (*domain.Team, error)
	RemovePlayer(ctx context.Context, userID, teamID, playerID string) error
}

type teamService struct {
	teamRepo       repository.TeamRepository
	membershipRepo repository.MembershipRepository
	now            func() time.Time
}

// NewTeamService creates a new instance of teamService.
func NewTeamService(teamRepo repository.TeamRepository, membershipRepo repository.MembershipRepository) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		now:            time.Now,
	}
}

func validateTeamInput(input TeamInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("team name cannot be empty")
	}
	if input.AgeGroup == "" {
		return errors.New("age group cannot be empty")
	}
	switch input.SkillLevel {
	case domain.SkillBeginner, domain.SkillIntermediate, domain.SkillAdvanced:
		return nil
	default:
		return errors.New("skill level must be beginner, intermediate or advanced")
	}
}

func (s *teamService) CreateTeam(ctx context.Context, userID, clubID string, input TeamInput) (*domain.Team, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleAssistantCoach); err != nil {
		return nil, err
	}
	if err := validateTeamInput(input); err != nil {
		return nil, err
	}

	team := &domain.Team{
		ClubID:     cid,
		Name:       strings.TrimSpace(input.Name),
		AgeGroup:   input.AgeGroup,
		SkillLevel: input.SkillLevel,
		Season:     input.Season,
		IsActive:   true,
	}
	teamID, err := s.teamRepo.Create(ctx, team)
	if err != nil {
		return nil, err
	}
	team.ID = teamID
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, userID, teamID string) (*domain.Team, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	tid, err := parseObjectID(teamID)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, tid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	// Any active member of the owning club may view the team.
	if _, err := requireRole(ctx, s.membershipRepo, uid, team.ClubID, domain.RoleParent); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, userID, clubID string, activeOnly bool) ([]domain.Team, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleParent); err != nil {
		return nil, err
	}
	return s.teamRepo.GetByClub(ctx, cid, activeOnly)
}

func (s *teamService) UpdateTeam(ctx context.Context, userID, teamID string, input TeamInput, isActive *bool) (*domain.Team, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	tid, err := parseObjectID(teamID)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, tid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	role, err := requireRole(ctx, s.membershipRepo, uid, team.ClubID, domain.RoleAssistantCoach)
	if err != nil {
		return nil, err
	}
	// Retiring a team is a head coach call; regular edits are not.
	if isActive != nil && !*isActive && !domain.HasMinimumRole(role, domain.RoleHeadCoach) {
		return nil, ErrPermissionDenied
	}
	if err := validateTeamInput(input); err != nil {
		return nil, err
	}

	team.Name = strings.TrimSpace(input.Name)
	team.AgeGroup = input.AgeGroup
	team.SkillLevel = input.SkillLevel
	team.Season = input.Season
	if isActive != nil {
		team.IsActive = *isActive
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) AddPlayer(ctx context.Context, userID, teamID string, name, position string, jerseyNumber int) (*domain.Team, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	tid, err := parseObjectID(teamID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("player name cannot be empty")
	}

	team, err := s.teamRepo.GetByID(ctx, tid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	// Assistant coaches manage rosters day to day.
	if _, err := requireRole(ctx, s.membershipRepo, uid, team.ClubID, domain.RoleAssistantCoach); err != nil {
		return nil, err
	}

	player := domain.Player{
		Name:         strings.TrimSpace(name),
		Position:     position,
		JerseyNumber: jerseyNumber,
		JoinedAt:     s.now(),
	}
	if err := s.teamRepo.AddPlayer(ctx, tid, player); err != nil {
		return nil, err
	}
	return s.teamRepo.GetByID(ctx, tid)
}

func (s *teamService) RemovePlayer(ctx context.Context, userID, teamID, playerID string) error {
	uid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	tid, err := parseObjectID(teamID)
	if err != nil {
		return err
	}
	pid, err := parseObjectID(playerID)
	if err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, tid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, team.ClubID, domain.RoleAssistantCoach); err != nil {
		return err
	}

	if err := s.teamRepo.RemovePlayer(ctx, tid, pid); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrUpdateFailed) {
			return ErrPlayerNotFound
		}
		return err
	}
	return nil
}
