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
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidStatus   = errors.New("invalid session status")
)

// SessionInput carries the writable fields for a manually created session.
type SessionInput struct {
	TeamID   string
	Title    string
	Date     time.Time
	Duration int
	Type     domain.SessionType
	Location string
	Notes    string
}

// SessionListOptions narrows ListSessions.
type SessionListOptions struct {
	TeamID string
	Status string
	Limit  int64
	Offset int64
}

// SessionService manages stored sessions. AI generation lives in AIService;
// this service covers the manual lifecycle.
type SessionService interface {
	CreateSession(ctx context.Context, userID, clubID string, input SessionInput) (*domain.Session, error)
	GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	ListSessions(ctx context.Context, userID, clubID string, opts SessionListOptions) ([]domain.Session, error)
	ListTeamSessions(ctx context.Context, userID, teamID string, limit, offset int64) ([]domain.Session, error)
	UpdateStatus(ctx context.Context, userID, sessionID string, status domain.SessionStatus) error
	DeleteSession(ctx context.Context, userID, sessionID string) error
}

type sessionService struct {
	sessionRepo    repository.SessionRepository
	teamRepo       repository.TeamRepository
	membershipRepo repository.MembershipRepository
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	teamRepo repository.TeamRepository,
	membershipRepo repository.MembershipRepository,
) SessionService {
	return &sessionService{
		sessionRepo:    sessionRepo,
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, userID, clubID string, input SessionInput) (*domain.Session, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
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
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("session title cannot be empty")
	}
	if input.Duration < MinSessionDuration || input.Duration > MaxSessionDuration {
		return nil, ErrInvalidDuration
	}
	switch input.Type {
	case domain.SessionTraining, domain.SessionMatchPrep, domain.SessionSkills:
	default:
		return nil, errors.New("session type must be training, match_prep or skills")
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

	session := &domain.Session{
		ClubID:    cid,
		TeamID:    tid,
		CreatedBy: uid,
		Title:     strings.TrimSpace(input.Title),
		Date:      input.Date,
		Duration:  input.Duration,
		Type:      input.Type,
		Status:    domain.SessionPlanned,
		Location:  input.Location,
		Notes:     input.Notes,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = sessionID
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	sid, err := parseObjectID(sessionID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, sid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, session.ClubID, domain.RoleParent); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, userID, clubID string, opts SessionListOptions) ([]domain.Session, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleParent); err != nil {
		return nil, err
	}

	filter := repository.SessionFilter{
		ClubID: cid,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}
	if opts.TeamID != "" {
		tid, err := parseObjectID(opts.TeamID)
		if err != nil {
			return nil, err
		}
		filter.TeamID = &tid
	}
	if opts.Status != "" {
		status := domain.SessionStatus(opts.Status)
		switch status {
		case domain.SessionDraft, domain.SessionPlanned, domain.SessionCompleted, domain.SessionCancelled:
			filter.Status = &status
		default:
			return nil, ErrInvalidStatus
		}
	}
	return s.sessionRepo.GetByClub(ctx, filter)
}

func (s *sessionService) ListTeamSessions(ctx context.Context, userID, teamID string, limit, offset int64) ([]domain.Session, error) {
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
	if _, err := requireRole(ctx, s.membershipRepo, uid, team.ClubID, domain.RoleParent); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByTeam(ctx, tid, limit, offset)
}

func (s *sessionService) UpdateStatus(ctx context.Context, userID, sessionID string, status domain.SessionStatus) error {
	uid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	sid, err := parseObjectID(sessionID)
	if err != nil {
		return err
	}
	switch status {
	case domain.SessionDraft, domain.SessionPlanned, domain.SessionCompleted, domain.SessionCancelled:
	default:
		return ErrInvalidStatus
	}

	session, err := s.sessionRepo.GetByID(ctx, sid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, session.ClubID, domain.RoleAssistantCoach); err != nil {
		return err
	}
	return s.sessionRepo.UpdateStatus(ctx, sid, status)
}

func (s *sessionService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	uid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	sid, err := parseObjectID(sessionID)
	if err != nil {
		return err
	}

	session, err := s.sessionRepo.GetByID(ctx, sid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, session.ClubID, domain.RoleHeadCoach); err != nil {
		return err
	}
	return s.sessionRepo.Delete(ctx, sid)
}
