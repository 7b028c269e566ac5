package service

import (
	"context"
	"errors"
	"strings"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"
)

var ErrDrillNotFound = errors.New("drill not found")

// DrillInput carries the writable drill library fields.
type DrillInput struct {
	Name        string
	Category    domain.DrillCategory
	Description string
	AgeGroups   []string
	Duration    int
	Equipment   []string
	Difficulty  string
	VideoURL    string
}

// DrillService manages the club's reusable drill library.
type DrillService interface {
	CreateDrill(ctx context.Context, userID, clubID string, input DrillInput) (*domain.Drill, error)
	GetDrill(ctx context.Context, userID, drillID string) (*domain.Drill, error)
	ListDrills(ctx context.Context, userID, clubID string) ([]domain.Drill, error)
	UpdateDrill(ctx context.Context, userID, drillID string, input DrillInput) (*domain.Drill, error)
	DeleteDrill(ctx context.Context, userID, drillID string) error
}

type drillService struct {
	drillRepo      repository.DrillRepository
	membershipRepo repository.MembershipRepository
}

// NewDrillService creates a new instance of drillService.
func NewDrillService(drillRepo repository.DrillRepository, membershipRepo repository.MembershipRepository) DrillService {
	return &drillService{drillRepo: drillRepo, membershipRepo: membershipRepo}
}

func validateDrillInput(input DrillInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.New("drill name cannot be empty")
	}
	switch input.Category {
	case domain.CategoryTechnical, domain.CategoryTactical, domain.CategoryPhysical, domain.CategoryMental:
		return nil
	default:
		return errors.New("category must be technical, tactical, physical or mental")
	}
}

func (s *drillService) CreateDrill(ctx context.Context, userID, clubID string, input DrillInput) (*domain.Drill, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleAssistantCoach); err != nil {
		return nil, err
	}
	if err := validateDrillInput(input); err != nil {
		return nil, err
	}

	drill := &domain.Drill{
		ClubID:      cid,
		CreatedBy:   uid,
		Name:        strings.TrimSpace(input.Name),
		Category:    input.Category,
		Description: input.Description,
		AgeGroups:   input.AgeGroups,
		Duration:    input.Duration,
		Equipment:   input.Equipment,
		Difficulty:  input.Difficulty,
		VideoURL:    input.VideoURL,
	}
	drillID, err := s.drillRepo.Create(ctx, drill)
	if err != nil {
		return nil, err
	}
	drill.ID = drillID
	return drill, nil
}

func (s *drillService) GetDrill(ctx context.Context, userID, drillID string) (*domain.Drill, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	did, err := parseObjectID(drillID)
	if err != nil {
		return nil, err
	}

	drill, err := s.drillRepo.GetByID(ctx, did)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDrillNotFound
		}
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, drill.ClubID, domain.RoleParent); err != nil {
		return nil, err
	}
	return drill, nil
}

func (s *drillService) ListDrills(ctx context.Context, userID, clubID string) ([]domain.Drill, error) {
	uid, cid, err := parseUserAndClub(userID, clubID)
	if err != nil {
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, cid, domain.RoleParent); err != nil {
		return nil, err
	}
	return s.drillRepo.GetByClub(ctx, cid)
}

func (s *drillService) UpdateDrill(ctx context.Context, userID, drillID string, input DrillInput) (*domain.Drill, error) {
	uid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	did, err := parseObjectID(drillID)
	if err != nil {
		return nil, err
	}

	drill, err := s.drillRepo.GetByID(ctx, did)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDrillNotFound
		}
		return nil, err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, drill.ClubID, domain.RoleAssistantCoach); err != nil {
		return nil, err
	}
	if err := validateDrillInput(input); err != nil {
		return nil, err
	}

	drill.Name = strings.TrimSpace(input.Name)
	drill.Category = input.Category
	drill.Description = input.Description
	drill.AgeGroups = input.AgeGroups
	drill.Duration = input.Duration
	drill.Equipment = input.Equipment
	drill.Difficulty = input.Difficulty
	drill.VideoURL = input.VideoURL
	if err := s.drillRepo.Update(ctx, drill); err != nil {
		return nil, err
	}
	return drill, nil
}

func (s *drillService) DeleteDrill(ctx context.Context, userID, drillID string) error {
	uid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	did, err := parseObjectID(drillID)
	if err != nil {
		return err
	}

	drill, err := s.drillRepo.GetByID(ctx, did)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDrillNotFound
		}
		return err
	}
	if _, err := requireRole(ctx, s.membershipRepo, uid, drill.ClubID, domain.RoleHeadCoach); err != nil {
		return err
	}
	if err := s.drillRepo.Delete(ctx, did, drill.ClubID); err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDeleteFailed) {
			return ErrDrillNotFound
		}
		return err
	}
	return nil
}
