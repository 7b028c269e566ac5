package service

import (
	"context"
	"sync"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/ai"
	"github.com/joshshaloo/project-unify-sub000/internal/domain"
	"github.com/joshshaloo/project-unify-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes for the repository interfaces. Only the behavior the
// services rely on is implemented.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	stored := *user
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.users[id] = &stored
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships []domain.Membership
}

func (r *fakeMembershipRepo) Create(ctx context.Context, m *domain.Membership) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.memberships {
		if existing.UserID == m.UserID && existing.ClubID == m.ClubID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	stored := *m
	stored.ID = primitive.NewObjectID()
	stored.JoinedAt = time.Now()
	r.memberships = append(r.memberships, stored)
	return stored.ID, nil
}

func (r *fakeMembershipRepo) GetByUserAndClub(ctx context.Context, userID, clubID primitive.ObjectID) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.memberships {
		if m.UserID == userID && m.ClubID == clubID {
			copied := m
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMembershipRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Membership
	for _, m := range r.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Membership
	for _, m := range r.memberships {
		if m.ClubID == clubID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) SetStatus(ctx context.Context, userID, clubID primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.memberships {
		if m.UserID == userID && m.ClubID == clubID {
			r.memberships[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeMembershipRepo) add(userID, clubID primitive.ObjectID, role domain.Role, status string) {
	r.memberships = append(r.memberships, domain.Membership{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		ClubID: clubID,
		Role:   role,
		Status: status,
	})
}

type fakeMagicLinkRepo struct {
	mu    sync.Mutex
	links map[primitive.ObjectID]*domain.MagicLink
}

func newFakeMagicLinkRepo() *fakeMagicLinkRepo {
	return &fakeMagicLinkRepo{links: make(map[primitive.ObjectID]*domain.MagicLink)}
}

func (r *fakeMagicLinkRepo) Create(ctx context.Context, link *domain.MagicLink) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *link
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.links[id] = &stored
	return id, nil
}

func (r *fakeMagicLinkRepo) GetByToken(ctx context.Context, token string) (*domain.MagicLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.Token == token {
			copied := *l
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMagicLinkRepo) MarkUsed(ctx context.Context, id primitive.ObjectID, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.links[id]
	if !ok || l.UsedAt != nil {
		return repository.ErrNotFound
	}
	l.UsedAt = &usedAt
	return nil
}

func (r *fakeMagicLinkRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, id)
	return nil
}

func (r *fakeMagicLinkRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, l := range r.links {
		if now.After(l.ExpiresAt) || l.UsedAt != nil {
			delete(r.links, id)
			n++
		}
	}
	return n, nil
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[primitive.ObjectID]*domain.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[primitive.ObjectID]*domain.Team)}
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *domain.Team) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *team
	stored.ID = id
	r.teams[id] = &stored
	return id, nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) GetByClub(ctx context.Context, clubID primitive.ObjectID, activeOnly bool) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Team
	for _, t := range r.teams {
		if t.ClubID != clubID {
			continue
		}
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) AddPlayer(ctx context.Context, teamID primitive.ObjectID, player domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	if player.ID == primitive.NilObjectID {
		player.ID = primitive.NewObjectID()
	}
	t.Players = append(t.Players, player)
	return nil
}

func (r *fakeTeamRepo) RemovePlayer(ctx context.Context, teamID, playerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, p := range t.Players {
		if p.ID == playerID {
			t.Players = append(t.Players[:i], t.Players[i+1:]...)
			return nil
		}
	}
	return repository.ErrUpdateFailed
}

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[primitive.ObjectID]*domain.Session
	recentErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.Session)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *session
	stored.ID = id
	r.sessions[id] = &stored
	return id, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) GetByClub(ctx context.Context, filter repository.SessionFilter) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.ClubID != filter.ClubID {
			continue
		}
		if filter.TeamID != nil && s.TeamID != *filter.TeamID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeSessionRepo) GetByTeam(ctx context.Context, teamID primitive.ObjectID, limit, offset int64) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.TeamID == teamID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) GetRecentByTeam(ctx context.Context, teamID primitive.ObjectID, since time.Time, limit int64) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recentErr != nil {
		return nil, r.recentErr
	}
	var out []domain.Session
	for _, s := range r.sessions {
		if s.TeamID == teamID && !s.Date.Before(since) {
			out = append(out, *s)
		}
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

type fakeClubRepo struct {
	mu    sync.Mutex
	clubs map[primitive.ObjectID]*domain.Club
}

func newFakeClubRepo() *fakeClubRepo {
	return &fakeClubRepo{clubs: make(map[primitive.ObjectID]*domain.Club)}
}

func (r *fakeClubRepo) Create(ctx context.Context, club *domain.Club) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *club
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.clubs[id] = &stored
	return id, nil
}

func (r *fakeClubRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clubs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeClubRepo) Update(ctx context.Context, club *domain.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clubs[club.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *club
	r.clubs[club.ID] = &copied
	return nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[primitive.ObjectID]*domain.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: make(map[primitive.ObjectID]*domain.Invitation)}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	stored := *inv
	stored.ID = id
	stored.CreatedAt = time.Now()
	r.invitations[id] = &stored
	return id, nil
}

func (r *fakeInvitationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *inv
	return &copied, nil
}

func (r *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Token == token {
			copied := *inv
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInvitationRepo) GetByClub(ctx context.Context, clubID primitive.ObjectID) ([]domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range r.invitations {
		if inv.ClubID == clubID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepo) MarkUsed(ctx context.Context, id primitive.ObjectID, usedAt time.Time, usedByEmail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok || inv.UsedAt != nil {
		return repository.ErrNotFound
	}
	inv.UsedAt = &usedAt
	inv.UsedByEmail = usedByEmail
	return nil
}

func (r *fakeInvitationRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invitations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.invitations, id)
	return nil
}

// fakeTxRunner just runs the function; the in-memory fakes have no
// transaction semantics to join.
type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeStorage returns deterministic URLs and records deletions.
type fakeStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (s *fakeStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// fakeMailer records outbound mail instead of sending it.
type fakeMailer struct {
	mu          sync.Mutex
	magicLinks  []string // tokens
	invitations []string // emails
	sendErr     error
}

func (m *fakeMailer) SendMagicLink(toEmail, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.magicLinks = append(m.magicLinks, token)
	return nil
}

func (m *fakeMailer) SendInvitation(toEmail string, inv *domain.Invitation, clubName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.invitations = append(m.invitations, toEmail)
	return nil
}

// fakeWorkflowClient is a scriptable primary provider.
type fakeWorkflowClient struct {
	mu       sync.Mutex
	calls    int
	lastReq  ai.WorkflowRequest
	response *ai.WorkflowResponse
	err      error
}

func (c *fakeWorkflowClient) GenerateSession(ctx context.Context, req ai.WorkflowRequest) (*ai.WorkflowResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.lastReq = req
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

func (c *fakeWorkflowClient) HealthCheck(ctx context.Context) bool {
	return c.err == nil
}

// fakePlanGenerator is a scriptable secondary provider.
type fakePlanGenerator struct {
	mu         sync.Mutex
	calls      int
	lastParams ai.GenerationParams
	plan       *domain.SessionPlan
	err        error
}

func (g *fakePlanGenerator) Generate(ctx context.Context, params ai.GenerationParams) (*domain.SessionPlan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastParams = params
	if g.err != nil {
		return nil, g.err
	}
	return g.plan, nil
}
