package service

import (
	"context"
	"testing"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionTestEnv struct {
	svc         SessionService
	sessionRepo *fakeSessionRepo
	teamRepo    *fakeTeamRepo
	memberships *fakeMembershipRepo

	clubID      primitive.ObjectID
	teamID      primitive.ObjectID
	coachID     primitive.ObjectID
	assistantID primitive.ObjectID
	parentID    primitive.ObjectID
}

func newSessionTestEnv(t *testing.T) *sessionTestEnv {
	t.Helper()
	env := &sessionTestEnv{
		sessionRepo: newFakeSessionRepo(),
		teamRepo:    newFakeTeamRepo(),
		memberships: &fakeMembershipRepo{},
		clubID:      primitive.NewObjectID(),
		coachID:     primitive.NewObjectID(),
		assistantID: primitive.NewObjectID(),
		parentID:    primitive.NewObjectID(),
	}
	env.svc = NewSessionService(env.sessionRepo, env.teamRepo, env.memberships)
	env.memberships.add(env.coachID, env.clubID, domain.RoleHeadCoach, domain.MembershipActive)
	env.memberships.add(env.assistantID, env.clubID, domain.RoleAssistantCoach, domain.MembershipActive)
	env.memberships.add(env.parentID, env.clubID, domain.RoleParent, domain.MembershipActive)

	teamID, err := env.teamRepo.Create(context.Background(), &domain.Team{
		ClubID:     env.clubID,
		Name:       "U10 Tigers",
		AgeGroup:   "U10",
		SkillLevel: domain.SkillIntermediate,
		IsActive:   true,
	})
	require.NoError(t, err)
	env.teamID = teamID
	return env
}

func (e *sessionTestEnv) validInput() SessionInput {
	return SessionInput{
		TeamID:   e.teamID.Hex(),
		Title:    "Passing practice",
		Date:     time.Now().Add(48 * time.Hour),
		Duration: 90,
		Type:     domain.SessionTraining,
		Location: "Field 2",
	}
}

func TestCreateSession(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), env.validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPlanned, session.Status)
	assert.Equal(t, env.teamID, session.TeamID)
	assert.Equal(t, env.assistantID, session.CreatedBy)
	assert.False(t, session.AIGenerated)

	_, err = env.svc.CreateSession(ctx, env.parentID.Hex(), env.clubID.Hex(), env.validInput())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateSessionValidation(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*SessionInput)
	}{
		{"empty title", func(in *SessionInput) { in.Title = "  " }},
		{"zero duration", func(in *SessionInput) { in.Duration = 0 }},
		{"unknown type", func(in *SessionInput) { in.Type = "scrimmage" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := env.validInput()
			tc.mutate(&input)
			_, err := env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), input)
			assert.Error(t, err)
		})
	}
}

func TestCreateSessionTeamMustBelongToClub(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	foreignTeamID, err := env.teamRepo.Create(ctx, &domain.Team{
		ClubID:     primitive.NewObjectID(),
		Name:       "Other Club U12",
		AgeGroup:   "U12",
		SkillLevel: domain.SkillBeginner,
		IsActive:   true,
	})
	require.NoError(t, err)

	input := env.validInput()
	input.TeamID = foreignTeamID.Hex()
	_, err = env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), input)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestListSessionsFilters(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), env.validInput())
	require.NoError(t, err)
	second, err := env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), env.validInput())
	require.NoError(t, err)
	require.NoError(t, env.svc.UpdateStatus(ctx, env.assistantID.Hex(), second.ID.Hex(), domain.SessionCompleted))

	// Parents can list.
	sessions, err := env.svc.ListSessions(ctx, env.parentID.Hex(), env.clubID.Hex(), SessionListOptions{})
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	sessions, err = env.svc.ListSessions(ctx, env.parentID.Hex(), env.clubID.Hex(), SessionListOptions{Status: string(domain.SessionPlanned)})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, first.ID, sessions[0].ID)

	_, err = env.svc.ListSessions(ctx, env.parentID.Hex(), env.clubID.Hex(), SessionListOptions{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), env.validInput())
	require.NoError(t, err)

	err = env.svc.UpdateStatus(ctx, env.assistantID.Hex(), session.ID.Hex(), "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	err = env.svc.UpdateStatus(ctx, env.parentID.Hex(), session.ID.Hex(), domain.SessionCancelled)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, env.svc.UpdateStatus(ctx, env.assistantID.Hex(), session.ID.Hex(), domain.SessionCancelled))
	got, err := env.svc.GetSession(ctx, env.parentID.Hex(), session.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCancelled, got.Status)
}

func TestDeleteSessionRequiresHeadCoach(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	session, err := env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), env.validInput())
	require.NoError(t, err)

	err = env.svc.DeleteSession(ctx, env.assistantID.Hex(), session.ID.Hex())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, env.svc.DeleteSession(ctx, env.coachID.Hex(), session.ID.Hex()))
	_, err = env.svc.GetSession(ctx, env.coachID.Hex(), session.ID.Hex())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListTeamSessions(t *testing.T) {
	env := newSessionTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateSession(ctx, env.assistantID.Hex(), env.clubID.Hex(), env.validInput())
	require.NoError(t, err)

	sessions, err := env.svc.ListTeamSessions(ctx, env.parentID.Hex(), env.teamID.Hex(), 50, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	// A member of another club cannot read the team's sessions.
	strangerID := primitive.NewObjectID()
	env.memberships.add(strangerID, primitive.NewObjectID(), domain.RoleAdmin, domain.MembershipActive)
	_, err = env.svc.ListTeamSessions(ctx, strangerID.Hex(), env.teamID.Hex(), 50, 0)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
