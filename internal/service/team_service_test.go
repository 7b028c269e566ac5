package service

import (
	"context"
	"testing"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func teamTestEnv() (TeamService, *fakeTeamRepo, *fakeMembershipRepo) {
	teamRepo := newFakeTeamRepo()
	membershipRepo := &fakeMembershipRepo{}
	return NewTeamService(teamRepo, membershipRepo), teamRepo, membershipRepo
}

func validTeamInput() TeamInput {
	return TeamInput{Name: "U10 Tigers", AgeGroup: "U10", SkillLevel: domain.SkillIntermediate, Season: "2026 Spring"}
}

func TestCreateTeamRoles(t *testing.T) {
	svc, _, memberships := teamTestEnv()
	ctx := context.Background()
	clubID := primitive.NewObjectID()
	assistantID := primitive.NewObjectID()
	parentID := primitive.NewObjectID()
	memberships.add(assistantID, clubID, domain.RoleAssistantCoach, domain.MembershipActive)
	memberships.add(parentID, clubID, domain.RoleParent, domain.MembershipActive)

	team, err := svc.CreateTeam(ctx, assistantID.Hex(), clubID.Hex(), validTeamInput())
	require.NoError(t, err)
	assert.Equal(t, clubID, team.ClubID)
	assert.True(t, team.IsActive)

	// Creating teams needs a coaching role.
	_, err = svc.CreateTeam(ctx, parentID.Hex(), clubID.Hex(), validTeamInput())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRetireTeamRequiresHeadCoach(t *testing.T) {
	svc, _, memberships := teamTestEnv()
	ctx := context.Background()
	clubID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()
	assistantID := primitive.NewObjectID()
	memberships.add(coachID, clubID, domain.RoleHeadCoach, domain.MembershipActive)
	memberships.add(assistantID, clubID, domain.RoleAssistantCoach, domain.MembershipActive)

	team, err := svc.CreateTeam(ctx, assistantID.Hex(), clubID.Hex(), validTeamInput())
	require.NoError(t, err)

	// Assistants may edit fields but not retire the team.
	inactive := false
	_, err = svc.UpdateTeam(ctx, assistantID.Hex(), team.ID.Hex(), validTeamInput(), &inactive)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := svc.UpdateTeam(ctx, assistantID.Hex(), team.ID.Hex(), validTeamInput(), nil)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	updated, err = svc.UpdateTeam(ctx, coachID.Hex(), team.ID.Hex(), validTeamInput(), &inactive)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestCreateTeamValidation(t *testing.T) {
	svc, _, memberships := teamTestEnv()
	ctx := context.Background()
	clubID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()
	memberships.add(coachID, clubID, domain.RoleHeadCoach, domain.MembershipActive)

	cases := []struct {
		name   string
		mutate func(*TeamInput)
	}{
		{"empty name", func(in *TeamInput) { in.Name = "  " }},
		{"empty age group", func(in *TeamInput) { in.AgeGroup = "" }},
		{"bad skill level", func(in *TeamInput) { in.SkillLevel = "elite" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validTeamInput()
			tc.mutate(&input)
			_, err := svc.CreateTeam(ctx, coachID.Hex(), clubID.Hex(), input)
			assert.Error(t, err)
		})
	}
}

func TestGetTeamScopedToOwningClub(t *testing.T) {
	svc, _, memberships := teamTestEnv()
	ctx := context.Background()
	clubID := primitive.NewObjectID()
	otherClubID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()
	parentID := primitive.NewObjectID()
	outsiderID := primitive.NewObjectID()
	memberships.add(coachID, clubID, domain.RoleHeadCoach, domain.MembershipActive)
	memberships.add(parentID, clubID, domain.RoleParent, domain.MembershipActive)
	memberships.add(outsiderID, otherClubID, domain.RoleAdmin, domain.MembershipActive)

	team, err := svc.CreateTeam(ctx, coachID.Hex(), clubID.Hex(), validTeamInput())
	require.NoError(t, err)

	// Parents of the owning club can view.
	got, err := svc.GetTeam(ctx, parentID.Hex(), team.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, team.ID, got.ID)

	// Membership in another club grants nothing here.
	_, err = svc.GetTeam(ctx, outsiderID.Hex(), team.ID.Hex())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestRosterManagement(t *testing.T) {
	svc, _, memberships := teamTestEnv()
	ctx := context.Background()
	clubID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()
	assistantID := primitive.NewObjectID()
	parentID := primitive.NewObjectID()
	memberships.add(coachID, clubID, domain.RoleHeadCoach, domain.MembershipActive)
	memberships.add(assistantID, clubID, domain.RoleAssistantCoach, domain.MembershipActive)
	memberships.add(parentID, clubID, domain.RoleParent, domain.MembershipActive)

	team, err := svc.CreateTeam(ctx, coachID.Hex(), clubID.Hex(), validTeamInput())
	require.NoError(t, err)

	// Assistant coaches manage the roster.
	updated, err := svc.AddPlayer(ctx, assistantID.Hex(), team.ID.Hex(), "Jamie", "midfield", 7)
	require.NoError(t, err)
	require.Len(t, updated.Players, 1)
	player := updated.Players[0]
	assert.Equal(t, "Jamie", player.Name)
	assert.Equal(t, 7, player.JerseyNumber)
	assert.False(t, player.ID.IsZero())

	_, err = svc.AddPlayer(ctx, parentID.Hex(), team.ID.Hex(), "Sam", "", 0)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.RemovePlayer(ctx, assistantID.Hex(), team.ID.Hex(), player.ID.Hex()))
	err = svc.RemovePlayer(ctx, assistantID.Hex(), team.ID.Hex(), player.ID.Hex())
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestListTeamsActiveOnly(t *testing.T) {
	svc, _, memberships := teamTestEnv()
	ctx := context.Background()
	clubID := primitive.NewObjectID()
	coachID := primitive.NewObjectID()
	memberships.add(coachID, clubID, domain.RoleHeadCoach, domain.MembershipActive)

	active, err := svc.CreateTeam(ctx, coachID.Hex(), clubID.Hex(), validTeamInput())
	require.NoError(t, err)
	retired, err := svc.CreateTeam(ctx, coachID.Hex(), clubID.Hex(), TeamInput{Name: "U12 Lions", AgeGroup: "U12", SkillLevel: domain.SkillAdvanced, Season: "2025 Fall"})
	require.NoError(t, err)
	inactive := false
	_, err = svc.UpdateTeam(ctx, coachID.Hex(), retired.ID.Hex(), TeamInput{Name: retired.Name, AgeGroup: retired.AgeGroup, SkillLevel: retired.SkillLevel, Season: retired.Season}, &inactive)
	require.NoError(t, err)

	teams, err := svc.ListTeams(ctx, coachID.Hex(), clubID.Hex(), true)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, active.ID, teams[0].ID)

	teams, err = svc.ListTeams(ctx, coachID.Hex(), clubID.Hex(), false)
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}
