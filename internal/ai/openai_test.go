package ai

import (
	"testing"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateSessionPlan(t *testing.T) {
	plan := TemplateSessionPlan(GenerationParams{
		AgeGroup:    "U12",
		SkillLevel:  domain.SkillIntermediate,
		Duration:    90,
		SessionType: domain.SessionMatchPrep,
	})

	assert.Equal(t, "U12 match prep Session", plan.Title)
	assert.Equal(t, 90, plan.TotalDuration)

	// 15% warm-up, 15% cool-down, remainder split across three drills.
	assert.Equal(t, 13, plan.WarmUp.Duration)
	assert.Equal(t, 13, plan.CoolDown.Duration)
	require.Len(t, plan.MainActivities, 3)
	for _, d := range plan.MainActivities {
		assert.Equal(t, 21, d.Duration)
	}

	// The template must always survive its own schema check.
	assert.NoError(t, validateGeneratedPlan(plan))
}

func TestValidateGeneratedPlan(t *testing.T) {
	valid := TemplateSessionPlan(GenerationParams{AgeGroup: "U10", Duration: 60, SessionType: domain.SessionTraining})

	tests := []struct {
		name   string
		mutate func(*domain.SessionPlan)
	}{
		{"missing title", func(p *domain.SessionPlan) { p.Title = "" }},
		{"non-positive duration", func(p *domain.SessionPlan) { p.TotalDuration = 0 }},
		{"no main activities", func(p *domain.SessionPlan) { p.MainActivities = nil }},
		{"unnamed drill", func(p *domain.SessionPlan) { p.WarmUp.Name = "" }},
		{"zero drill duration", func(p *domain.SessionPlan) { p.MainActivities[0].Duration = 0 }},
		{"bad category", func(p *domain.SessionPlan) { p.CoolDown.Category = "cardio" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := *valid
			plan.MainActivities = append([]domain.GeneratedDrill(nil), valid.MainActivities...)
			tt.mutate(&plan)
			assert.Error(t, validateGeneratedPlan(&plan))
		})
	}
}
