package ai

import (
	"fmt"
	"regexp"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"
)

// DefaultEquipment is assumed when the caller does not list any.
var DefaultEquipment = []string{"cones", "balls", "goals"}

// DefaultWeather is sent to the workflow when the caller does not report
// conditions.
const DefaultWeather = "good"

// spacePattern matches dimensions like "20x30", "20 x 30" or "20x30 yards"
// inside free-text setup descriptions.
var spacePattern = regexp.MustCompile(`(?i)(\d+)\s*x\s*(\d+)(?:\s*(?:yards?|meters?|m))?`)

// defaultSpace is used when a setup text carries no recognizable dimensions.
const defaultSpace = "30x20 yards"

// MapPhaseToCategory buckets a workflow phase into a drill category.
// Game phases are typically tactical; anything unrecognized defaults to
// technical.
func MapPhaseToCategory(phase string) domain.DrillCategory {
	switch phase {
	case PhaseTechnical:
		return domain.CategoryTechnical
	case PhaseTactical, PhaseGame:
		return domain.CategoryTactical
	default:
		return domain.CategoryTechnical
	}
}

// ExtractSpaceFromSetup pulls "<width>x<length> yards" out of a setup text,
// falling back to a standard area when nothing matches.
func ExtractSpaceFromSetup(setup string) string {
	if setup == "" {
		return defaultSpace
	}
	m := spacePattern.FindStringSubmatch(setup)
	if m == nil {
		return defaultSpace
	}
	return fmt.Sprintf("%sx%s yards", m[1], m[2])
}

// FallbackActivity returns the fixed template used when the workflow plan is
// missing a warm-up or cool-down phase.
func FallbackActivity(phase string, duration int) domain.GeneratedDrill {
	if phase == PhaseWarmUp {
		return domain.GeneratedDrill{
			Name:        "Dynamic Warm-Up",
			Category:    domain.CategoryPhysical,
			Duration:    duration,
			Description: "Progressive warm-up to prepare for training",
			Objectives:  []string{"Prepare body for activity", "Activate muscle groups"},
			Setup: domain.DrillSetup{
				Space:        "20x20 yards",
				Equipment:    []string{"Cones", "Balls"},
				Organization: "Players spread out in area",
			},
			Instructions:   []string{"Light jogging", "Dynamic stretches", "Ball manipulation"},
			CoachingPoints: []string{"Good posture", "Quality of movement", "Keep ball close"},
			Progressions:   []string{"Increase intensity gradually"},
		}
	}
	return domain.GeneratedDrill{
		Name:        "Cool-Down and Stretch",
		Category:    domain.CategoryPhysical,
		Duration:    duration,
		Description: "Recovery and reflection session",
		Objectives:  []string{"Gradual recovery", "Flexibility maintenance"},
		Setup: domain.DrillSetup{
			Space:        "20x20 yards",
			Equipment:    []string{"Balls"},
			Organization: "Open space for stretching",
		},
		Instructions:   []string{"Light activity", "Static stretching", "Session reflection"},
		CoachingPoints: []string{"Maintain light intensity", "Hold stretches properly"},
		Progressions:   []string{"Focus on areas used most in session"},
	}
}

// BuildPlanFromWorkflow normalizes a validated workflow plan into the
// application's shape: the first warm-up and cool-down activities become the
// dedicated sections, everything technical/tactical/game becomes a main
// activity, and missing sections are synthesized from fixed templates.
// Metadata is left for the caller to attach.
func BuildPlanFromWorkflow(plan *WorkflowSessionPlan) *domain.SessionPlan {
	var warmUp, coolDown *WorkflowActivity
	var main []WorkflowActivity
	for i := range plan.Activities {
		a := &plan.Activities[i]
		switch a.Phase {
		case PhaseWarmUp:
			if warmUp == nil {
				warmUp = a
			}
		case PhaseCoolDown:
			if coolDown == nil {
				coolDown = a
			}
		case PhaseTechnical, PhaseTactical, PhaseGame:
			main = append(main, *a)
		}
	}

	out := &domain.SessionPlan{
		Title:         plan.SessionTitle,
		Objectives:    orDefault(plan.FocusAreas, []string{}),
		Notes:         plan.CoachNotes,
		TotalDuration: plan.TotalDuration,
	}
	if out.Notes == "" {
		out.Notes = "Generated by Coach Winston AI"
	}

	if warmUp != nil {
		out.WarmUp = mapActivity(*warmUp, domain.CategoryPhysical,
			[]string{"Prepare body for activity"}, []string{"cones", "balls"}, "Players spread out in area")
	} else {
		out.WarmUp = FallbackActivity(PhaseWarmUp, 15)
	}

	out.MainActivities = make([]domain.GeneratedDrill, 0, len(main))
	for _, a := range main {
		out.MainActivities = append(out.MainActivities, mapActivity(a, MapPhaseToCategory(a.Phase),
			[]string{"Develop skills"}, []string{"cones", "balls"}, "Standard setup"))
	}

	if coolDown != nil {
		drill := mapActivity(*coolDown, domain.CategoryPhysical,
			nil, []string{"balls"}, "Open space for recovery")
		drill.Objectives = []string{"Gradual recovery", "Session reflection"}
		out.CoolDown = drill
	} else {
		out.CoolDown = FallbackActivity(PhaseCoolDown, 10)
	}

	return out
}

// mapActivity converts one workflow activity into a GeneratedDrill, applying
// per-section defaults for missing objectives, equipment and organization.
func mapActivity(a WorkflowActivity, category domain.DrillCategory, defaultObjectives, defaultEquipment []string, defaultOrganization string) domain.GeneratedDrill {
	objectives := defaultObjectives
	if len(a.CoachingPoints) > 0 {
		// The first couple of coaching points double as the objectives.
		n := len(a.CoachingPoints)
		if n > 2 {
			n = 2
		}
		objectives = append([]string(nil), a.CoachingPoints[:n]...)
	}

	equipment := a.Equipment
	if len(equipment) == 0 {
		equipment = defaultEquipment
	}

	organization := a.Setup
	if organization == "" {
		organization = defaultOrganization
	}

	var instructions []string
	if a.Instructions != "" {
		instructions = []string{a.Instructions}
	} else {
		instructions = []string{}
	}

	return domain.GeneratedDrill{
		Name:        a.Name,
		Category:    category,
		Duration:    a.Duration,
		Description: a.Description,
		Objectives:  objectives,
		Setup: domain.DrillSetup{
			Space:        ExtractSpaceFromSetup(a.Setup),
			Equipment:    equipment,
			Organization: organization,
		},
		Instructions:   instructions,
		CoachingPoints: orDefault(a.CoachingPoints, []string{}),
		Progressions:   orDefault(a.Progressions, []string{}),
	}
}

func orDefault(in, def []string) []string {
	if len(in) == 0 {
		return def
	}
	return in
}
