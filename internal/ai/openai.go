package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joshshaloo/project-unify-sub000/internal/domain"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const generatorSystemPrompt = `You are an expert youth soccer coach with UEFA A License certification.
Create detailed, age-appropriate training sessions that focus on player development, fun, and skill progression.
Consider the principles of youth development, including appropriate work-rest ratios, varied activities, and positive coaching methods.`

// PreviousSession is the normalized context extracted from recently stored
// sessions of the same team.
type PreviousSession struct {
	Date   time.Time
	Focus  []string
	Drills []string
}

// GenerationParams describes what the fallback generator should produce.
type GenerationParams struct {
	TeamID           string
	AgeGroup         string
	SkillLevel       domain.SkillLevel
	Duration         int
	SessionType      domain.SessionType
	Focus            []string
	PlayerCount      int
	Equipment        []string
	PreviousSessions []PreviousSession
}

// PlanGenerator is the secondary session-generation provider.
type PlanGenerator interface {
	Generate(ctx context.Context, params GenerationParams) (*domain.SessionPlan, error)
}

// openAIGenerator produces plans with a chat-completion call and degrades to
// a deterministic template when the model misbehaves.
type openAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator creates the fallback generator.
func NewOpenAIGenerator(apiKey, model string) PlanGenerator {
	if model == "" {
		model = "gpt-4-turbo-preview"
	}
	return &openAIGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate asks the model for a JSON session plan. Call, parse and schema
// failures degrade to the deterministic template session; only context
// cancellation is surfaced as an error.
func (g *openAIGenerator) Generate(ctx context.Context, params GenerationParams) (*domain.SessionPlan, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(generatorSystemPrompt),
			openai.UserMessage(buildUserPrompt(params)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("WARN: OpenAI session generation failed, using template session: %v", err)
		return TemplateSessionPlan(params), nil
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		log.Printf("WARN: OpenAI returned no content, using template session")
		return TemplateSessionPlan(params), nil
	}

	var plan domain.SessionPlan
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &plan); err != nil {
		log.Printf("WARN: OpenAI returned malformed plan JSON, using template session: %v", err)
		return TemplateSessionPlan(params), nil
	}
	if err := validateGeneratedPlan(&plan); err != nil {
		log.Printf("WARN: OpenAI plan failed validation, using template session: %v", err)
		return TemplateSessionPlan(params), nil
	}

	return &plan, nil
}

func buildUserPrompt(params GenerationParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-minute %s training session for a %s team with %s skill level.\n",
		params.Duration, strings.ReplaceAll(string(params.SessionType), "_", " "), params.AgeGroup, params.SkillLevel)
	if len(params.Focus) > 0 {
		fmt.Fprintf(&b, "Focus areas: %s\n", strings.Join(params.Focus, ", "))
	}
	if params.PlayerCount > 0 {
		fmt.Fprintf(&b, "Expected players: %d\n", params.PlayerCount)
	}
	if len(params.Equipment) > 0 {
		fmt.Fprintf(&b, "Available equipment: %s\n", strings.Join(params.Equipment, ", "))
	} else {
		b.WriteString("Standard equipment available\n")
	}
	if len(params.PreviousSessions) > 0 {
		b.WriteString("\nRecent sessions (avoid repeating the same drills):\n")
		for _, s := range params.PreviousSessions {
			fmt.Fprintf(&b, "- %s: focus %s, drills %s\n",
				s.Date.Format("2006-01-02"), strings.Join(s.Focus, "/"), strings.Join(s.Drills, "/"))
		}
	}
	b.WriteString(`
Respond with a single JSON object with keys: title, objectives (array),
warmUp, mainActivities (array of 2-3 drills), coolDown, notes, totalDuration.
Each drill object has: name, category (technical|tactical|physical|mental),
duration, description, objectives (array), setup {space, equipment, organization},
instructions (array), coachingPoints (array), progressions (array).

Structure the session with:
1. Warm-up (10-15% of total time)
2. Main activities (70-75% of total time) - include 2-3 progressive drills
3. Cool-down/Game (10-15% of total time)

Ensure all activities are age-appropriate and focus on fun while developing skills.`)
	return b.String()
}

// validateGeneratedPlan is the schema check for model output.
func validateGeneratedPlan(plan *domain.SessionPlan) error {
	if plan.Title == "" {
		return errors.New("plan is missing a title")
	}
	if plan.TotalDuration <= 0 {
		return errors.New("plan has non-positive total duration")
	}
	if len(plan.MainActivities) == 0 {
		return errors.New("plan has no main activities")
	}
	drills := append([]domain.GeneratedDrill{plan.WarmUp, plan.CoolDown}, plan.MainActivities...)
	for _, d := range drills {
		if d.Name == "" {
			return errors.New("plan contains an unnamed drill")
		}
		if d.Duration <= 0 {
			return fmt.Errorf("drill %q has non-positive duration", d.Name)
		}
		switch d.Category {
		case domain.CategoryTechnical, domain.CategoryTactical, domain.CategoryPhysical, domain.CategoryMental:
		default:
			return fmt.Errorf("drill %q has unknown category %q", d.Name, d.Category)
		}
	}
	return nil
}

// TemplateSessionPlan is the deterministic non-AI session used when the
// fallback generator itself cannot produce a valid plan.
func TemplateSessionPlan(params GenerationParams) *domain.SessionPlan {
	warmUpDuration := params.Duration * 15 / 100
	coolDownDuration := params.Duration * 15 / 100
	mainDuration := params.Duration - warmUpDuration - coolDownDuration
	drillDuration := mainDuration / 3

	sessionName := strings.ReplaceAll(string(params.SessionType), "_", " ")

	return &domain.SessionPlan{
		Title: fmt.Sprintf("%s %s Session", params.AgeGroup, sessionName),
		Objectives: []string{
			"Improve technical skills",
			"Develop tactical understanding",
			"Enhance physical fitness",
			"Foster teamwork and communication",
		},
		WarmUp: domain.GeneratedDrill{
			Name:        "Dynamic Warm-Up with Ball",
			Category:    domain.CategoryPhysical,
			Duration:    warmUpDuration,
			Description: "Progressive warm-up incorporating ball work",
			Objectives:  []string{"Prepare body for activity", "Activate muscle groups", "Mental preparation"},
			Setup: domain.DrillSetup{
				Space:        "20x20 yards",
				Equipment:    []string{"Cones", "Balls"},
				Organization: "Players spread out in designated area",
			},
			Instructions: []string{
				"Start with light jogging around the area",
				"Progress to dynamic stretches",
				"Include ball manipulation exercises",
				"Gradually increase intensity",
			},
			CoachingPoints: []string{"Maintain good posture", "Focus on quality of movement", "Keep the ball close"},
		},
		MainActivities: []domain.GeneratedDrill{
			{
				Name:        "Technical Skills Station",
				Category:    domain.CategoryTechnical,
				Duration:    drillDuration,
				Description: "Focused technical development",
				Objectives:  []string{"Improve ball control", "Enhance passing accuracy"},
				Setup: domain.DrillSetup{
					Space:        "30x20 yards",
					Equipment:    []string{"Cones", "Balls", "Bibs"},
					Organization: "Set up stations for different skills",
				},
				Instructions: []string{
					"Divide players into small groups",
					"Rotate through stations every 5 minutes",
					"Focus on quality over quantity",
				},
				CoachingPoints: []string{"First touch direction", "Head up when possible", "Use both feet"},
			},
			{
				Name:        "Small-Sided Game",
				Category:    domain.CategoryTactical,
				Duration:    drillDuration,
				Description: "Game-like situations to apply skills",
				Objectives:  []string{"Apply technical skills", "Develop decision making"},
				Setup: domain.DrillSetup{
					Space:        "40x30 yards",
					Equipment:    []string{"Cones", "Balls", "Bibs", "Goals"},
					Organization: "Create small-sided game areas",
				},
				Instructions: []string{
					"Play 4v4 or 5v5 games",
					"Implement specific rules to encourage focus areas",
					"Rotate teams every 5-7 minutes",
				},
				CoachingPoints: []string{"Communication", "Movement off the ball", "Quick decision making"},
			},
			{
				Name:        "Skill Challenge",
				Category:    domain.CategoryTechnical,
				Duration:    drillDuration,
				Description: "Competitive skill-based activities",
				Objectives:  []string{"Refine technique under pressure", "Build confidence"},
				Setup: domain.DrillSetup{
					Space:        "30x30 yards",
					Equipment:    []string{"Cones", "Balls", "Goals"},
					Organization: "Set up challenge courses",
				},
				Instructions: []string{
					"Create competitive challenges",
					"Track scores or times",
					"Encourage peer support",
				},
				CoachingPoints: []string{"Maintain technique under pressure", "Positive reinforcement", "Celebrate effort and improvement"},
			},
		},
		CoolDown: domain.GeneratedDrill{
			Name:        "Cool-Down Game and Stretch",
			Category:    domain.CategoryPhysical,
			Duration:    coolDownDuration,
			Description: "Fun game followed by stretching",
			Objectives:  []string{"Gradual recovery", "Flexibility maintenance", "Session reflection"},
			Setup: domain.DrillSetup{
				Space:        "20x20 yards",
				Equipment:    []string{"Balls"},
				Organization: "Open space for free play and stretching",
			},
			Instructions: []string{
				"Start with low-intensity possession game",
				"Transition to static stretching",
				"Include session reflection and feedback",
			},
			CoachingPoints: []string{"Maintain light intensity", "Hold stretches appropriately", "Positive session summary"},
		},
		Notes:         "Adapt activities based on player engagement and energy levels. Ensure adequate water breaks.",
		TotalDuration: params.Duration,
	}
}
