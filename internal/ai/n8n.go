package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Phase names the workflow provider uses to tag activities.
const (
	PhaseWarmUp    = "warm-up"
	PhaseTechnical = "technical"
	PhaseTactical  = "tactical"
	PhaseGame      = "game"
	PhaseCoolDown  = "cool-down"
)

// Request bounds enforced by the workflow webhook contract. Note these are
// tighter than the RPC-level 30-180 bound; longer sessions always take the
// fallback path.
const (
	workflowMinDuration = 15
	workflowMaxDuration = 120
)

// FailureKind classifies why a primary-provider call failed. All kinds are
// recoverable via the fallback generator; the kind only drives logging.
type FailureKind string

const (
	FailTimeout  FailureKind = "timeout"
	FailNetwork  FailureKind = "network"
	FailStatus   FailureKind = "status"
	FailDecode   FailureKind = "decode"
	FailSchema   FailureKind = "schema"
	FailRejected FailureKind = "rejected" // provider answered success:false
	FailRequest  FailureKind = "request"  // request failed local validation
)

// ProviderError wraps a primary-provider failure with its classification.
type ProviderError struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WorkflowRequest is the coach-winston webhook request body.
type WorkflowRequest struct {
	TeamID             string   `json:"teamId"`
	Duration           int      `json:"duration"`
	FocusAreas         []string `json:"focusAreas"`
	AgeGroup           string   `json:"ageGroup,omitempty"`
	SkillLevel         string   `json:"skillLevel,omitempty"`
	PlayerCount        int      `json:"playerCount,omitempty"`
	WeatherConditions  string   `json:"weatherConditions,omitempty"`
	AvailableEquipment []string `json:"availableEquipment,omitempty"`
}

// WorkflowResponse is the coach-winston webhook response body.
type WorkflowResponse struct {
	Success     bool                 `json:"success"`
	SessionID   string               `json:"sessionId,omitempty"`
	SessionPlan *WorkflowSessionPlan `json:"sessionPlan,omitempty"`
	Metadata    *WorkflowMeta        `json:"metadata,omitempty"`
	Error       *WorkflowErrorBody   `json:"error,omitempty"`
}

// WorkflowSessionPlan is the structured plan the workflow produces.
type WorkflowSessionPlan struct {
	SessionTitle  string             `json:"sessionTitle"`
	Overview      string             `json:"overview"`
	TotalDuration int                `json:"totalDuration"`
	AgeGroup      string             `json:"ageGroup"`
	FocusAreas    []string           `json:"focusAreas"`
	Activities    []WorkflowActivity `json:"activities"`
	CoachNotes    string             `json:"coachNotes,omitempty"`
}

// WorkflowActivity is one phase-tagged activity within a workflow plan.
type WorkflowActivity struct {
	Phase          string   `json:"phase"`
	Name           string   `json:"name"`
	Duration       int      `json:"duration"`
	Description    string   `json:"description"`
	Setup          string   `json:"setup,omitempty"`
	Instructions   string   `json:"instructions"`
	CoachingPoints []string `json:"coachingPoints,omitempty"`
	Progressions   []string `json:"progressions,omitempty"`
	Equipment      []string `json:"equipment,omitempty"`
	SafetyNotes    string   `json:"safetyNotes,omitempty"`
}

type WorkflowMeta struct {
	GeneratedAt string `json:"generatedAt"`
	TeamID      string `json:"teamId"`
	RequestID   string `json:"requestId"`
}

type WorkflowErrorBody struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId"`
}

// WorkflowClient is the primary session-generation provider.
type WorkflowClient interface {
	GenerateSession(ctx context.Context, req WorkflowRequest) (*WorkflowResponse, error)
	HealthCheck(ctx context.Context) bool
}

// n8nClient talks to the Coach Winston n8n workflow over HTTP.
type n8nClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewN8NClient creates a workflow client for the given webhook base URL.
func NewN8NClient(baseURL string, timeout time.Duration) WorkflowClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &n8nClient{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// GenerateSession posts the request to the coach-winston webhook and
// validates the response. Every failure is returned as a *ProviderError so
// the pipeline can log its kind before falling back.
func (c *n8nClient) GenerateSession(ctx context.Context, req WorkflowRequest) (*WorkflowResponse, error) {
	if c.baseURL == "" {
		return nil, &ProviderError{Kind: FailRequest, Message: "workflow webhook URL is not configured"}
	}
	if err := validateWorkflowRequest(req); err != nil {
		return nil, &ProviderError{Kind: FailRequest, Message: err.Error(), Err: err}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ProviderError{Kind: FailRequest, Message: "failed to encode workflow request", Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/webhook/coach-winston", bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Kind: FailRequest, Message: "failed to build workflow request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &ProviderError{
				Kind:    FailTimeout,
				Message: "session generation timed out, please try again",
				Err:     err,
			}
		}
		return nil, &ProviderError{
			Kind:    FailNetwork,
			Message: "unable to connect to AI service, please try again later",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("workflow API returned %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		if resp.StatusCode == http.StatusNotFound {
			msg = "coach winston workflow is not available, check the n8n configuration"
		}
		return nil, &ProviderError{Kind: FailStatus, Message: msg}
	}

	var workflowResp WorkflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&workflowResp); err != nil {
		return nil, &ProviderError{Kind: FailDecode, Message: "workflow returned malformed JSON", Err: err}
	}

	if !workflowResp.Success {
		msg := "session generation failed"
		if workflowResp.Error != nil && workflowResp.Error.Message != "" {
			msg = workflowResp.Error.Message
		}
		return nil, &ProviderError{Kind: FailRejected, Message: msg}
	}

	if err := validateWorkflowPlan(workflowResp.SessionPlan); err != nil {
		return nil, &ProviderError{Kind: FailSchema, Message: err.Error(), Err: err}
	}

	return &workflowResp, nil
}

// HealthCheck probes the workflow's health webhook with a short timeout.
func (c *n8nClient) HealthCheck(ctx context.Context) bool {
	if c.baseURL == "" {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/webhook/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func validateWorkflowRequest(req WorkflowRequest) error {
	if req.TeamID == "" {
		return errors.New("teamId is required")
	}
	if req.Duration < workflowMinDuration || req.Duration > workflowMaxDuration {
		return fmt.Errorf("duration %d outside workflow bounds [%d,%d]", req.Duration, workflowMinDuration, workflowMaxDuration)
	}
	if req.FocusAreas == nil {
		return errors.New("focusAreas must be present")
	}
	return nil
}

// validateWorkflowPlan is the schema check for a success response: a plan
// must be present with a title and at least one well-formed activity.
func validateWorkflowPlan(plan *WorkflowSessionPlan) error {
	if plan == nil {
		return errors.New("workflow reported success without a session plan")
	}
	if plan.SessionTitle == "" {
		return errors.New("workflow plan is missing a session title")
	}
	if len(plan.Activities) == 0 {
		return errors.New("workflow plan has no activities")
	}
	for i, a := range plan.Activities {
		if !validPhase(a.Phase) {
			return fmt.Errorf("activity %d has unknown phase %q", i, a.Phase)
		}
		if a.Name == "" {
			return fmt.Errorf("activity %d is missing a name", i)
		}
		if a.Duration <= 0 {
			return fmt.Errorf("activity %d has non-positive duration", i)
		}
	}
	return nil
}

func validPhase(phase string) bool {
	switch phase {
	case PhaseWarmUp, PhaseTechnical, PhaseTactical, PhaseGame, PhaseCoolDown:
		return true
	}
	return false
}
