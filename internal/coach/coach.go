// Package coach turns a scored assessment into written feedback using an
// LLM. Scores are never changed here; a failed debrief leaves the result
// as it was.
package coach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/llm"
)

// Purpose labels debrief requests in the LLM event log.
const Purpose = "debrief"

var ErrNoResult = errors.New("no assessment result to debrief")

// Input is what the coach sees.
type Input struct {
	Result  *assessment.Result
	Company assessment.CompanyProfile
	Courses []string // course titles the learner can be pointed to
}

// Step is one entry of a study plan.
type Step struct {
	Topic  string `json:"topic"`
	Action string `json:"action"`
}

// Debrief is the generated feedback for one assessment.
type Debrief struct {
	SessionID   string
	Summary     string
	FocusAreas  []string
	StudyPlan   []Step
	Model       string
	GeneratedAt time.Time
}

type debriefOutput struct {
	Summary    string   `json:"summary"`
	FocusAreas []string `json:"focus_areas"`
	StudyPlan  []Step   `json:"study_plan"`
}

// Coach generates debriefs.
type Coach struct {
	provider llm.Provider
	cfg      Config
	timeout  time.Duration
	log      *zap.Logger
}

// New creates a Coach. A zero timeout means the caller's context alone
// bounds the request.
func New(provider llm.Provider, cfg Config, timeout time.Duration, log *zap.Logger) *Coach {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coach{provider: provider, cfg: cfg, timeout: timeout, log: log}
}

// Debrief asks the provider for feedback on in.Result.
func (c *Coach) Debrief(ctx context.Context, in Input) (*Debrief, error) {
	if in.Result == nil {
		return nil, ErrNoResult
	}
	ctx = llm.WithCall(ctx, llm.Call{
		Purpose:   Purpose,
		SessionID: in.Result.SessionID,
		LearnerID: in.Result.LearnerID,
	})
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := llm.Request{
		System: debriefSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildDebriefUserMessage(in)},
		},
		Schema:      DebriefSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		c.log.Warn("debrief failed", zap.String("session", in.Result.SessionID), zap.Error(err))
		return nil, fmt.Errorf("debrief: %w", err)
	}

	var out debriefOutput
	if err := llm.Decode(resp, &out); err != nil {
		return nil, fmt.Errorf("parse debrief response: %w", err)
	}

	c.log.Info("debrief generated",
		zap.String("session", in.Result.SessionID),
		zap.String("model", resp.Model),
		zap.Int("focus_areas", len(out.FocusAreas)))

	return &Debrief{
		SessionID:   in.Result.SessionID,
		Summary:     out.Summary,
		FocusAreas:  out.FocusAreas,
		StudyPlan:   out.StudyPlan,
		Model:       resp.Model,
		GeneratedAt: time.Now(),
	}, nil
}
