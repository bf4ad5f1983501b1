package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/store"
)

// RecordingProvider stores every request it forwards as an LLM event,
// tagged with the Call on the request context.
type RecordingProvider struct {
	inner Provider
	repo  store.EventRepo
	log   *zap.Logger
}

// WithRecording wraps p so each call is appended to repo.
// A failure to record is logged and never fails the call.
func WithRecording(p Provider, repo store.EventRepo, log *zap.Logger) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordingProvider{inner: p, repo: repo, log: log}
}

func (r *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	call := CallFrom(ctx)
	data := store.LLMRequestEventData{
		Provider:    r.inner.Name(),
		Model:       r.inner.ModelID(),
		Purpose:     call.Purpose,
		SessionID:   call.SessionID,
		LearnerID:   call.LearnerID,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: req.transcript(),
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		var e *Error
		if errors.As(err, &e) && len(e.Content) > 0 {
			data.ResponseBody = string(e.Content)
		}
	}

	// Record even when the caller's context is done.
	if recErr := r.repo.AppendLLMRequest(context.WithoutCancel(ctx), data); recErr != nil {
		r.log.Warn("record llm request", append(call.fields(), zap.Error(recErr))...)
	}
	return resp, err
}

func (r *RecordingProvider) ModelID() string { return r.inner.ModelID() }

func (r *RecordingProvider) Name() string { return r.inner.Name() }
