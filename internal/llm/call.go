package llm

import (
	"context"

	"go.uber.org/zap"
)

// Call labels a request with what it is for and whom it serves. It travels
// on the context so the recording and retry layers see it without every
// Request carrying it.
type Call struct {
	Purpose   string
	SessionID string
	LearnerID string
}

type callKey struct{}

// WithCall attaches c to ctx.
func WithCall(ctx context.Context, c Call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

// CallFrom returns the Call on ctx. Purpose is "unknown" when unset.
func CallFrom(ctx context.Context) Call {
	c, _ := ctx.Value(callKey{}).(Call)
	if c.Purpose == "" {
		c.Purpose = "unknown"
	}
	return c
}

func (c Call) fields() []zap.Field {
	fs := []zap.Field{zap.String("purpose", c.Purpose)}
	if c.SessionID != "" {
		fs = append(fs, zap.String("session", c.SessionID))
	}
	return fs
}
