package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  *ModelCost
	}{
		{"gpt-4o-mini", &ModelCost{0.15, 0.6}},
		{"openai/gpt-4o-mini", &ModelCost{0.15, 0.6}},
		{"google/gemini-2.0-flash-exp:free", &ModelCost{0.1, 0.4}},
		{"mock", nil},
		{"meta-llama/llama-3-8b", nil},
	}
	for _, tt := range tests {
		got := LookupCost(tt.model)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("%s: got %+v, want nil", tt.model, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("%s: got %v, want %+v", tt.model, got, *tt.want)
		}
	}
}

func TestModelCost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	if got := c.Cost(2_000, 400); math.Abs(got-0.004) > 1e-12 {
		t.Errorf("Cost = %v, want 0.004", got)
	}
}
