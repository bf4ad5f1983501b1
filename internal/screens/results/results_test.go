package results

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/coach"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screens"
)

func sampleResult() *assessment.Result {
	return &assessment.Result{
		SessionID: "s1",
		Role:      "Backend Engineer",
		Company:   "Google",
		Level:     "mid",
		Sections: []assessment.SectionResult{
			{Section: assessment.SectionLogic, Score: 100, Correct: 2, Total: 2, AvgSeconds: 30, Weight: 0.3},
			{Section: assessment.SectionCode, Score: 50, Correct: 1, Total: 2, AvgSeconds: 60, Weight: 0.4},
			{Section: assessment.SectionSystem, Score: 0, Correct: 0, Total: 2, AvgSeconds: 90, Weight: 0.3},
		},
		Overall:    50,
		Alignment:  42,
		Band:       assessment.BandDeveloping,
		Strengths:  []string{"Logical reasoning"},
		Weaknesses: []string{"Scalability and trade-off analysis"},
	}
}

func TestViewWithoutCoach(t *testing.T) {
	s := New(screens.Deps{}, sampleResult(), assessment.CustomCompany("Google"))
	if s.Init() != nil {
		t.Error("no coach means no debrief command")
	}
	view := s.View(100, 40)
	for _, want := range []string{"Overall", "50/100", "42/100", "developing", "Logical reasoning", "System Thinking"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "study plan") {
		t.Error("view should not mention a study plan without a coach")
	}
}

func TestDebriefArrives(t *testing.T) {
	s := New(screens.Deps{}, sampleResult(), assessment.CustomCompany("Google"))
	s.loading = true

	s.Update(debriefMsg{Debrief: &coach.Debrief{
		Summary:   "Solid reasoning, weak on design.",
		StudyPlan: []coach.Step{{Topic: "Caching", Action: "Read about cache invalidation"}},
	}})
	view := s.View(100, 40)
	if !strings.Contains(view, "Solid reasoning") || !strings.Contains(view, "Caching") {
		t.Errorf("debrief not rendered:\n%s", view)
	}
}

func TestEnterReturnsHome(t *testing.T) {
	s := New(screens.Deps{}, sampleResult(), assessment.CustomCompany("Google"))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg")
	}
}
