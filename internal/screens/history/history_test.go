package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prepwise/internal/store"
)

type fakeResults struct {
	recs    []store.AssessmentResultRecord
	learner string
}

func (f *fakeResults) SaveResult(context.Context, store.AssessmentResultData) error { return nil }

func (f *fakeResults) ListResults(_ context.Context, learnerID string, _ store.QueryOpts) ([]store.AssessmentResultRecord, error) {
	f.learner = learnerID
	return f.recs, nil
}

func TestHistoryLoadsAndExpands(t *testing.T) {
	repo := &fakeResults{recs: []store.AssessmentResultRecord{{
		Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		AssessmentResultData: store.AssessmentResultData{
			Company: "Flipkart", Level: "senior", Overall: 67, Alignment: 52, Band: "developing",
			Sections:   []store.SectionScoreData{{Section: "Code", Score: 50, Correct: 1, Total: 2, AvgSeconds: 40}},
			Weaknesses: []string{"Reading and tracing code"},
		},
	}}}
	s := New(repo, "ana")
	s.Update(s.Init()())

	if repo.learner != "ana" {
		t.Errorf("listed for %q, want ana", repo.learner)
	}
	view := s.View(120, 30)
	if !strings.Contains(view, "Flipkart") || !strings.Contains(view, "Any role") {
		t.Errorf("view missing row:\n%s", view)
	}
	if strings.Contains(view, "Reading and tracing code") {
		t.Error("details shown before expanding")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(120, 30), "Reading and tracing code") {
		t.Error("details not shown after expanding")
	}
}

func TestHistoryWithoutStore(t *testing.T) {
	s := New(nil, "ana")
	s.Update(s.Init()())
	if !strings.Contains(s.View(80, 20), "No assessments yet") {
		t.Error("expected empty state")
	}
}
