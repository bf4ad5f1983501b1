package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(v int) *int { return &v }

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestProgressApplyAndLoad(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	recs, err := repo.Load(ctx, "ana", "go-basics")
	require.NoError(t, err)
	assert.Empty(t, recs, "not enrolled yet")

	err = repo.Apply(ctx, []ModuleProgressRecord{
		{LearnerID: "ana", CourseID: "go-basics", ModuleID: "m1", Status: "unlocked", ProjectStatus: "none"},
		{LearnerID: "ana", CourseID: "go-basics", ModuleID: "m2", Status: "locked", ProjectStatus: "none"},
	}, nil)
	require.NoError(t, err)

	err = repo.Apply(ctx, []ModuleProgressRecord{{
		LearnerID: "ana", CourseID: "go-basics", ModuleID: "m1", Status: "unlocked",
		TheoryCompleted: true, VideoCompleted: true,
		QuizScore: intPtr(83), QuizAnswers: [][]int{{0}, {1, 2}, {}},
		ProjectStatus: "none",
	}}, []ProgressEventData{{
		LearnerID: "ana", CourseID: "go-basics", ModuleID: "m1",
		Trigger: "quiz-graded", From: "quiz", To: "project", QuizScore: intPtr(83),
	}})
	require.NoError(t, err)

	recs, err = repo.Load(ctx, "ana", "go-basics")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	m1 := recs[0]
	assert.Equal(t, "m1", m1.ModuleID)
	assert.True(t, m1.TheoryCompleted)
	assert.True(t, m1.VideoCompleted)
	require.NotNil(t, m1.QuizScore)
	assert.Equal(t, 83, *m1.QuizScore)
	assert.Equal(t, [][]int{{0}, {1, 2}, {}}, m1.QuizAnswers)
	assert.False(t, m1.UpdatedAt.IsZero())

	m2 := recs[1]
	assert.Equal(t, "locked", m2.Status)
	assert.Nil(t, m2.QuizScore)
	assert.Nil(t, m2.QuizAnswers)

	events, err := repo.Events(ctx, "ana", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "quiz-graded", events[0].Trigger)
	require.NotNil(t, events[0].QuizScore)
	assert.Equal(t, 83, *events[0].QuizScore)
}

func TestProgressApplyIsAtomic(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	require.NoError(t, repo.Apply(ctx, []ModuleProgressRecord{
		{LearnerID: "ana", CourseID: "c", ModuleID: "m1", Status: "unlocked", ProjectStatus: "none"},
	}, nil))

	// Second write fails on the cancelled context after nothing was committed.
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err := repo.Apply(cctx, []ModuleProgressRecord{
		{LearnerID: "ana", CourseID: "c", ModuleID: "m1", Status: "completed", ProjectStatus: "submitted"},
	}, nil)
	require.Error(t, err)

	recs, err := repo.Load(ctx, "ana", "c")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "unlocked", recs[0].Status)
}

func TestProgressCourses(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	for _, c := range []string{"sql", "go"} {
		require.NoError(t, repo.Apply(ctx, []ModuleProgressRecord{
			{LearnerID: "ana", CourseID: c, ModuleID: "m1", Status: "unlocked", ProjectStatus: "none"},
			{LearnerID: "ana", CourseID: c, ModuleID: "m2", Status: "locked", ProjectStatus: "none"},
		}, nil))
	}

	courses, err := repo.Courses(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, courses)

	courses, err = repo.Courses(ctx, "ben")
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestResultSaveAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()

	data := AssessmentResultData{
		SessionID: "s1", LearnerID: "ana", Role: "Backend Engineer", Company: "Google", Level: "mid",
		Overall: 67, Alignment: 74, Band: "developing",
		Sections: []SectionScoreData{
			{Section: "Logic", Score: 100, Correct: 2, Total: 2, AvgSeconds: 40},
			{Section: "Code", Score: 50, Correct: 1, Total: 2, AvgSeconds: 80},
		},
		Strengths:  []string{"Logical reasoning"},
		Weaknesses: nil,
	}
	require.NoError(t, repo.SaveResult(ctx, data))

	data.SessionID = "s2"
	data.Overall = 83
	require.NoError(t, repo.SaveResult(ctx, data))

	// Same session twice is rejected.
	assert.Error(t, repo.SaveResult(ctx, data))

	results, err := repo.ListResults(ctx, "ana", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "s2", results[0].SessionID, "newest first")
	assert.Equal(t, 83, results[0].Overall)
	assert.Len(t, results[1].Sections, 2)
	assert.Equal(t, []string{"Logical reasoning"}, results[1].Strengths)
	assert.Empty(t, results[1].Weaknesses)

	limited, err := repo.ListResults(ctx, "ana", QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"debrief", "debrief", "hint"} {
		require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider: "mock", Model: "mock-model", Purpose: purpose,
			InputTokens: 100, OutputTokens: 10 * (i + 1), LatencyMs: 200,
			Success: true, RequestBody: "req", ResponseBody: "resp",
			SessionID: fmt.Sprintf("s-%d", i), LearnerID: "ana",
		}))
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2}, LLMEventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "hint", events[0].Purpose)
	assert.Greater(t, events[0].Sequence, events[1].Sequence)

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "resp", e.ResponseBody)
	assert.Equal(t, "s-2", e.SessionID)
	assert.Equal(t, "ana", e.LearnerID)

	debriefs, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1}, LLMEventFilter{Purpose: "debrief"})
	require.NoError(t, err)
	require.Len(t, debriefs, 1, "purpose filter applies before the limit")
	assert.Equal(t, "s-1", debriefs[0].SessionID)

	bySession, err := repo.QueryLLMEvents(ctx, QueryOpts{}, LLMEventFilter{SessionID: "s-0"})
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, 10, bySession[0].OutputTokens)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, LLMUsageStats{Purpose: "debrief", Calls: 2, InputTokens: 200, OutputTokens: 30, AvgLatencyMs: 200}, byPurpose[0])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 3, byModel[0].Calls)
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "m", Purpose: "p"}))
	require.NoError(t, s.ProgressRepo().Apply(ctx, nil, []ProgressEventData{
		{LearnerID: "ana", CourseID: "c", ModuleID: "m1", Trigger: "theory-complete", From: "theory", To: "video"},
	}))

	llmEvents, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{}, LLMEventFilter{})
	require.NoError(t, err)
	progEvents, err := s.ProgressRepo().Events(ctx, "ana", QueryOpts{})
	require.NoError(t, err)

	require.Len(t, llmEvents, 1)
	require.Len(t, progEvents, 1)
	assert.Equal(t, llmEvents[0].Sequence+1, progEvents[0].Sequence)

	after, err := s.ProgressRepo().Events(ctx, "ana", QueryOpts{After: progEvents[0].Sequence})
	require.NoError(t, err)
	assert.Empty(t, after)

	window, err := s.ProgressRepo().Events(ctx, "ana", QueryOpts{From: time.Now().UTC().Add(-time.Hour)})
	require.NoError(t, err)
	assert.Len(t, window, 1)
}
