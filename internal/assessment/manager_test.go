package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/store"
)

type fakeCatalog struct {
	pool []Question
}

func (f fakeCatalog) Pool(context.Context) ([]Question, error) { return f.pool, nil }

func (f fakeCatalog) Company(name string) (CompanyProfile, bool) {
	if strings.EqualFold(name, "Google") {
		return CompanyProfile{Name: "Google", DifficultyBias: 1.2,
			Weights: map[Section]float64{SectionLogic: 0.3, SectionCode: 0.4, SectionSystem: 0.3}}, true
	}
	return CompanyProfile{}, false
}

func (f fakeCatalog) Role(name string) (Role, bool) {
	if name == "Backend Engineer" {
		return Role{Name: name, Skills: []string{"APIs"}}, true
	}
	return Role{}, false
}

func (f fakeCatalog) Level(id string) (Level, bool) {
	if id == "mid" {
		return Level{ID: "mid", Label: "Mid-level"}, true
	}
	return Level{}, false
}

func newTestManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	opts = append([]ManagerOption{WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewManager(fakeCatalog{pool: testPool(3)}, opts...)
}

func start(t *testing.T, m *Manager, company string) *Session {
	t.Helper()
	s, err := m.StartAssessment(context.Background(), "ana", "Backend Engineer", company, "mid")
	require.NoError(t, err)
	return s
}

// answerAll answers every question, correct for the first n per section.
func answerAll(t *testing.T, m *Manager, s *Session, correct map[Section]int) *Advance {
	t.Helper()
	seen := map[Section]int{}
	var adv *Advance
	for _, q := range s.Questions {
		sel := quiz.AnswerSet{1}
		if seen[q.Section] < correct[q.Section] {
			sel = quiz.AnswerSet(q.Correct)
		}
		seen[q.Section]++
		var err error
		adv, err = m.AnswerQuestion(context.Background(), s.ID, q.ID, sel)
		require.NoError(t, err)
	}
	return adv
}

func TestStartAssessment(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s := start(t, m, "google")
	assert.Len(t, s.Questions, 6)
	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, 60, s.Remaining)
	assert.False(t, s.Company.Custom)
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)

	custom := start(t, m, "Tiny Startup")
	assert.True(t, custom.Company.Custom)
	assert.Equal(t, DefaultBias, custom.Company.DifficultyBias)
	assert.NotEqual(t, s.ID, custom.ID)

	_, err = m.StartAssessment(ctx, "ana", "Astronaut", "Google", "mid")
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = m.StartAssessment(ctx, "ana", "Backend Engineer", "Google", "wizard")
	assert.ErrorIs(t, err, ErrUnknownLevel)

	small := NewManager(fakeCatalog{pool: testPool(1)})
	_, err = small.StartAssessment(ctx, "ana", "", "", "mid")
	assert.ErrorIs(t, err, ErrInsufficientPoolSize)
}

func TestScenarioB_ThroughManager(t *testing.T) {
	m := newTestManager(t)
	s := start(t, m, "Acme")

	adv := answerAll(t, m, s, map[Section]int{SectionLogic: 2, SectionCode: 0, SectionSystem: 1})
	require.True(t, adv.Complete)
	assert.Nil(t, adv.Question)

	res, err := m.GetResults(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Overall)
	logic, _ := res.Section(SectionLogic)
	code, _ := res.Section(SectionCode)
	sys, _ := res.Section(SectionSystem)
	assert.Equal(t, []int{100, 0, 50}, []int{logic.Score, code.Score, sys.Score})
	assert.Equal(t, "Backend Engineer", res.Role)
	assert.Equal(t, "mid", res.Level)
}

func TestAnswerQuestion_Errors(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := start(t, m, "Google")

	_, err := m.AnswerQuestion(ctx, "nope", s.Questions[0].ID, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.AnswerQuestion(ctx, s.ID, s.Questions[1].ID, nil)
	assert.ErrorIs(t, err, ErrQuestionMismatch)

	_, err = m.GetResults(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionIncomplete)

	answerAll(t, m, s, nil)
	_, err = m.AnswerQuestion(ctx, s.ID, s.Questions[5].ID, nil)
	assert.ErrorIs(t, err, ErrSessionAlreadyComplete)
}

func TestTick_TimeoutRecordsIncorrectAndAdvances(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := start(t, m, "Google")
	q0 := s.Questions[0]

	var adv *Advance
	var err error
	for i := 0; i < q0.Limit()-1; i++ {
		adv, err = m.Tick(ctx, s.ID, q0.ID)
		require.NoError(t, err)
		require.Nil(t, adv.Recorded)
	}
	assert.Equal(t, 1, adv.Remaining)

	adv, err = m.Tick(ctx, s.ID, q0.ID)
	require.NoError(t, err)
	require.NotNil(t, adv.Recorded)
	assert.True(t, adv.TimedOut)
	assert.False(t, adv.Recorded.Correct)
	assert.Equal(t, q0.Limit(), adv.Recorded.ElapsedSeconds)
	require.NotNil(t, adv.Question)
	assert.Equal(t, s.Questions[1].ID, adv.Question.ID)
	assert.Equal(t, s.Questions[1].Limit(), adv.Remaining)
}

func TestTick_StaleTickIgnoredAfterAnswer(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := start(t, m, "Google")
	q0, q1 := s.Questions[0], s.Questions[1]

	_, err := m.AnswerQuestion(ctx, s.ID, q0.ID, quiz.AnswerSet(q0.Correct))
	require.NoError(t, err)

	// A tick scheduled for q0 arrives after the answer.
	adv, err := m.Tick(ctx, s.ID, q0.ID)
	require.NoError(t, err)
	assert.Nil(t, adv.Recorded)
	assert.Equal(t, q1.ID, adv.Question.ID)
	assert.Equal(t, q1.Limit(), adv.Remaining, "stale tick must not touch the next question's clock")

	snap, err := m.Session(s.ID)
	require.NoError(t, err)
	require.Len(t, snap.Responses, 1)
	assert.True(t, snap.Responses[0].Correct)
}

func TestTimeoutEquivalentToEmptySubmission(t *testing.T) {
	ctx := context.Background()

	timedOut := newTestManager(t)
	a := start(t, timedOut, "Google")
	answered := newTestManager(t)
	b := start(t, answered, "Google")

	for i, q := range a.Questions {
		var ra, rb *Response
		for tick := 0; tick < q.Limit(); tick++ {
			adv, err := timedOut.Tick(ctx, a.ID, q.ID)
			require.NoError(t, err)
			ra = adv.Recorded
		}
		for tick := 0; tick < q.Limit()-1; tick++ {
			_, err := answered.Tick(ctx, b.ID, q.ID)
			require.NoError(t, err)
		}
		adv, err := answered.AnswerQuestion(ctx, b.ID, q.ID, quiz.AnswerSet{})
		require.NoError(t, err)
		rb = adv.Recorded

		require.NotNil(t, ra, "question %d", i)
		assert.Equal(t, rb.Correct, ra.Correct)
		assert.Equal(t, rb.Selected, ra.Selected)
		assert.Equal(t, rb.QuestionID, ra.QuestionID)
	}

	resA, err := timedOut.GetResults(ctx, a.ID)
	require.NoError(t, err)
	resB, err := answered.GetResults(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, resB.Overall, resA.Overall)
	assert.Equal(t, resB.Alignment, resA.Alignment)
	assert.Equal(t, resB.Weaknesses, resA.Weaknesses)
}

func TestAbandon(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := start(t, m, "Google")

	_, err := m.AnswerQuestion(ctx, s.ID, s.Questions[0].ID, nil)
	require.NoError(t, err)
	require.NoError(t, m.Abandon(ctx, s.ID))

	_, err = m.GetResults(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	done := start(t, m, "Google")
	answerAll(t, m, done, nil)
	assert.ErrorIs(t, m.Abandon(ctx, done.ID), ErrSessionAlreadyComplete)
}

func TestResultsPersistedOnce(t *testing.T) {
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := newTestManager(t, WithResultRepo(st.ResultRepo()))
	ctx := context.Background()
	s := start(t, m, "Google")
	answerAll(t, m, s, map[Section]int{SectionLogic: 2, SectionCode: 2, SectionSystem: 2})

	first, err := m.GetResults(ctx, s.ID)
	require.NoError(t, err)
	second, err := m.GetResults(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 100, first.Overall)
	assert.Equal(t, 100, first.Alignment)
	assert.Equal(t, BandReady, first.Band)

	records, err := st.ResultRepo().ListResults(ctx, "ana", store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	restored := FromRecord(records[0])
	assert.Equal(t, first.Sections, restored.Sections)
	assert.Equal(t, "Google", restored.Company)
}

func TestGetResultsReturnsIndependentCopy(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := start(t, m, "Google")
	answerAll(t, m, s, map[Section]int{SectionLogic: 2, SectionCode: 2, SectionSystem: 2})

	first, err := m.GetResults(ctx, s.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.Sections)
	require.NotEmpty(t, first.Strengths)
	first.Sections[0].Score = -999
	first.Strengths[0] = "rewritten"
	first.Weaknesses = append(first.Weaknesses, "rewritten")

	second, err := m.GetResults(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, second.Sections[0].Score)
	assert.NotContains(t, second.Strengths, "rewritten")
	assert.NotContains(t, second.Weaknesses, "rewritten")
}

func TestFinishedSessionsAreEvicted(t *testing.T) {
	m := newTestManager(t, WithKeepFinished(2))
	ctx := context.Background()

	var done []*Session
	for i := 0; i < 3; i++ {
		s := start(t, m, "Google")
		answerAll(t, m, s, nil)
		done = append(done, s)
	}
	active := start(t, m, "Google")

	_, err := m.GetResults(ctx, done[0].ID)
	assert.ErrorIs(t, err, ErrSessionNotFound, "oldest completed session is dropped")
	for _, s := range done[1:] {
		_, err := m.GetResults(ctx, s.ID)
		assert.NoError(t, err)
	}
	_, err = m.Session(active.ID)
	assert.NoError(t, err, "active sessions are never evicted")

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Len(t, m.sessions, 3)
	assert.Len(t, m.finished, 2)
}

func TestConcurrentTicksAndAnswer(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	s := start(t, m, "Google")
	q0 := s.Questions[0]

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < q0.Limit()*2; i++ {
			if _, err := m.Tick(ctx, s.ID, q0.ID); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	_, answerErr := m.AnswerQuestion(ctx, s.ID, q0.ID, quiz.AnswerSet(q0.Correct))
	<-done

	snap, err := m.Session(s.ID)
	require.NoError(t, err)
	require.Len(t, snap.Responses, 1, "exactly one of answer or timeout wins")
	if answerErr != nil {
		assert.True(t, errors.Is(answerErr, ErrQuestionMismatch))
		assert.False(t, snap.Responses[0].Correct)
	} else {
		assert.True(t, snap.Responses[0].Correct)
	}
}
