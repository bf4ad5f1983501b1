package progression

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/abhisek/prepwise/internal/store"
)

type fakeContent struct {
	modules int
}

func (f fakeContent) Course(_ context.Context, courseID string) (*Course, error) {
	if courseID != "go-basics" {
		return nil, fmt.Errorf("%w: %q", ErrCourseNotFound, courseID)
	}
	c := &Course{ID: courseID, Title: "Go Basics"}
	for i := 0; i < f.modules; i++ {
		c.Modules = append(c.Modules, &Module{
			ID:         string(rune('a' + i)),
			OrderIndex: i + 1,
			Questions:  sixQuestions(),
		})
	}
	return c, nil
}

func newTestService(t *testing.T, modules int) (*Service, *store.Store) {
	t.Helper()
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(fakeContent{modules: modules}, s.ProgressRepo(), zaptest.NewLogger(t)), s
}

func TestServiceEnroll(t *testing.T) {
	svc, _ := newTestService(t, 3)
	ctx := context.Background()

	_, err := svc.Load(ctx, "ana", "go-basics")
	require.ErrorIs(t, err, ErrNotEnrolled)

	pc, err := svc.Enroll(ctx, "ana", "go-basics")
	require.NoError(t, err)
	assert.Equal(t, StatusUnlocked, pc.Course.Modules[0].Progress.Status)

	_, err = svc.Enroll(ctx, "ana", "go-basics")
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	_, err = svc.Enroll(ctx, "ana", "rust")
	assert.ErrorIs(t, err, ErrCourseNotFound)

	courses, err := svc.Courses(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"go-basics"}, courses)
}

func TestServicePersistsAcrossLoads(t *testing.T) {
	svc, s := newTestService(t, 2)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "ana", "go-basics")
	require.NoError(t, err)

	_, err = svc.CompleteTheory(ctx, "ana", "go-basics", "a")
	require.NoError(t, err)
	_, err = svc.CompleteVideo(ctx, "ana", "go-basics", "a")
	require.NoError(t, err)
	out, err := svc.SubmitQuiz(ctx, "ana", "go-basics", "a", correctAnswers(sixQuestions()))
	require.NoError(t, err)
	require.NotNil(t, out.Grade)
	assert.Equal(t, 100, out.Grade.Score)

	_, err = svc.SubmitProject(ctx, "ana", "go-basics", "a", "https://demo.example.com", "")
	require.NoError(t, err)

	pc, err := svc.Load(ctx, "ana", "go-basics")
	require.NoError(t, err)
	first, second := pc.Course.Modules[0].Progress, pc.Course.Modules[1].Progress
	assert.Equal(t, StatusCompleted, first.Status)
	require.NotNil(t, first.QuizScore)
	assert.Equal(t, 100, *first.QuizScore)
	assert.Len(t, first.QuizAnswers, 6)
	assert.Equal(t, "https://demo.example.com", first.DeployedLink)
	assert.Equal(t, StatusUnlocked, second.Status)

	events, err := s.ProgressRepo().Events(ctx, "ana", store.QueryOpts{})
	require.NoError(t, err)
	// theory, video, quiz, project, unlock
	require.Len(t, events, 5)
	assert.Equal(t, TriggerUnlock, events[0].Trigger)
	assert.Equal(t, "b", events[0].ModuleID)
	assert.Equal(t, TriggerProject, events[1].Trigger)
	assert.Equal(t, string(StageCompleted), events[1].To)
	assert.Equal(t, TriggerTheory, events[4].Trigger)
}

func TestServiceRejectedOperationDoesNotPersist(t *testing.T) {
	svc, s := newTestService(t, 2)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "ana", "go-basics")
	require.NoError(t, err)
	_, err = svc.CompleteTheory(ctx, "ana", "go-basics", "a")
	require.NoError(t, err)
	_, err = svc.CompleteVideo(ctx, "ana", "go-basics", "a")
	require.NoError(t, err)

	_, err = svc.SubmitQuiz(ctx, "ana", "go-basics", "a", correctAnswers(sixQuestions())[:5])
	require.Error(t, err)

	pc, err := svc.Load(ctx, "ana", "go-basics")
	require.NoError(t, err)
	assert.Nil(t, pc.Course.Modules[0].Progress.QuizScore)

	_, err = svc.CompleteTheory(ctx, "ana", "go-basics", "b")
	assert.True(t, errors.Is(err, ErrModuleLocked))

	events, err := s.ProgressRepo().Events(ctx, "ana", store.QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestServiceModuleQuiz(t *testing.T) {
	svc, _ := newTestService(t, 2)

	qs, err := svc.ModuleQuiz(context.Background(), "go-basics", "b")
	require.NoError(t, err)
	assert.Len(t, qs, 6)

	_, err = svc.ModuleQuiz(context.Background(), "go-basics", "zz")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}
