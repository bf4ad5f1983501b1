package progression

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/store"
)

var (
	ErrNotEnrolled     = errors.New("learner is not enrolled in course")
	ErrAlreadyEnrolled = errors.New("learner is already enrolled in course")
	ErrCourseNotFound  = errors.New("course not found")
)

// ContentStore supplies course content. Course must return a fresh copy on
// every call; the service attaches progress to it.
type ContentStore interface {
	Course(ctx context.Context, courseID string) (*Course, error)
}

// Service loads a learner's course state, applies one stage operation, and
// persists the result.
type Service struct {
	content ContentStore
	repo    store.ProgressRepo
	logger  *zap.Logger
}

// NewService creates a progression service. A nil logger disables logging.
func NewService(content ContentStore, repo store.ProgressRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{content: content, repo: repo, logger: logger.Named("progression")}
}

// Enroll creates initial progress for a learner: first module unlocked, the
// rest locked.
func (s *Service) Enroll(ctx context.Context, learnerID, courseID string) (*CourseProgressionContext, error) {
	existing, err := s.repo.Load(ctx, learnerID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyEnrolled, courseID)
	}

	course, err := s.content.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	pc, err := NewContext(learnerID, course)
	if err != nil {
		return nil, err
	}
	InitialProgress(course)

	records := make([]store.ModuleProgressRecord, 0, len(course.Modules))
	for _, m := range course.Modules {
		records = append(records, toRecord(learnerID, courseID, m))
	}
	if err := s.repo.Apply(ctx, records, nil); err != nil {
		return nil, fmt.Errorf("save enrollment: %w", err)
	}

	s.logger.Info("learner enrolled",
		zap.String("learner", learnerID),
		zap.String("course", courseID),
		zap.Int("modules", len(course.Modules)))
	return pc, nil
}

// Load returns the learner's current state in a course.
func (s *Service) Load(ctx context.Context, learnerID, courseID string) (*CourseProgressionContext, error) {
	course, err := s.content.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	pc, err := NewContext(learnerID, course)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Load(ctx, learnerID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotEnrolled, courseID)
	}

	byModule := make(map[string]store.ModuleProgressRecord, len(records))
	for _, r := range records {
		byModule[r.ModuleID] = r
	}

	// Modules added to the course after enrollment have no row yet; they
	// follow the lock rule from their predecessor.
	for i, m := range course.Modules {
		if rec, ok := byModule[m.ID]; ok {
			m.Progress = fromRecord(rec)
			continue
		}
		m.Progress = Progress{Status: StatusLocked, ProjectStatus: ProjectNone}
		if i == 0 || course.Modules[i-1].Progress.Status == StatusCompleted {
			m.Progress.Status = StatusUnlocked
		}
	}

	if err := pc.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("stored progress for %q is inconsistent: %w", courseID, err)
	}
	return pc, nil
}

// Courses lists the course ids a learner is enrolled in.
func (s *Service) Courses(ctx context.Context, learnerID string) ([]string, error) {
	return s.repo.Courses(ctx, learnerID)
}

// ModuleQuiz returns the quiz questions of a module.
func (s *Service) ModuleQuiz(ctx context.Context, courseID, moduleID string) ([]quiz.Question, error) {
	course, err := s.content.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	pc := &CourseProgressionContext{Course: course}
	_, m, err := pc.Module(moduleID)
	if err != nil {
		return nil, err
	}
	return m.Questions, nil
}

// CompleteTheory marks a module's theory stage done.
func (s *Service) CompleteTheory(ctx context.Context, learnerID, courseID, moduleID string) (*Outcome, error) {
	return s.run(ctx, learnerID, courseID, moduleID, "complete-theory",
		func(pc *CourseProgressionContext) (*Outcome, error) {
			return pc.CompleteTheory(moduleID)
		})
}

// CompleteVideo marks a module's video stage done.
func (s *Service) CompleteVideo(ctx context.Context, learnerID, courseID, moduleID string) (*Outcome, error) {
	return s.run(ctx, learnerID, courseID, moduleID, "complete-video",
		func(pc *CourseProgressionContext) (*Outcome, error) {
			return pc.CompleteVideo(moduleID)
		})
}

// SubmitQuiz grades and records a module quiz.
func (s *Service) SubmitQuiz(ctx context.Context, learnerID, courseID, moduleID string, answers []quiz.AnswerSet) (*Outcome, error) {
	return s.run(ctx, learnerID, courseID, moduleID, "submit-quiz",
		func(pc *CourseProgressionContext) (*Outcome, error) {
			return pc.SubmitQuiz(moduleID, answers)
		})
}

// SubmitProject records a module's project submission.
func (s *Service) SubmitProject(ctx context.Context, learnerID, courseID, moduleID, deployedLink, githubLink string) (*Outcome, error) {
	return s.run(ctx, learnerID, courseID, moduleID, "submit-project",
		func(pc *CourseProgressionContext) (*Outcome, error) {
			return pc.SubmitProject(moduleID, deployedLink, githubLink)
		})
}

func (s *Service) run(ctx context.Context, learnerID, courseID, moduleID, op string,
	fn func(*CourseProgressionContext) (*Outcome, error)) (*Outcome, error) {
	log := s.logger.With(
		zap.String("op", op),
		zap.String("learner", learnerID),
		zap.String("course", courseID),
		zap.String("module", moduleID))

	pc, err := s.Load(ctx, learnerID, courseID)
	if err != nil {
		return nil, err
	}

	out, err := fn(pc)
	if err != nil {
		log.Debug("operation rejected", zap.Error(err))
		return nil, err
	}
	if len(out.Changed) == 0 {
		log.Debug("no change")
		return out, nil
	}

	records := make([]store.ModuleProgressRecord, 0, len(out.Changed))
	for _, m := range out.Changed {
		records = append(records, toRecord(learnerID, courseID, m))
	}
	if err := s.repo.Apply(ctx, records, toEvents(learnerID, courseID, out.Transitions)); err != nil {
		log.Error("persist progress failed", zap.Error(err))
		return nil, fmt.Errorf("save progress: %w", err)
	}

	for _, t := range out.Transitions {
		fields := []zap.Field{
			zap.String("target", t.ModuleID),
			zap.String("from", string(t.From)),
			zap.String("to", string(t.To)),
			zap.String("trigger", t.Trigger),
		}
		if t.QuizScore != nil {
			fields = append(fields, zap.Int("quiz_score", *t.QuizScore))
		}
		log.Info("transition", fields...)
	}
	return out, nil
}
