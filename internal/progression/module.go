package progression

import (
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/prepwise/internal/quiz"
)

// Progress is one learner's state for one module.
type Progress struct {
	Status          Status
	TheoryCompleted bool
	VideoCompleted  bool
	QuizScore       *int
	QuizAnswers     []quiz.AnswerSet
	ProjectStatus   ProjectStatus
	DeployedLink    string
	GithubLink      string
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	out := p
	if p.QuizScore != nil {
		score := *p.QuizScore
		out.QuizScore = &score
	}
	if p.QuizAnswers != nil {
		out.QuizAnswers = make([]quiz.AnswerSet, len(p.QuizAnswers))
		for i, a := range p.QuizAnswers {
			out.QuizAnswers[i] = append(quiz.AnswerSet(nil), a...)
		}
	}
	return out
}

// QuizPassed reports whether a quiz score exists and meets the pass threshold.
func (p Progress) QuizPassed() bool {
	return p.QuizScore != nil && quiz.Passed(*p.QuizScore)
}

// substagesDone reports whether all four stages are satisfied.
func (p Progress) substagesDone() bool {
	return p.TheoryCompleted && p.VideoCompleted && p.QuizScore != nil && p.ProjectStatus == ProjectSubmitted
}

// Stage returns the stage the learner can currently interact with.
func (p Progress) Stage() Stage {
	switch {
	case p.Status == StatusLocked:
		return StageLocked
	case p.Status == StatusCompleted:
		return StageCompleted
	case !p.TheoryCompleted:
		return StageTheory
	case !p.VideoCompleted:
		return StageVideo
	case p.QuizScore == nil:
		return StageQuiz
	case p.ProjectStatus != ProjectSubmitted:
		return StageProject
	}
	return StageCompleted
}

// Module is a unit of course content with four gated stages.
type Module struct {
	ID            string
	Title         string
	OrderIndex    int
	EstimatedTime time.Duration
	Summary       string
	VideoURL      string
	Questions     []quiz.Question
	Progress      Progress
}

// Course is an ordered set of modules.
type Course struct {
	ID      string
	Title   string
	Modules []*Module
}

// CourseProgressionContext carries a learner's full progression state for
// one course. Every operation takes it explicitly; nothing is ambient.
type CourseProgressionContext struct {
	LearnerID string
	Course    *Course
}

// NewContext creates a context with modules ordered by OrderIndex.
func NewContext(learnerID string, course *Course) (*CourseProgressionContext, error) {
	if course == nil {
		return nil, fmt.Errorf("nil course")
	}
	sort.SliceStable(course.Modules, func(i, j int) bool {
		return course.Modules[i].OrderIndex < course.Modules[j].OrderIndex
	})
	for i := 1; i < len(course.Modules); i++ {
		if course.Modules[i].OrderIndex == course.Modules[i-1].OrderIndex {
			return nil, fmt.Errorf("course %q: duplicate order index %d", course.ID, course.Modules[i].OrderIndex)
		}
	}
	return &CourseProgressionContext{LearnerID: learnerID, Course: course}, nil
}

// InitialProgress sets every module to its enrollment state: the first
// module unlocked, the rest locked, nothing completed.
func InitialProgress(course *Course) {
	for i, m := range course.Modules {
		m.Progress = Progress{Status: StatusLocked, ProjectStatus: ProjectNone}
		if i == 0 {
			m.Progress.Status = StatusUnlocked
		}
	}
}

// Module finds a module by id and returns its position.
func (c *CourseProgressionContext) Module(moduleID string) (int, *Module, error) {
	for i, m := range c.Course.Modules {
		if m.ID == moduleID {
			return i, m, nil
		}
	}
	return -1, nil, fmt.Errorf("%w: %q in course %q", ErrModuleNotFound, moduleID, c.Course.ID)
}

// CheckInvariants verifies the lock and stage-ordering invariants across the
// course.
func (c *CourseProgressionContext) CheckInvariants() error {
	for i, m := range c.Course.Modules {
		p := m.Progress
		prevDone := i == 0 || c.Course.Modules[i-1].Progress.Status == StatusCompleted
		if (p.Status == StatusLocked) == prevDone {
			return fmt.Errorf("module %q: status %s with previous completed=%v", m.ID, p.Status, prevDone)
		}
		if p.VideoCompleted && !p.TheoryCompleted {
			return fmt.Errorf("module %q: video completed before theory", m.ID)
		}
		if p.QuizScore != nil && !p.VideoCompleted {
			return fmt.Errorf("module %q: quiz scored before video", m.ID)
		}
		if p.ProjectStatus == ProjectSubmitted && !p.QuizPassed() {
			return fmt.Errorf("module %q: project submitted without passing quiz", m.ID)
		}
		if p.Status == StatusCompleted && !p.substagesDone() {
			return fmt.Errorf("module %q: completed with unfinished stages", m.ID)
		}
	}
	return nil
}
