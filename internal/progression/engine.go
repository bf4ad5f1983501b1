package progression

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/prepwise/internal/quiz"
)

var (
	ErrModuleNotFound      = errors.New("module not found")
	ErrModuleLocked        = errors.New("module is locked")
	ErrStageNotReady       = errors.New("previous stage not completed")
	ErrAlreadySubmitted    = errors.New("already submitted")
	ErrQuizNotPassed       = errors.New("quiz score below pass threshold")
	ErrMissingDeployedLink = errors.New("deployed link is required")
)

// Outcome describes the effect of one stage operation.
type Outcome struct {
	// Module is the module the operation targeted, after the change.
	Module *Module

	// Changed lists every module whose progress changed, target first.
	// Empty for idempotent no-ops.
	Changed []*Module

	// Transitions lists the stage changes in the order they happened.
	Transitions []Transition

	// Grade is the quiz grading result (SubmitQuiz only).
	Grade *quiz.Result
}

// stageFunc mutates a working copy of a module's progress. It returns the
// transition trigger, or "" for an idempotent no-op.
type stageFunc func(m *Module, p *Progress) (trigger string, grade *quiz.Result, err error)

// CompleteTheory marks the theory stage done. Idempotent.
func (c *CourseProgressionContext) CompleteTheory(moduleID string) (*Outcome, error) {
	return c.apply(moduleID, func(_ *Module, p *Progress) (string, *quiz.Result, error) {
		if p.TheoryCompleted {
			return "", nil, nil
		}
		p.TheoryCompleted = true
		return TriggerTheory, nil, nil
	})
}

// CompleteVideo marks the video stage done. Requires theory. Idempotent.
func (c *CourseProgressionContext) CompleteVideo(moduleID string) (*Outcome, error) {
	return c.apply(moduleID, func(_ *Module, p *Progress) (string, *quiz.Result, error) {
		if !p.TheoryCompleted {
			return "", nil, fmt.Errorf("%w: theory", ErrStageNotReady)
		}
		if p.VideoCompleted {
			return "", nil, nil
		}
		p.VideoCompleted = true
		return TriggerVideo, nil, nil
	})
}

// SubmitQuiz grades the module quiz and records the score. Only one
// submission is accepted per module.
func (c *CourseProgressionContext) SubmitQuiz(moduleID string, answers []quiz.AnswerSet) (*Outcome, error) {
	return c.apply(moduleID, func(m *Module, p *Progress) (string, *quiz.Result, error) {
		if !p.VideoCompleted {
			return "", nil, fmt.Errorf("%w: video", ErrStageNotReady)
		}
		if p.QuizScore != nil {
			return "", nil, fmt.Errorf("%w: quiz scored %d", ErrAlreadySubmitted, *p.QuizScore)
		}
		res, err := quiz.Grade(m.Questions, answers)
		if err != nil {
			return "", nil, err
		}
		score := res.Score
		p.QuizScore = &score
		p.QuizAnswers = make([]quiz.AnswerSet, len(answers))
		for i, a := range answers {
			p.QuizAnswers[i] = a.Normalize()
		}
		return TriggerQuiz, res, nil
	})
}

// SubmitProject records the project links. The quiz must have been passed.
func (c *CourseProgressionContext) SubmitProject(moduleID, deployedLink, githubLink string) (*Outcome, error) {
	return c.apply(moduleID, func(_ *Module, p *Progress) (string, *quiz.Result, error) {
		if p.ProjectStatus == ProjectSubmitted {
			return "", nil, fmt.Errorf("%w: project", ErrAlreadySubmitted)
		}
		if p.QuizScore == nil {
			return "", nil, fmt.Errorf("%w: quiz", ErrStageNotReady)
		}
		if !quiz.Passed(*p.QuizScore) {
			return "", nil, fmt.Errorf("%w: scored %d, need %d", ErrQuizNotPassed, *p.QuizScore, quiz.PassThreshold)
		}
		deployedLink = strings.TrimSpace(deployedLink)
		if deployedLink == "" {
			return "", nil, ErrMissingDeployedLink
		}
		p.ProjectStatus = ProjectSubmitted
		p.DeployedLink = deployedLink
		p.GithubLink = strings.TrimSpace(githubLink)
		return TriggerProject, nil, nil
	})
}

// apply runs fn against a copy of the module's progress and commits the
// result, plus any completion and unlock, only if fn succeeds.
func (c *CourseProgressionContext) apply(moduleID string, fn stageFunc) (*Outcome, error) {
	idx, m, err := c.Module(moduleID)
	if err != nil {
		return nil, err
	}
	if m.Progress.Status == StatusLocked {
		return nil, fmt.Errorf("%w: %q", ErrModuleLocked, moduleID)
	}

	work := m.Progress.Clone()
	before := work.Stage()

	trigger, grade, err := fn(m, &work)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Module: m, Grade: grade}
	if trigger == "" {
		return out, nil
	}

	completing := work.Status != StatusCompleted && work.substagesDone()
	if completing {
		work.Status = StatusCompleted
	}
	// One edge per stage change; completion is the edge's target, not a second edge.
	t := Transition{ModuleID: m.ID, From: before, To: work.Stage(), Trigger: trigger}
	if trigger == TriggerQuiz {
		t.QuizScore = work.QuizScore
	}
	out.Transitions = append(out.Transitions, t)

	var next *Module
	var nextWork Progress
	if completing {
		if idx+1 < len(c.Course.Modules) {
			next = c.Course.Modules[idx+1]
			if next.Progress.Status == StatusLocked {
				nextWork = next.Progress.Clone()
				nextWork.Status = StatusUnlocked
				out.Transitions = append(out.Transitions, Transition{
					ModuleID: next.ID, From: StageLocked, To: nextWork.Stage(), Trigger: TriggerUnlock,
				})
			} else {
				next = nil
			}
		}
	}

	m.Progress = work
	out.Changed = append(out.Changed, m)
	if next != nil {
		next.Progress = nextWork
		out.Changed = append(out.Changed, next)
	}
	return out, nil
}
