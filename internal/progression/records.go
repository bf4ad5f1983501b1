package progression

import (
	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/store"
)

// toRecord converts a module's progress to its persisted form.
func toRecord(learnerID, courseID string, m *Module) store.ModuleProgressRecord {
	p := m.Progress
	rec := store.ModuleProgressRecord{
		LearnerID:       learnerID,
		CourseID:        courseID,
		ModuleID:        m.ID,
		Status:          string(p.Status),
		TheoryCompleted: p.TheoryCompleted,
		VideoCompleted:  p.VideoCompleted,
		ProjectStatus:   string(p.ProjectStatus),
		DeployedLink:    p.DeployedLink,
		GithubLink:      p.GithubLink,
	}
	if p.QuizScore != nil {
		score := *p.QuizScore
		rec.QuizScore = &score
	}
	if p.QuizAnswers != nil {
		rec.QuizAnswers = make([][]int, len(p.QuizAnswers))
		for i, a := range p.QuizAnswers {
			rec.QuizAnswers[i] = append([]int{}, a...)
		}
	}
	return rec
}

// fromRecord restores progress from its persisted form.
func fromRecord(rec store.ModuleProgressRecord) Progress {
	p := Progress{
		Status:          Status(rec.Status),
		TheoryCompleted: rec.TheoryCompleted,
		VideoCompleted:  rec.VideoCompleted,
		QuizScore:       rec.QuizScore,
		ProjectStatus:   ProjectStatus(rec.ProjectStatus),
		DeployedLink:    rec.DeployedLink,
		GithubLink:      rec.GithubLink,
	}
	if p.ProjectStatus == "" {
		p.ProjectStatus = ProjectNone
	}
	if rec.QuizAnswers != nil {
		p.QuizAnswers = make([]quiz.AnswerSet, len(rec.QuizAnswers))
		for i, a := range rec.QuizAnswers {
			p.QuizAnswers[i] = quiz.AnswerSet(a)
		}
	}
	return p
}

// toEvents converts transitions to progression events.
func toEvents(learnerID, courseID string, ts []Transition) []store.ProgressEventData {
	out := make([]store.ProgressEventData, 0, len(ts))
	for _, t := range ts {
		out = append(out, store.ProgressEventData{
			LearnerID: learnerID,
			CourseID:  courseID,
			ModuleID:  t.ModuleID,
			Trigger:   t.Trigger,
			From:      string(t.From),
			To:        string(t.To),
			QuizScore: t.QuizScore,
		})
	}
	return out
}
