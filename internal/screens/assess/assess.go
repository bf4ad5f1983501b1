// Package assess runs a timed assessment session in the TUI.
package assess

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens"
	"github.com/abhisek/prepwise/internal/screens/results"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/layout"
)

// AssessScreen shows one question at a time with a countdown.
type AssessScreen struct {
	deps    screens.Deps
	session *assessment.Session

	question  *assessment.Question
	index     int
	remaining int
	choices   components.MultiSelect

	// last is the outcome of the previous question, shown briefly.
	last     *assessment.Response
	timedOut bool

	confirmQuit bool
	finished    bool
	errMsg      string
}

var _ screen.Screen = (*AssessScreen)(nil)
var _ screen.KeyHintProvider = (*AssessScreen)(nil)
var _ screen.StatusProvider = (*AssessScreen)(nil)
var _ screen.BackInterceptor = (*AssessScreen)(nil)

// New creates the screen for a session returned by StartAssessment.
func New(deps screens.Deps, session *assessment.Session) *AssessScreen {
	s := &AssessScreen{deps: deps, session: session, remaining: session.Remaining}
	s.setQuestion(session.Current(), len(session.Responses))
	return s
}

func (s *AssessScreen) Init() tea.Cmd {
	if s.question == nil {
		s.finished = true
		return s.fetchResults()
	}
	return tickCmd(s.question.ID)
}

func (s *AssessScreen) Title() string {
	return "Assessment"
}

// Status shows the countdown and position in the header.
func (s *AssessScreen) Status() string {
	if s.question == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d  ⏱ %d:%02d  ", s.index+1, len(s.session.Questions), s.remaining/60, s.remaining%60)
}

func (s *AssessScreen) InterceptBack() bool {
	return !s.finished
}

func (s *AssessScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "y", Description: "Abandon"},
			{Key: "n", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Move"},
		{Key: "Space/1-9", Description: "Toggle"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *AssessScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTick(msg)
	case resultsReadyMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		next := results.New(s.deps, msg.Result, s.session.Company)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *AssessScreen) handleTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if s.finished || s.question == nil || msg.QuestionID != s.question.ID {
		return s, nil
	}
	adv, err := s.deps.Manager.Tick(context.Background(), s.session.ID, msg.QuestionID)
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	return s, s.apply(adv)
}

func (s *AssessScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y":
			s.finished = true
			if err := s.deps.Manager.Abandon(context.Background(), s.session.ID); err != nil {
				s.errMsg = err.Error()
			}
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "enter":
		adv, err := s.deps.Manager.AnswerQuestion(context.Background(), s.session.ID, s.question.ID, s.choices.Selected())
		if err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		return s, s.apply(adv)
	}

	var cmd tea.Cmd
	s.choices, cmd = s.choices.Update(msg)
	return s, cmd
}

// apply moves the screen to the state reported by the manager and
// schedules what comes next.
func (s *AssessScreen) apply(adv *assessment.Advance) tea.Cmd {
	s.remaining = adv.Remaining
	if adv.Recorded == nil {
		return tickCmd(s.question.ID)
	}

	rec := *adv.Recorded
	s.last = &rec
	s.timedOut = adv.TimedOut
	if adv.Complete {
		s.finished = true
		s.question = nil
		return s.fetchResults()
	}
	s.setQuestion(adv.Question, adv.Index)
	return tickCmd(s.question.ID)
}

func (s *AssessScreen) setQuestion(q *assessment.Question, index int) {
	s.question = q
	s.index = index
	if q != nil {
		s.choices = components.NewMultiSelect(q.Options, !q.MultiSelect())
	}
}

func (s *AssessScreen) fetchResults() tea.Cmd {
	m, id := s.deps.Manager, s.session.ID
	return func() tea.Msg {
		r, err := m.GetResults(context.Background(), id)
		return resultsReadyMsg{Result: r, Err: err}
	}
}

func tickCmd(questionID string) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{QuestionID: questionID}
	})
}
