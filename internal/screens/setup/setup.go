// Package setup collects the role, company and experience level for a new
// assessment and starts it.
package setup

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens"
	"github.com/abhisek/prepwise/internal/screens/assess"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/layout"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

type step int

const (
	stepRole step = iota
	stepCompany
	stepCustomCompany
	stepLevel
)

// AnyRole skips skill prioritisation.
const AnyRole = "Any role"

const otherCompany = "Other..."

type pickedMsg struct {
	step  step
	value string
}

// SetupScreen walks through the assessment options.
type SetupScreen struct {
	deps screens.Deps
	step step

	role    string
	company string

	menu   components.Menu
	custom components.TextInput
	errMsg string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

func New(deps screens.Deps) *SetupScreen {
	s := &SetupScreen{deps: deps}
	s.enter(stepRole)
	return s
}

func (s *SetupScreen) Init() tea.Cmd {
	return nil
}

func (s *SetupScreen) Title() string {
	return "New Assessment"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.step == stepCustomCompany {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) enter(st step) {
	s.step = st
	switch st {
	case stepRole:
		s.menu = s.options(st, append([]string{AnyRole}, s.deps.Catalog.Roles()...), nil)
	case stepCompany:
		s.menu = s.options(st, append(s.deps.Catalog.Companies(), otherCompany), nil)
	case stepCustomCompany:
		s.custom = components.NewTextInput("Company name", 60)
	case stepLevel:
		var ids, hints []string
		for _, l := range s.deps.Catalog.Levels() {
			ids = append(ids, l.ID)
			hints = append(hints, fmt.Sprintf("%s (%s years)", l.Label, l.Years))
		}
		s.menu = s.options(st, ids, hints)
	}
}

// options builds a menu whose items report their value. labels, when set,
// replace the labels shown.
func (s *SetupScreen) options(st step, values, labels []string) components.Menu {
	items := make([]components.MenuItem, len(values))
	for i, v := range values {
		label := v
		if labels != nil {
			label = labels[i]
		}
		items[i] = components.MenuItem{Label: label, Action: func() tea.Cmd {
			return func() tea.Msg { return pickedMsg{step: st, value: v} }
		}}
	}
	return components.NewMenu(items)
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case pickedMsg:
		return s.pick(msg)
	case tea.KeyPressMsg:
		if s.step == stepCustomCompany {
			if msg.String() == "enter" {
				return s.pick(pickedMsg{step: stepCustomCompany, value: s.custom.Value()})
			}
			var cmd tea.Cmd
			s.custom, cmd = s.custom.Update(msg)
			return s, cmd
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SetupScreen) pick(msg pickedMsg) (screen.Screen, tea.Cmd) {
	if msg.step != s.step {
		return s, nil
	}
	switch msg.step {
	case stepRole:
		s.role = msg.value
		if s.role == AnyRole {
			s.role = ""
		}
		s.enter(stepCompany)
	case stepCompany:
		if msg.value == otherCompany {
			s.enter(stepCustomCompany)
			return s, nil
		}
		s.company = msg.value
		s.enter(stepLevel)
	case stepCustomCompany:
		s.company = msg.value
		s.enter(stepLevel)
	case stepLevel:
		sess, err := s.deps.Manager.StartAssessment(context.Background(), s.deps.Learner, s.role, s.company, msg.value)
		if err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		next := assess.New(s.deps, sess)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	}
	return s, nil
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	prompts := map[step]string{
		stepRole:          "Which role are you preparing for?",
		stepCompany:       "Which company are you targeting?",
		stepCustomCompany: "Enter the company name:",
		stepLevel:         "What is your experience level?",
	}
	b.WriteString(theme.Title.Render(prompts[s.step]))
	b.WriteString("\n\n")

	if s.step == stepCustomCompany {
		b.WriteString("  " + s.custom.View())
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("  Unknown companies get a neutral profile."))
	} else {
		b.WriteString(s.menu.View())
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render("  " + s.errMsg))
	}
	return "  " + strings.ReplaceAll(b.String(), "\n", "\n  ")
}
