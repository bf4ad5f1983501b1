package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens"
	"github.com/abhisek/prepwise/internal/screens/history"
	"github.com/abhisek/prepwise/internal/screens/setup"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

type latestMsg struct {
	Result *store.AssessmentResultRecord
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps   screens.Deps
	menu   components.Menu
	latest *store.AssessmentResultRecord
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.StatusProvider = (*HomeScreen)(nil)

func New(deps screens.Deps) *HomeScreen {
	items := []components.MenuItem{
		{Label: "Start assessment", Hint: "timed, three sections", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: setup.New(deps)} }
		}},
		{Label: "History", Disabled: deps.Results == nil, Action: func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: history.New(deps.Results, deps.Learner)} }
		}},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	}
	return &HomeScreen{deps: deps, menu: components.NewMenu(items)}
}

// Init loads the most recent result for the summary line.
func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Results == nil {
		return nil
	}
	repo, learner := h.deps.Results, h.deps.Learner
	return func() tea.Msg {
		recs, err := repo.ListResults(context.Background(), learner, store.QueryOpts{Limit: 1})
		if err != nil || len(recs) == 0 {
			return latestMsg{}
		}
		return latestMsg{Result: &recs[0]}
	}
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Status() string {
	return h.deps.Learner + "  "
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(latestMsg); ok {
		h.latest = m.Result
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("Interview readiness, one timed round at a time."))
	b.WriteString("\n\n")

	if r := h.latest; r != nil {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Last assessment: %s, %s. ", r.Company, r.Timestamp.Local().Format("Jan 02"))))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ScoreColor(r.Overall)).Bold(true).
			Render(fmt.Sprintf("%d/100 %s", r.Overall, r.Band)))
		b.WriteString("\n\n")
	}

	b.WriteString(h.menu.View())
	return lipgloss.NewStyle().Width(width).PaddingLeft(4).Render(b.String())
}
