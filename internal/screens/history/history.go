package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/store"
	"github.com/abhisek/prepwise/internal/ui/layout"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

type historyLoadedMsg struct {
	Results []store.AssessmentResultRecord
	Err     error
}

// HistoryScreen lists a learner's past assessments.
type HistoryScreen struct {
	repo     store.ResultRepo
	learner  string
	results  []store.AssessmentResultRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen. repo may be nil when no store is open.
func New(repo store.ResultRepo, learner string) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		learner:  learner,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	if s.repo == nil {
		return func() tea.Msg { return historyLoadedMsg{} }
	}
	repo, learner := s.repo, s.learner
	return func() tea.Msg {
		results, err := repo.ListResults(context.Background(), learner, store.QueryOpts{Limit: 50})
		return historyLoadedMsg{Results: results, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.results = msg.Results
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render("\n\nError: " + s.errMsg)
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.results) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No assessments yet. Take one from the home screen.")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, r := range s.results {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		role := r.Role
		if role == "" {
			role = "Any role"
		}
		line := fmt.Sprintf("%s%s  %-20s %-12s %-7s overall %3d  alignment %3d  %s",
			prefix, r.Timestamp.Local().Format("Jan 02, 2006"), role, r.Company, r.Level,
			r.Overall, r.Alignment, r.Band)
		b.WriteString(style.Render(line))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, sec := range r.Sections {
				b.WriteString(lipgloss.NewStyle().Foreground(theme.ScoreColor(sec.Score)).Render(
					fmt.Sprintf("      %-16s %3d  (%d/%d, %.0fs avg)", sec.Section, sec.Score, sec.Correct, sec.Total, sec.AvgSeconds)))
				b.WriteString("\n")
			}
			if len(r.Weaknesses) > 0 {
				b.WriteString(theme.Hint.Render("      Needs work: " + strings.Join(r.Weaknesses, ", ")))
				b.WriteString("\n")
			}
		}
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(b.String())
}
