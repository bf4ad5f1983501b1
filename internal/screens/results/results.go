// Package results shows a scored assessment: the section heatmap, the
// overall and alignment scores and, when an LLM is configured, a debrief.
package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/coach"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens"
	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/layout"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

type debriefMsg struct {
	Debrief *coach.Debrief
	Err     error
}

// ResultsScreen renders one result.
type ResultsScreen struct {
	deps    screens.Deps
	result  *assessment.Result
	company assessment.CompanyProfile

	debrief    *coach.Debrief
	debriefErr string
	loading    bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a results screen. company is the profile the session ran
// against and is only used for the debrief prompt.
func New(deps screens.Deps, result *assessment.Result, company assessment.CompanyProfile) *ResultsScreen {
	return &ResultsScreen{
		deps:    deps,
		result:  result,
		company: company,
		loading: deps.Coach != nil,
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	if s.deps.Coach == nil {
		return nil
	}
	c, in := s.deps.Coach, coach.Input{
		Result:  s.result,
		Company: s.company,
		Courses: s.deps.CourseTitles(),
	}
	return func() tea.Msg {
		d, err := c.Debrief(context.Background(), in)
		return debriefMsg{Debrief: d, Err: err}
	}
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case debriefMsg:
		s.loading = false
		if msg.Err != nil {
			s.debriefErr = msg.Err.Error()
		} else {
			s.debrief = msg.Debrief
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	r := s.result
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Render(fmt.Sprintf("%s · %s · %s", or(r.Role, "Any role"), r.Company, r.Level)))
	b.WriteString("\n\n")

	barWidth := min(width-4, 70)
	for _, sec := range r.Sections {
		bar := components.NewProgressBar(fmt.Sprintf("%-16s", sec.Section), float64(sec.Score)/100, barWidth)
		bar.Fill = theme.ScoreColor(sec.Score)
		bar.Suffix = fmt.Sprintf("%3d  %d/%d  %4.0fs  ×%.2f", sec.Score, sec.Correct, sec.Total, sec.AvgSeconds, sec.Weight)
		b.WriteString(bar.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	score := func(label string, v int) string {
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render(label) + " " +
			lipgloss.NewStyle().Foreground(theme.ScoreColor(v)).Bold(true).Render(fmt.Sprintf("%d/100", v))
	}
	b.WriteString(score("Overall", r.Overall) + "    " + score("Alignment", r.Alignment) + "    " +
		theme.Body.Render("Band: "+string(r.Band)))
	b.WriteString("\n\n")

	writeList(&b, "Strengths", r.Strengths, theme.Correct)
	writeList(&b, "Needs work", r.Weaknesses, theme.Incorrect)

	switch {
	case s.loading:
		b.WriteString(theme.Hint.Render("Preparing your study plan..."))
	case s.debriefErr != "":
		b.WriteString(theme.Hint.Render("Study plan unavailable: " + s.debriefErr))
	case s.debrief != nil:
		b.WriteString(renderDebrief(s.debrief, width))
	}

	return lipgloss.NewStyle().PaddingLeft(2).Render(b.String())
}

func writeList(b *strings.Builder, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString(theme.Body.Bold(true).Render(title))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(style.Render("  • " + it))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func renderDebrief(d *coach.Debrief, width int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Width(max(width-8, 20)).Render(d.Summary))
	b.WriteString("\n")
	if len(d.FocusAreas) > 0 {
		b.WriteString("\n" + theme.Body.Bold(true).Render("Focus areas") + "\n")
		for _, f := range d.FocusAreas {
			b.WriteString("  • " + f + "\n")
		}
	}
	if len(d.StudyPlan) > 0 {
		b.WriteString("\n" + theme.Body.Bold(true).Render("Study plan") + "\n")
		for i, st := range d.StudyPlan {
			fmt.Fprintf(&b, "  %d. %s: %s\n", i+1, st.Topic, st.Action)
		}
	}
	return theme.Card.Render(b.String())
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
