package assess

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/ui/components"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

func (s *AssessScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString(theme.Incorrect.Render("Error: " + s.errMsg))
		b.WriteString("\n\n")
	}

	if s.question == nil {
		b.WriteString(theme.Hint.Render("Scoring your assessment..."))
		return pad(b.String())
	}

	q := s.question
	limit := q.Limit()
	bar := components.NewProgressBar(string(q.Section), float64(s.remaining)/float64(limit), min(width-4, 60))
	bar.Suffix = fmt.Sprintf("%ds", s.remaining)
	bar.Fill = timerColor(s.remaining, limit)
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Width(max(width-6, 20)).Render(q.Prompt))
	b.WriteString("\n")
	if q.MultiSelect() {
		b.WriteString(theme.Hint.Render("Select all that apply."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.choices.View())

	if s.last != nil {
		b.WriteString("\n")
		switch {
		case s.timedOut:
			b.WriteString(theme.Incorrect.Render("Previous question timed out."))
		case s.last.Correct:
			b.WriteString(theme.Correct.Render("Previous answer: correct"))
		default:
			b.WriteString(theme.Incorrect.Render("Previous answer: incorrect"))
		}
		b.WriteString("\n")
	}

	if s.confirmQuit {
		b.WriteString("\n")
		b.WriteString(theme.Card.BorderForeground(theme.Error).Render(
			"Abandon this assessment? Answers so far will not be scored.  (y/n)"))
	}

	return pad(b.String())
}

func timerColor(remaining, limit int) color.Color {
	switch {
	case remaining*4 <= limit:
		return theme.Error
	case remaining*2 <= limit:
		return theme.Accent
	}
	return theme.Secondary
}

func pad(s string) string {
	return lipgloss.NewStyle().PaddingLeft(2).Render(s)
}
