package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/prepwise/internal/quiz"
	"github.com/abhisek/prepwise/internal/ui/theme"
)

// MultiSelect lets the learner mark any number of options. Questions with
// a single correct answer behave as radio buttons.
type MultiSelect struct {
	Options []string
	Cursor  int
	Single  bool
	marked  map[int]bool
}

func NewMultiSelect(options []string, single bool) MultiSelect {
	return MultiSelect{Options: options, Single: single, marked: make(map[int]bool)}
}

// Update moves the cursor and toggles marks. Digits toggle the matching
// option directly.
func (m MultiSelect) Update(msg tea.Msg) (MultiSelect, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "space", " ", "x":
		m.toggle(m.Cursor)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.Options) {
				m.Cursor = i
				m.toggle(i)
			}
		}
	}
	return m, nil
}

func (m *MultiSelect) toggle(i int) {
	if m.marked == nil {
		m.marked = make(map[int]bool)
	}
	was := m.marked[i]
	if m.Single {
		clear(m.marked)
	}
	m.marked[i] = !was
}

// Selected returns the marked option indexes in ascending order.
func (m MultiSelect) Selected() quiz.AnswerSet {
	var out quiz.AnswerSet
	for i := range m.Options {
		if m.marked[i] {
			out = append(out, i)
		}
	}
	return out
}

func (m MultiSelect) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		box := "[ ]"
		if m.Single {
			box = "( )"
		}
		if m.marked[i] {
			box = "[x]"
			if m.Single {
				box = "(•)"
			}
		}
		prefix := "  "
		style := theme.Unselected
		if i == m.Cursor {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d. %s %s", prefix, i+1, box, opt)))
		b.WriteString("\n")
	}
	return b.String()
}

// Review renders the options after grading: correct options in green and
// wrongly marked ones in red.
func (m MultiSelect) Review(correct quiz.AnswerSet) string {
	var b strings.Builder
	for i, opt := range m.Options {
		line := fmt.Sprintf("  %d. %s", i+1, opt)
		switch {
		case correct.Contains(i):
			b.WriteString(theme.Correct.Render(line + "  ✓"))
		case m.marked[i]:
			b.WriteString(theme.Incorrect.Render(line + "  ✗"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
