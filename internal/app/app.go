// Package app is the root Bubble Tea model for the assessment TUI.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens"
	"github.com/abhisek/prepwise/internal/screens/assess"
	"github.com/abhisek/prepwise/internal/screens/home"
	"github.com/abhisek/prepwise/internal/ui/layout"
)

// Options start the TUI directly in an assessment when Level is set.
type Options struct {
	Role    string
	Company string
	Level   string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
	start  tea.Cmd
}

// newAppModel builds the screen stack. With a level in opts the session
// is started up front and its screen pushed over home.
func newAppModel(deps screens.Deps, opts Options) (AppModel, error) {
	root := home.New(deps)
	m := AppModel{router: router.New(root), start: root.Init()}
	if opts.Level == "" {
		return m, nil
	}

	sess, err := deps.Manager.StartAssessment(context.Background(), deps.Learner, opts.Role, opts.Company, opts.Level)
	if err != nil {
		return AppModel{}, err
	}
	m.start = tea.Batch(m.start, m.router.Push(assess.New(deps, sess)))
	return m, nil
}

func (m AppModel) Init() tea.Cmd {
	return m.start
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bi, ok := m.router.Active().(screen.BackInterceptor); ok && bi.InterceptBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(deps screens.Deps, opts Options, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := newAppModel(deps, opts)
	if err != nil {
		return fmt.Errorf("start assessment: %w", err)
	}
	log.Debug("tui starting", zap.String("learner", deps.Learner), zap.Bool("direct", opts.Level != ""))
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
