package setup

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/catalog"
	"github.com/abhisek/prepwise/internal/router"
	"github.com/abhisek/prepwise/internal/screen"
	"github.com/abhisek/prepwise/internal/screens"
	"github.com/abhisek/prepwise/internal/screens/assess"
)

func newSetup(t *testing.T) *SetupScreen {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return New(screens.Deps{Manager: assessment.NewManager(cat), Catalog: cat, Learner: "ana"})
}

// press sends a key and feeds any resulting message back, as the router would.
func press(t *testing.T, s screen.Screen, k tea.KeyPressMsg) tea.Msg {
	t.Helper()
	_, cmd := s.Update(k)
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if picked, ok := msg.(pickedMsg); ok {
		_, cmd = s.Update(picked)
		if cmd == nil {
			return nil
		}
		return cmd()
	}
	return msg
}

func TestSetupFlowStartsAssessment(t *testing.T) {
	s := newSetup(t)
	enter := tea.KeyPressMsg{Code: tea.KeyEnter}

	press(t, s, enter) // any role
	if s.step != stepCompany || s.role != "" {
		t.Fatalf("step = %d role = %q", s.step, s.role)
	}
	press(t, s, enter) // first company
	if s.step != stepLevel {
		t.Fatalf("step = %d, want level", s.step)
	}

	msg := press(t, s, enter)
	replace, ok := msg.(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("got %T, want ReplaceScreenMsg (err %q)", msg, s.errMsg)
	}
	if _, ok := replace.Screen.(*assess.AssessScreen); !ok {
		t.Errorf("screen = %T", replace.Screen)
	}
}

func TestSetupCustomCompany(t *testing.T) {
	s := newSetup(t)
	enter := tea.KeyPressMsg{Code: tea.KeyEnter}
	down := tea.KeyPressMsg{Code: tea.KeyDown}

	press(t, s, enter)
	for range s.menu.Items {
		s.Update(down)
	}
	press(t, s, enter)
	if s.step != stepCustomCompany {
		t.Fatalf("step = %d, want custom company", s.step)
	}

	for _, r := range "Zerodha" {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	s.Update(enter)
	if s.company != "Zerodha" || s.step != stepLevel {
		t.Errorf("company = %q step = %d", s.company, s.step)
	}
}

func TestSetupRolePick(t *testing.T) {
	s := newSetup(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	press(t, s, tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.role == "" {
		t.Error("expected a named role")
	}
}
