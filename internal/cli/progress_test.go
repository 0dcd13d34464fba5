// ABOUTME: Tests for the install progress Bubble Tea model
// ABOUTME: Feeds state changes and outcomes directly through Update

package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mauromedda/featuremod-go/internal/module"
)

// Compile-time check: progressModel must satisfy tea.Model.
var _ tea.Model = progressModel{}

func TestProgressModel_QuitsWhenAllDone(t *testing.T) {
	m := newProgressModel([]module.Name{"a", "b"}, module.NewRegistry(), 80)

	updated, _ := m.Update(changeMsg{Name: "a", From: module.NotInstalled, To: module.Installing})
	m = updated.(progressModel)
	if m.rows["a"].state != module.Installing {
		t.Errorf("a state = %v; want Installing", m.rows["a"].state)
	}

	updated, cmd := m.Update(doneMsg{name: "a", ok: true})
	m = updated.(progressModel)
	if cmd != nil {
		t.Error("quit before all modules finished")
	}

	updated, cmd = m.Update(doneMsg{name: "b", ok: false, err: errors.New("network unreachable")})
	m = updated.(progressModel)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	got := m.outcomes()
	if len(got) != 2 || !got[0].ok || got[1].ok {
		t.Errorf("outcomes = %+v", got)
	}
}

func TestProgressModel_DuplicateDoneIgnored(t *testing.T) {
	m := newProgressModel([]module.Name{"a", "b"}, module.NewRegistry(), 80)

	updated, _ := m.Update(doneMsg{name: "a", ok: true})
	updated, _ = updated.Update(doneMsg{name: "a", ok: true})
	if p := updated.(progressModel).pending; p != 1 {
		t.Errorf("pending = %d; want 1", p)
	}
}

func TestProgressModel_View(t *testing.T) {
	reg := module.NewRegistry()
	reg.SetInstalled("done_mod")
	m := newProgressModel([]module.Name{"done_mod", "slow"}, reg, 80)

	updated, _ := m.Update(doneMsg{name: "done_mod", ok: true})
	view := updated.View()

	if !strings.Contains(view, "✓") {
		t.Errorf("View missing success mark; got %q", view)
	}
	if !strings.Contains(view, "slow") || !strings.Contains(view, "not_installed") {
		t.Errorf("View missing pending row; got %q", view)
	}
	if !strings.Contains(view, "1 of 2 pending") {
		t.Errorf("View missing pending footer; got %q", view)
	}
}

func TestProgressModel_CtrlCInterrupts(t *testing.T) {
	m := newProgressModel([]module.Name{"a"}, module.NewRegistry(), 80)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !updated.(progressModel).interrupted {
		t.Error("expected interrupted")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestPlainTable(t *testing.T) {
	t.Parallel()

	got := plainTable([]string{"A", "LONG"}, [][]string{{"xyz", "1"}, {"q", "22"}})
	want := "A    LONG\nxyz  1\nq    22\n"
	if got != want {
		t.Errorf("plainTable = %q; want %q", got, want)
	}
}
