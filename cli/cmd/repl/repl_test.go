package repl

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/cmf/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	s := testSession(t)
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(context.Background(), s, h, log.Make(io.Discard))
}

func submit(m model, line string) model {
	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	return m
}

func TestModel_Submit(t *testing.T) {
	m := testModel(t)
	m = submit(m, `cases = sum("Cases")`)

	if got := m.session.names(); !slices.Equal(got, []string{"country", "cases"}) {
		t.Errorf("names() = %v", got)
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	if m.history.Len() != 1 || m.historyIdx != 1 {
		t.Errorf("history len = %d, idx = %d", m.history.Len(), m.historyIdx)
	}
}

func TestModel_SwitchMode(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("region")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after Esc: mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeEval || m.input.Value() != "region" {
		t.Errorf("after second Esc: mode = %v, input = %q", m.mode, m.input.Value())
	}
}

func TestModel_Recall(t *testing.T) {
	m := testModel(t)
	m = submit(m, `a = "A"`)

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	m = submit(m, "vars")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.mode != modeCtrl || m.input.Value() != "vars" {
		t.Fatalf("Up: mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	if m.mode != modeEval || m.input.Value() != `a = "A"` {
		t.Fatalf("Up: mode = %v, input = %q", m.mode, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftDown})
	if m.historyIdx != m.history.Len() || m.input.Value() != "" {
		t.Errorf("Shift+Down past last eval entry: idx = %d, input = %q", m.historyIdx, m.input.Value())
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyShiftUp})
	if m.mode != modeEval || m.input.Value() != `a = "A"` {
		t.Errorf("Shift+Up: mode = %v, input = %q", m.mode, m.input.Value())
	}
}

func TestModel_Complete(t *testing.T) {
	m := testModel(t)
	m.input.SetValue("cou")
	m.input.SetCursor(3)
	m.refresh(false)

	if len(m.matches) == 0 || m.matches[0].Str != "country" {
		t.Fatalf("matches = %v", m.matches)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	if m.input.Value() != "country" {
		t.Errorf("Tab: input = %q", m.input.Value())
	}
}
