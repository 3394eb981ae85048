package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/apisbr/apisbr/pkg/integrations"
)

func testNoMatch() *integrations.NoMatchError {
	return &integrations.NoMatchError{
		Query: "mossoro",
		Similar: map[string]string{
			"Mossoro - RN": "2408003",
			"Mossoro - SP": "3599999",
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMatchListModelSelect(t *testing.T) {
	var m tea.Model = NewMatchListModel(testNoMatch())

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down")) // stays on the last item
	m, cmd := m.Update(key("enter"))

	got := m.(MatchListModel)
	if got.Selected == nil {
		t.Fatal("Selected = nil after enter")
	}
	if got.Selected.ID != "3599999" {
		t.Errorf("Selected = %+v, want Mossoro - SP", got.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestMatchListModelQuit(t *testing.T) {
	var m tea.Model = NewMatchListModel(testNoMatch())
	m, cmd := m.Update(key("q"))

	if m.(MatchListModel).Selected != nil {
		t.Error("quit should not select")
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestMatchListModelView(t *testing.T) {
	view := NewMatchListModel(testNoMatch()).View()
	for _, want := range []string{"mossoro", "Mossoro - RN", "2408003", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() lacks %q", want)
		}
	}
}

func TestResolve(t *testing.T) {
	orig := picker
	t.Cleanup(func() { picker = orig })

	var offered *integrations.NoMatchError
	picker = func(_ context.Context, err *integrations.NoMatchError) (string, error) {
		offered = err
		return err.Similar["Mossoro - RN"], nil
	}

	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	if _, err := c.resolve(ctx, "", testNoMatch()); err == nil {
		t.Error("resolve without --interactive should return the error")
	}
	if offered != nil {
		t.Error("picker ran without --interactive")
	}

	c.opts.interactive = true
	id, err := c.resolve(ctx, "", testNoMatch())
	if err != nil || id != "2408003" {
		t.Errorf("resolve() = %q, %v; want 2408003", id, err)
	}

	plain := errors.New("network down")
	if _, err := c.resolve(ctx, "", plain); !errors.Is(err, plain) {
		t.Errorf("resolve() error = %v, want %v", err, plain)
	}

	if _, err := c.resolve(ctx, "", &integrations.NoMatchError{Query: "x"}); err == nil {
		t.Error("resolve() with no suggestions should return the error")
	}

	if id, err := c.resolve(ctx, "123", nil); err != nil || id != "123" {
		t.Errorf("resolve(ok) = %q, %v", id, err)
	}
}
