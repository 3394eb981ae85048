package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apisbr/apisbr/pkg/integrations"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// errPickCancelled is returned when the user quits the picker.
var errPickCancelled = errors.New("selection cancelled")

// choice is one similar result offered by the picker.
type choice struct {
	Name string
	ID   string
}

// MatchListModel is the bubbletea model for choosing among the similar
// results of a failed lookup.
type MatchListModel struct {
	Query    string
	Choices  []choice
	Cursor   int
	Offset   int
	Height   int
	Selected *choice
}

// NewMatchListModel creates a picker for the suggestions of err.
func NewMatchListModel(err *integrations.NoMatchError) MatchListModel {
	names := err.Names()
	choices := make([]choice, len(names))
	for i, name := range names {
		choices[i] = choice{Name: name, ID: err.Similar[name]}
	}
	return MatchListModel{Query: err.Query, Choices: choices, Height: 15}
}

func (m MatchListModel) Init() tea.Cmd {
	return nil
}

func (m MatchListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Choices)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Choices) == 0 {
				return m, tea.Quit
			}
			selected := m.Choices[m.Cursor]
			m.Selected = &selected
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m MatchListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("No exact match for %q", m.Query)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Choices))
	for i := m.Offset; i < end; i++ {
		ch := m.Choices[i]
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(cursor+ch.Name) + "  " + listDimStyle.Render(ch.ID))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Choices))))
	return b.String()
}

// picker runs a selection UI and returns the chosen ID. It is a variable
// so tests can replace the terminal program.
var picker = func(ctx context.Context, err *integrations.NoMatchError) (string, error) {
	final, runErr := tea.NewProgram(NewMatchListModel(err), tea.WithContext(ctx)).Run()
	if runErr != nil {
		return "", runErr
	}
	m, ok := final.(MatchListModel)
	if !ok || m.Selected == nil {
		return "", errPickCancelled
	}
	return m.Selected.ID, nil
}

// resolve passes through the result of a lookup, except that with
// --interactive a NoMatchError with suggestions lets the user pick one.
func (c *CLI) resolve(ctx context.Context, id string, err error) (string, error) {
	var noMatch *integrations.NoMatchError
	if err == nil || !c.opts.interactive || !errors.As(err, &noMatch) || len(noMatch.Similar) == 0 {
		return id, err
	}
	picked, pickErr := picker(ctx, noMatch)
	if pickErr != nil {
		return "", pickErr
	}
	c.Logger.Debug("picked", "query", noMatch.Query, "id", picked)
	return picked, nil
}
