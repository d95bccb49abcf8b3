package listbrowser

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/theme"
)

// ListEntry wraps a model.List so it can be used in a bubbles/list.
type ListEntry struct {
	List    model.List
	OwnedBy string
	Mine    bool
}

// FilterValue returns the string used for fuzzy filtering.
func (e ListEntry) FilterValue() string { return e.List.Name }

// Title returns the list name.
func (e ListEntry) Title() string { return e.List.Name }

// Description returns a short summary line.
func (e ListEntry) Description() string { return e.OwnedBy }

// entryDelegate implements list.ItemDelegate for rendering list rows.
type entryDelegate struct{}

// Height returns the number of lines each row takes.
func (d entryDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between rows.
func (d entryDelegate) Spacing() int { return 0 }

// Update handles per-row messages.
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single row.
func (d entryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(ListEntry)
	if !ok {
		return
	}

	privacyBadge := ""
	if entry.List.Private {
		privacyBadge = lipgloss.NewStyle().
			Foreground(theme.ColorMagenta).
			Render(" [private]")
	}

	owner := ""
	if !entry.Mine && entry.OwnedBy != "" {
		owner = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Render("  " + entry.OwnedBy)
	}

	line := fmt.Sprintf("%s%s%s", entry.List.Name, privacyBadge, owner)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
