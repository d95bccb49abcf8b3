// Package uselist implements the opened-checklist view: the items of
// checked categories, grouped by category, with their per-list state
// editable in place.
package uselist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/tvo/listkeeper/internal/keys"
	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/internal/theme"
	"github.com/tvo/listkeeper/internal/ui"
)

// LoadedMsg is sent when the checklist entries and warnings have been
// loaded from the store.
type LoadedMsg struct {
	Entries  []store.ListEntry
	Warnings []model.Category
	Err      error
}

// OpDoneMsg is sent after any write. The view reloads either way.
type OpDoneMsg struct {
	Err error
}

// BackMsg is sent when the user leaves the checklist view.
type BackMsg struct{}

// inputKind discriminates what the text input is collecting.
type inputKind int

const (
	inputNone inputKind = iota
	inputNumber
	inputText
)

// Model is the opened-checklist view component.
type Model struct {
	store  store.Store
	keys   *keys.KeyMap
	userID string
	list   model.List

	entries  []store.ListEntry
	warnings []model.Category
	cursor   int
	input    textinput.Model
	mode     inputKind
	errText  string
	width    int
	height   int
}

// New creates a new checklist model.
func New(s store.Store, k *keys.KeyMap, userID string, width, height int) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Width = width - 4

	return Model{
		store:  s,
		keys:   k,
		userID: userID,
		input:  ti,
		width:  width,
		height: height,
	}
}

// Open points the view at a list and loads its entries.
func (m *Model) Open(l model.List) tea.Cmd {
	m.list = l
	m.cursor = 0
	m.mode = inputNone
	m.errText = ""
	return m.load()
}

// Update handles messages for the checklist view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			m.errText = ui.FriendlyError(msg.Err)
			return m, nil
		}
		m.entries = msg.Entries
		m.warnings = msg.Warnings
		if m.cursor >= len(m.entries) {
			m.cursor = len(m.entries) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case OpDoneMsg:
		m.errText = ui.FriendlyError(msg.Err)
		return m, m.load()

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInputKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}
	return m, nil
}

// handleInputKeys processes key input while editing a payload.
func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.mode = inputNone
		return m.submitPayload(mode, value)

	case "esc":
		m.mode = inputNone
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keys.Toggle):
		return m, m.flipSelection()

	case key.Matches(msg, m.keys.Advance):
		return m, m.advanceType()

	case key.Matches(msg, m.keys.Number):
		return m.startInput(inputNumber, "number...")

	case key.Matches(msg, m.keys.Text):
		return m.startInput(inputText, "note...")
	}

	switch msg.String() {
	case "+":
		return m, m.addToNumber(decimal.NewFromInt(1))
	case "-":
		return m, m.addToNumber(decimal.NewFromInt(-1))
	}
	return m, nil
}

func (m Model) startInput(mode inputKind, placeholder string) (Model, tea.Cmd) {
	entry, ok := m.current()
	if !ok {
		return m, nil
	}
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	if mode == inputNumber {
		m.input.SetValue(entry.State.Number.String())
	} else {
		m.input.SetValue(entry.State.Text)
	}
	return m, m.input.Focus()
}

// submitPayload dispatches the collected value to the right setter.
func (m Model) submitPayload(mode inputKind, value string) (Model, tea.Cmd) {
	entry, ok := m.current()
	if !ok {
		return m, nil
	}
	s := m.store
	userID := m.userID
	listID := m.list.ID
	itemID := entry.Item.ID
	version := entry.State.Version

	if mode == inputNumber {
		number, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			m.errText = fmt.Sprintf("%q is not a number", value)
			return m, nil
		}
		return m, func() tea.Msg {
			_, err := s.SetListItemNumber(context.Background(), userID, listID, itemID, version, number, decimal.Zero)
			return OpDoneMsg{Err: err}
		}
	}

	return m, func() tea.Msg {
		_, err := s.SetListItemText(context.Background(), userID, listID, itemID, version, value)
		return OpDoneMsg{Err: err}
	}
}

// flipSelection toggles the boolean payload of the current entry.
func (m Model) flipSelection() tea.Cmd {
	entry, ok := m.current()
	if !ok {
		return nil
	}
	s := m.store
	userID := m.userID
	listID := m.list.ID
	itemID := entry.Item.ID
	version := entry.State.Version
	return func() tea.Msg {
		_, err := s.SetListItemSelection(context.Background(), userID, listID, itemID, version)
		return OpDoneMsg{Err: err}
	}
}

// addToNumber shifts the numeric payload by delta, keeping the current
// value as the base.
func (m Model) addToNumber(delta decimal.Decimal) tea.Cmd {
	entry, ok := m.current()
	if !ok {
		return nil
	}
	s := m.store
	userID := m.userID
	listID := m.list.ID
	itemID := entry.Item.ID
	version := entry.State.Version
	base := entry.State.Number
	return func() tea.Msg {
		_, err := s.SetListItemNumber(context.Background(), userID, listID, itemID, version, base, delta)
		return OpDoneMsg{Err: err}
	}
}

// advanceType cycles the state type of the current entry.
func (m Model) advanceType() tea.Cmd {
	entry, ok := m.current()
	if !ok {
		return nil
	}
	s := m.store
	userID := m.userID
	listID := m.list.ID
	itemID := entry.Item.ID
	version := entry.State.Version
	return func() tea.Msg {
		_, err := s.AdvanceListItemType(context.Background(), userID, listID, itemID, version)
		return OpDoneMsg{Err: err}
	}
}

func (m Model) current() (store.ListEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return store.ListEntry{}, false
	}
	return m.entries[m.cursor], true
}

// View renders the checklist.
func (m Model) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render(m.list.Name)
	b.WriteString(title + "\n")

	for _, w := range m.warnings {
		b.WriteString(theme.WarningStyle.Render(
			fmt.Sprintf("⚠ category %q has items in this list but is not checked", w.Name)) + "\n")
	}
	if m.errText != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errText) + "\n")
	}
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(theme.HelpStyle.Render(
			"Nothing here. Add items and check categories in the catalog."))
	}

	lastCategory := ""
	for i, e := range m.entries {
		if e.Category.ID != lastCategory {
			b.WriteString(theme.CategoryStyle.Render(e.Category.Name) + "\n")
			lastCategory = e.Category.ID
		}
		line := renderEntry(e)
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.mode != inputNone {
		b.WriteString("\n" + m.input.View())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// renderEntry draws one checklist line according to its state type.
func renderEntry(e store.ListEntry) string {
	switch e.State.Type {
	case model.TypeSelection:
		mark := "○"
		if e.State.Selection {
			mark = "✓"
		}
		return fmt.Sprintf("%s %s", mark, e.Item.Name)
	case model.TypeNumber:
		badge := theme.ItemTypeStyle(model.TypeNumber).Render(e.State.Number.String())
		return fmt.Sprintf("%s ×%s", e.Item.Name, badge)
	case model.TypeText:
		note := theme.ItemTypeStyle(model.TypeText).Render(e.State.Text)
		return fmt.Sprintf("%s %s", e.Item.Name, note)
	default:
		return e.Item.Name
	}
}

// load returns a tea.Cmd that fetches the entries and the
// unchecked-category warnings in one go.
func (m Model) load() tea.Cmd {
	s := m.store
	userID := m.userID
	listID := m.list.ID
	return func() tea.Msg {
		ctx := context.Background()
		entries, err := s.GetListEntries(ctx, userID, listID)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		warnings, err := s.UncheckedCategories(ctx, userID, listID)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Entries: entries, Warnings: warnings}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 4
}
