// Package catalog implements the view for managing a list's categories
// and items: creating and renaming them, checking categories into the
// list, and toggling item membership.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvo/listkeeper/internal/keys"
	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/internal/theme"
	"github.com/tvo/listkeeper/internal/ui"
)

// LoadedMsg is sent when the catalog has been loaded from the store.
type LoadedMsg struct {
	Catalog []store.CatalogCategory
	Err     error
}

// OpDoneMsg is sent after any write. The view reloads either way: on
// success to pick up the fresh stamps, on conflict to show current state.
type OpDoneMsg struct {
	Err error
}

// BackMsg is sent when the user leaves the catalog view.
type BackMsg struct{}

// rowKind discriminates the flattened cursor rows.
type rowKind int

const (
	rowCategory rowKind = iota
	rowItem
)

type row struct {
	kind     rowKind
	category store.CatalogCategory
	item     store.CatalogItem
}

// inputKind discriminates what the text input is collecting.
type inputKind int

const (
	inputNone inputKind = iota
	inputNewCategory
	inputNewItem
	inputRename
)

// Model is the catalog view component.
type Model struct {
	store  store.Store
	keys   *keys.KeyMap
	userID string
	list   model.List

	rows    []row
	cursor  int
	input   textinput.Model
	mode    inputKind
	errText string
	width   int
	height  int
}

// New creates a new catalog model.
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

// Open points the view at a list and loads its catalog.
func (m *Model) Open(l model.List) tea.Cmd {
	m.list = l
	m.cursor = 0
	m.mode = inputNone
	m.errText = ""
	return m.load()
}

// Update handles messages for the catalog view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil {
			m.errText = ui.FriendlyError(msg.Err)
			return m, nil
		}
		m.rows = flatten(msg.Catalog)
		if m.cursor >= len(m.rows) {
			m.cursor = len(m.rows) - 1
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

// handleInputKeys processes key input while naming something.
func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		if name == "" {
			return m, nil
		}
		return m, m.submitName(mode, name)

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
		if m.cursor < len(m.rows)-1 {
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
		return m, m.toggleCurrent()

	case key.Matches(msg, m.keys.Advance):
		return m, m.advanceCurrent()

	case key.Matches(msg, m.keys.New):
		return m.startInput(inputNewItem, "new item name...")

	case key.Matches(msg, m.keys.Edit):
		return m.startInput(inputRename, "new name...")

	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteCurrent()
	}

	if msg.String() == "c" {
		return m.startInput(inputNewCategory, "new category name...")
	}
	return m, nil
}

func (m Model) startInput(mode inputKind, placeholder string) (Model, tea.Cmd) {
	if mode != inputNewCategory && len(m.rows) == 0 {
		return m, nil
	}
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	if mode == inputRename {
		r := m.rows[m.cursor]
		if r.kind == rowCategory {
			m.input.SetValue(r.category.Category.Name)
		} else {
			m.input.SetValue(r.item.Item.Name)
		}
	}
	return m, m.input.Focus()
}

// submitName dispatches the collected name to the right store call.
func (m Model) submitName(mode inputKind, name string) tea.Cmd {
	s := m.store
	userID := m.userID
	listID := m.list.ID

	switch mode {
	case inputNewCategory:
		return func() tea.Msg {
			_, err := s.CreateCategory(context.Background(), userID, model.Category{
				ListID: listID,
				Name:   name,
			})
			return OpDoneMsg{Err: err}
		}

	case inputNewItem:
		categoryID := m.currentCategoryID()
		if categoryID == "" {
			return nil
		}
		return func() tea.Msg {
			_, err := s.CreateItem(context.Background(), userID, model.Item{
				CategoryID: categoryID,
				Name:       name,
			})
			return OpDoneMsg{Err: err}
		}

	case inputRename:
		r := m.rows[m.cursor]
		if r.kind == rowCategory {
			c := r.category.Category
			c.Name = name
			return func() tea.Msg {
				_, err := s.UpdateCategory(context.Background(), userID, c)
				return OpDoneMsg{Err: err}
			}
		}
		it := r.item.Item
		it.Name = name
		return func() tea.Msg {
			_, err := s.UpdateItem(context.Background(), userID, it)
			return OpDoneMsg{Err: err}
		}
	}
	return nil
}

// toggleCurrent flips the checked state of a category or the membership
// of an item, sending the stamp the view last saw.
func (m Model) toggleCurrent() tea.Cmd {
	if len(m.rows) == 0 {
		return nil
	}
	r := m.rows[m.cursor]
	s := m.store
	userID := m.userID
	listID := m.list.ID

	if r.kind == rowCategory {
		version := model.VersionAbsent
		if r.category.Checked != nil {
			version = r.category.Checked.Version
		}
		categoryID := r.category.Category.ID
		return func() tea.Msg {
			_, err := s.ToggleListCategory(context.Background(), userID, listID, categoryID, version)
			return OpDoneMsg{Err: err}
		}
	}

	version := model.VersionAbsent
	if r.item.State != nil {
		version = r.item.State.Version
	}
	itemID := r.item.Item.ID
	return func() tea.Msg {
		_, err := s.ToggleListItem(context.Background(), userID, listID, itemID, version)
		return OpDoneMsg{Err: err}
	}
}

// advanceCurrent cycles an item's state type.
func (m Model) advanceCurrent() tea.Cmd {
	if len(m.rows) == 0 {
		return nil
	}
	r := m.rows[m.cursor]
	if r.kind != rowItem {
		return nil
	}

	version := model.VersionAbsent
	if r.item.State != nil {
		version = r.item.State.Version
	}
	s := m.store
	userID := m.userID
	listID := m.list.ID
	itemID := r.item.Item.ID
	return func() tea.Msg {
		_, err := s.AdvanceListItemType(context.Background(), userID, listID, itemID, version)
		return OpDoneMsg{Err: err}
	}
}

// deleteCurrent deletes the row under the cursor with its current stamp.
func (m Model) deleteCurrent() tea.Cmd {
	if len(m.rows) == 0 {
		return nil
	}
	r := m.rows[m.cursor]
	s := m.store
	userID := m.userID

	if r.kind == rowCategory {
		c := r.category.Category
		return func() tea.Msg {
			return OpDoneMsg{Err: s.DeleteCategory(context.Background(), userID, c.ID, c.Version)}
		}
	}
	it := r.item.Item
	return func() tea.Msg {
		return OpDoneMsg{Err: s.DeleteItem(context.Background(), userID, it.ID, it.Version)}
	}
}

// currentCategoryID resolves which category the cursor is in.
func (m Model) currentCategoryID() string {
	if len(m.rows) == 0 {
		return ""
	}
	r := m.rows[m.cursor]
	if r.kind == rowCategory {
		return r.category.Category.ID
	}
	return r.item.Item.CategoryID
}

// View renders the catalog.
func (m Model) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).
		Render("Catalog: " + m.list.Name)
	b.WriteString(title + "\n\n")

	if m.errText != "" {
		b.WriteString(theme.ErrorStyle.Render(m.errText) + "\n\n")
	}

	if len(m.rows) == 0 {
		b.WriteString(theme.HelpStyle.Render("Empty catalog. Press c to add a category."))
	}

	for i, r := range m.rows {
		line := renderRow(r)
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

// renderRow draws one flattened row.
func renderRow(r row) string {
	if r.kind == rowCategory {
		check := "[ ]"
		if r.category.Checked != nil {
			check = "[x]"
		}
		return fmt.Sprintf("%s %s", check, theme.CategoryStyle.Render(r.category.Category.Name))
	}

	state := "  ·"
	if r.item.State != nil {
		t := r.item.State.Type
		state = "  " + theme.ItemTypeStyle(t).Render(t.String())
	}
	return fmt.Sprintf("  %s%s", r.item.Item.Name, state)
}

// flatten turns the nested catalog into cursor rows.
func flatten(catalog []store.CatalogCategory) []row {
	var rows []row
	for _, cc := range catalog {
		rows = append(rows, row{kind: rowCategory, category: cc})
		for _, ci := range cc.Items {
			rows = append(rows, row{kind: rowItem, category: cc, item: ci})
		}
	}
	return rows
}

// load returns a tea.Cmd that fetches the catalog.
func (m Model) load() tea.Cmd {
	s := m.store
	userID := m.userID
	listID := m.list.ID
	return func() tea.Msg {
		catalog, err := s.GetCatalog(context.Background(), userID, listID)
		return LoadedMsg{Catalog: catalog, Err: err}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 4
}
