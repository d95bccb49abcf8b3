package listbrowser

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvo/listkeeper/internal/keys"
	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/internal/theme"
	"github.com/tvo/listkeeper/internal/ui"
	"github.com/tvo/listkeeper/internal/usercache"
)

// ListsLoadedMsg is sent when lists have been loaded from the store.
type ListsLoadedMsg struct {
	Lists  []model.List
	Owners map[string]string
	Err    error
}

// EditRequestedMsg is sent when the user wants to edit the selected list.
type EditRequestedMsg struct {
	List model.List
}

// NewRequestedMsg is sent when the user wants to create a list.
type NewRequestedMsg struct{}

// CatalogRequestedMsg is sent when the user selects a list to manage its
// categories and items.
type CatalogRequestedMsg struct {
	List model.List
}

// ChecklistRequestedMsg is sent when the user opens a list as a checklist.
type ChecklistRequestedMsg struct {
	List model.List
}

// MutationDoneMsg is sent after a write initiated from or on behalf of
// this view. The browser shows the error, if any, and reloads.
type MutationDoneMsg struct {
	Err error
}

// Model is the list browser view component.
type Model struct {
	list        list.Model
	store       store.Store
	users       *usercache.Cache
	keys        *keys.KeyMap
	userID      string
	filter      store.ListFilter
	searchMode  bool
	searchInput textinput.Model
	errMessage  string
	width       int
	height      int
}

// New creates a new list browser model.
func New(s store.Store, users *usercache.Cache, k *keys.KeyMap, userID string, width, height int) Model {
	l := list.New([]list.Item{}, entryDelegate{}, width, height-2)
	l.Title = "Lists"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search lists..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:   l,
		store:  s,
		users:  users,
		keys:   k,
		userID: userID,
		filter: store.ListFilter{
			SortBy: "name",
		},
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of lists.
func (m Model) Init() tea.Cmd {
	return m.LoadLists()
}

// Update handles messages for the list browser.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ListsLoadedMsg:
		if msg.Err != nil {
			m.errMessage = msg.Err.Error()
			return m, nil
		}
		m.errMessage = ""
		items := make([]list.Item, len(msg.Lists))
		for i, l := range msg.Lists {
			items[i] = ListEntry{
				List:    l,
				OwnedBy: msg.Owners[l.OwnerID],
				Mine:    l.OwnerID == m.userID,
			}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case MutationDoneMsg:
		if msg.Err != nil {
			m.errMessage = ui.FriendlyError(msg.Err)
		} else {
			m.errMessage = ""
		}
		return m, m.LoadLists()

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadLists()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadLists()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		entry, ok := m.list.SelectedItem().(ListEntry)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return CatalogRequestedMsg{List: entry.List}
		}

	case key.Matches(msg, m.keys.Open):
		entry, ok := m.list.SelectedItem().(ListEntry)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return ChecklistRequestedMsg{List: entry.List}
		}

	case key.Matches(msg, m.keys.New):
		return m, func() tea.Msg { return NewRequestedMsg{} }

	case key.Matches(msg, m.keys.Edit):
		entry, ok := m.list.SelectedItem().(ListEntry)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return EditRequestedMsg{List: entry.List}
		}

	case key.Matches(msg, m.keys.Delete):
		entry, ok := m.list.SelectedItem().(ListEntry)
		if !ok {
			return m, nil
		}
		return m, m.deleteList(entry.List)

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		m.filter.SortDesc = !m.filter.SortDesc
		return m, m.LoadLists()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list browser.
func (m Model) View() string {
	var sections []string

	if m.searchMode {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View()))
	}
	if m.errMessage != "" {
		sections = append(sections, theme.ErrorStyle.
			Padding(0, 1).
			Render(m.errMessage))
	}

	if len(m.list.Items()) == 0 {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, m.list.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderEmptyState shows guidance text when no lists are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.filter.Query != nil {
		return style.Render("No matching lists.\nTry another search.")
	}
	return style.Render("No lists yet.\n\nPress n to create one.")
}

// LoadLists returns a tea.Cmd that queries the store with the current
// filter and resolves owner emails through the user cache.
func (m Model) LoadLists() tea.Cmd {
	filter := m.filter
	s := m.store
	users := m.users
	return func() tea.Msg {
		ctx := context.Background()
		lists, err := s.GetLists(ctx, m.userID, filter)
		if err != nil {
			return ListsLoadedMsg{Err: err}
		}

		owners := make(map[string]string)
		for _, l := range lists {
			if _, ok := owners[l.OwnerID]; ok {
				continue
			}
			if u, err := users.Get(ctx, l.OwnerID); err == nil {
				owners[l.OwnerID] = u.Email
			}
		}
		return ListsLoadedMsg{Lists: lists, Owners: owners}
	}
}

// deleteList returns a tea.Cmd that deletes the list with its current
// stamp.
func (m Model) deleteList(l model.List) tea.Cmd {
	s := m.store
	userID := m.userID
	return func() tea.Msg {
		return MutationDoneMsg{Err: s.DeleteList(context.Background(), userID, l.ID, l.Version)}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
