// Package app holds the root Bubble Tea model: view routing, the signed-in
// account, and the shared layout.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tvo/listkeeper/internal/auth"
	"github.com/tvo/listkeeper/internal/keys"
	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/store"
	"github.com/tvo/listkeeper/internal/ui"
	"github.com/tvo/listkeeper/internal/ui/catalog"
	helpview "github.com/tvo/listkeeper/internal/ui/help"
	"github.com/tvo/listkeeper/internal/ui/listbrowser"
	"github.com/tvo/listkeeper/internal/ui/listform"
	"github.com/tvo/listkeeper/internal/ui/login"
	"github.com/tvo/listkeeper/internal/ui/uselist"
	"github.com/tvo/listkeeper/internal/usercache"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewBrowser
	ViewListForm
	ViewCatalog
	ViewChecklist
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the persistence layer.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	users        *usercache.Cache
	keys         *keys.KeyMap
	currentUser  *model.User

	loginView    login.Model
	browser      listbrowser.Model
	listFormView listform.Model
	catalogView  catalog.Model
	checklist    uselist.Model
	helpView     helpview.Model

	ready bool
}

// New creates a new root application model.
func New(s store.Store, users *usercache.Cache, service *auth.Service) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewLogin,
		store:        s,
		users:        users,
		keys:         k,
		loginView:    login.New(service, 80, 24),
		listFormView: listform.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
	}
}

// Init starts the login screen.
func (m Model) Init() tea.Cmd {
	return m.loginView.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		m.listFormView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		if m.currentUser != nil {
			m.browser.SetSize(w, h)
			m.catalogView.SetSize(w, h)
			m.checklist.SetSize(w, h)
		}
		return m.updateActiveView(msg)

	case login.LoggedInMsg:
		return m.signIn(msg.User)

	case listbrowser.NewRequestedMsg:
		m.previousView = m.currentView
		m.currentView = ViewListForm
		return m, m.listFormView.StartCreate()

	case listbrowser.EditRequestedMsg:
		m.previousView = m.currentView
		m.currentView = ViewListForm
		return m, m.listFormView.StartEdit(msg.List)

	case listbrowser.CatalogRequestedMsg:
		m.previousView = m.currentView
		m.currentView = ViewCatalog
		return m, m.catalogView.Open(msg.List)

	case listbrowser.ChecklistRequestedMsg:
		m.previousView = m.currentView
		m.currentView = ViewChecklist
		return m, m.checklist.Open(msg.List)

	case listform.SavedMsg:
		m.currentView = ViewBrowser
		return m, m.saveList(msg)

	case listform.CancelMsg:
		m.currentView = ViewBrowser
		return m, nil

	case catalog.BackMsg, uselist.BackMsg:
		m.currentView = ViewBrowser
		return m, m.browser.LoadLists()

	case tea.KeyMsg:
		if updated, cmd, handled := m.handleGlobalKeys(msg); handled {
			return updated, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work in every signed-in view.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	// Forms and text inputs own the keyboard.
	if m.currentView == ViewLogin || m.currentView == ViewListForm {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit) && m.currentView == ViewBrowser:
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
		m.currentView = m.previousView
		return m, nil, true
	}
	return m, nil, false
}

// signIn builds the per-user views and enters the browser.
func (m Model) signIn(user model.User) (Model, tea.Cmd) {
	m.currentUser = &user
	w := m.layout.ContentWidth()
	h := m.layout.ContentHeight()
	if !m.ready {
		w, h = 80, 24
	}

	m.browser = listbrowser.New(m.store, m.users, m.keys, user.ID, w, h)
	m.catalogView = catalog.New(m.store, m.keys, user.ID, w, h)
	m.checklist = uselist.New(m.store, m.keys, user.ID, w, h)
	m.currentView = ViewBrowser
	return m, m.browser.Init()
}

// saveList persists a form submission and reports back to the browser.
func (m Model) saveList(msg listform.SavedMsg) tea.Cmd {
	s := m.store
	userID := m.currentUser.ID
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		if msg.Edit {
			_, err = s.UpdateList(ctx, userID, msg.List)
		} else {
			l := msg.List
			l.OwnerID = userID
			_, err = s.CreateList(ctx, l)
		}
		return listbrowser.MutationDoneMsg{Err: err}
	}
}

// updateActiveView forwards a message to the current view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewBrowser:
		m.browser, cmd = m.browser.Update(msg)
	case ViewListForm:
		m.listFormView, cmd = m.listFormView.Update(msg)
	case ViewCatalog:
		m.catalogView, cmd = m.catalogView.Update(msg)
	case ViewChecklist:
		m.checklist, cmd = m.checklist.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}
	return m, cmd
}

// View renders the active view inside the shared frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var content string
	switch m.currentView {
	case ViewLogin:
		content = m.loginView.View()
	case ViewBrowser:
		content = m.browser.View()
	case ViewListForm:
		content = m.listFormView.View()
	case ViewCatalog:
		content = m.catalogView.View()
	case ViewChecklist:
		content = m.checklist.View()
	case ViewHelp:
		content = m.helpView.View()
	}

	account := ""
	if m.currentUser != nil {
		account = m.currentUser.Email
	}

	header := m.layout.RenderHeader("listkeeper", account)
	statusBar := m.layout.RenderStatusBar(m.statusHints())
	return m.layout.RenderWithFrame(header, content, statusBar)
}

// statusHints returns the per-view key hints for the status bar.
func (m Model) statusHints() string {
	switch m.currentView {
	case ViewLogin:
		return "enter confirm • esc back"
	case ViewBrowser:
		return "enter catalog • o open • n new • e edit • d delete • / search • ? help • q quit"
	case ViewCatalog:
		return "space toggle • t cycle type • c category • n item • e rename • d delete • esc back"
	case ViewChecklist:
		return "space check • +/- count • # number • i note • t cycle type • esc back"
	case ViewListForm:
		return "enter confirm • esc cancel"
	case ViewHelp:
		return "? or esc to close"
	}
	return ""
}
