package listform

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/theme"
)

// SavedMsg is dispatched when the form is submitted. For edits the list
// carries the ID and the stamp loaded when the form was opened.
type SavedMsg struct {
	List model.List
	Edit bool
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name    string
	private bool
}

// Model is the Bubble Tea model for the list create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editing  model.List
	width    int
	height   int
}

// New creates a new list form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for creating a new list.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editing = model.List{}
	m.fb.name = ""
	m.fb.private = false
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing list.
func (m *Model) StartEdit(l model.List) tea.Cmd {
	m.editMode = true
	m.editing = l
	m.fb.name = l.Name
	m.fb.private = l.Private
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the list form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the list form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New List"
	if m.editMode {
		titleText = "Edit List"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Groceries, packing, chores...").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewConfirm().
				Title("Private").
				Description("Private lists are visible to you only.").
				Value(&m.fb.private),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	l := m.editing
	l.Name = m.fb.name
	l.Private = m.fb.private
	edit := m.editMode
	return func() tea.Msg {
		return SavedMsg{List: l, Edit: edit}
	}
}

func (m Model) formWidth() int {
	w := m.width - 6
	if w < 30 {
		w = 30
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

// validateRequired returns a validator rejecting blank input.
func validateRequired(field string) func(string) error {
	return func(v string) error {
		if v == "" {
			return &requiredError{field: field}
		}
		return nil
	}
}

type requiredError struct {
	field string
}

func (e *requiredError) Error() string {
	return e.field + " is required"
}
