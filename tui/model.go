// Package tui is the terminal front end of the contact book. It renders a
// form.Controller and runs the controller's blocking calls as commands so
// the event loop never waits on the network.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/satheeshds/contactbook/form"
	"github.com/satheeshds/contactbook/models"
	"github.com/satheeshds/contactbook/validation"
)

// Focus identifies the widget receiving key presses.
type Focus int

const (
	FocusName Focus = iota
	FocusEmail
	FocusPhone
	FocusList
)

var fieldOrder = [...]string{validation.FieldName, validation.FieldEmail, validation.FieldPhone}

var fieldLabels = [...]string{"Name", "Email", "Phone"}

// Messages produced by the controller commands.
type (
	submitDoneMsg   struct{ err error }
	deleteDoneMsg   struct{ err error }
	loadDoneMsg     struct{ err error }
	statusExpiryMsg struct{}
)

// Model is the root Bubble Tea model.
type Model struct {
	ctrl *form.Controller
	ctx  context.Context

	inputs     [len(fieldOrder)]textinput.Model
	focus      Focus
	cursor     int
	confirming *models.Contact

	state   form.State
	spinner spinner.Model
	help    help.Model
	width   int

	formKeys    formKeys
	listKeys    listKeys
	confirmKeys confirmKeys
}

// NewModel returns a model bound to ctrl with the name field focused.
func NewModel(ctx context.Context, ctrl *form.Controller) Model {
	var inputs [len(fieldOrder)]textinput.Model
	placeholders := [...]string{"Jane Doe", "jane@example.com", "1234567890"}
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 128
		inputs[i] = ti
	}
	inputs[FocusName].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctrl:        ctrl,
		ctx:         ctx,
		inputs:      inputs,
		focus:       FocusName,
		state:       ctrl.Snapshot(),
		spinner:     s,
		help:        help.New(),
		formKeys:    FormKeyMap(),
		listKeys:    ListKeyMap(),
		confirmKeys: ConfirmKeyMap(),
	}
}

// Init loads the first page and starts the spinner and cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(1), m.spinner.Tick, textinput.Blink)
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.confirming != nil {
			return m.handleConfirmKey(msg)
		}
		if m.focus == FocusList {
			return m.handleListKey(msg)
		}
		return m.handleFormKey(msg)

	case submitDoneMsg, deleteDoneMsg, loadDoneMsg:
		m.refresh()
		return m, expireAfter(form.StatusTTL)

	case statusExpiryMsg:
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.formKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.formKeys.Next):
		return m, m.setFocus(m.focus + 1)
	case key.Matches(msg, m.formKeys.Prev):
		if m.focus == FocusName {
			return m, m.setFocus(FocusList)
		}
		return m, m.setFocus(m.focus - 1)
	case key.Matches(msg, m.formKeys.Submit):
		m.refresh()
		if m.state.Busy {
			return m, nil
		}
		return m, m.submitCmd()
	}

	i := int(m.focus)
	var cmd tea.Cmd
	m.inputs[i], cmd = m.inputs[i].Update(msg)
	m.ctrl.SetField(fieldOrder[i], m.inputs[i].Value())
	m.refresh()
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.listKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.listKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.listKeys.Next):
		return m, m.setFocus(FocusName)
	case key.Matches(msg, m.listKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.listKeys.Down):
		if m.cursor < len(m.state.Contacts)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.listKeys.NextPage):
		if m.state.Pagination.HasNext {
			m.cursor = 0
			return m, m.pageCmd(m.ctrl.NextPage)
		}
	case key.Matches(msg, m.listKeys.PrevPage):
		if m.state.Pagination.HasPrev {
			m.cursor = 0
			return m, m.pageCmd(m.ctrl.PrevPage)
		}
	case key.Matches(msg, m.listKeys.Refresh):
		return m, m.loadCmd(m.state.Pagination.CurrentPage)
	case key.Matches(msg, m.listKeys.Delete):
		if m.cursor < len(m.state.Contacts) {
			c := m.state.Contacts[m.cursor]
			m.confirming = &c
		}
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.confirmKeys.Yes):
		id := m.confirming.ID
		m.confirming = nil
		return m, m.deleteCmd(id)
	case key.Matches(msg, m.confirmKeys.No):
		m.confirming = nil
	}
	return m, nil
}

// setFocus moves focus, wrapping past the list back to the name field.
func (m *Model) setFocus(f Focus) tea.Cmd {
	if f > FocusList || f < FocusName {
		f = FocusName
	}
	m.focus = f
	var cmd tea.Cmd
	for i := range m.inputs {
		if Focus(i) == f {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

// refresh pulls a new snapshot and brings the inputs in line with it.
func (m *Model) refresh() {
	m.state = m.ctrl.Snapshot()
	values := [...]string{m.state.Values.Name, m.state.Values.Email, m.state.Values.Phone}
	for i := range m.inputs {
		if m.inputs[i].Value() != values[i] {
			m.inputs[i].SetValue(values[i])
		}
	}
	if n := len(m.state.Contacts); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) submitCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return submitDoneMsg{err: ctrl.Submit(ctx)}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		// The user has already answered the confirmation screen.
		confirmed := form.ConfirmFunc(func(models.Contact) bool { return true })
		return deleteDoneMsg{err: ctrl.Delete(ctx, id, confirmed)}
	}
}

func (m Model) loadCmd(page int) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return loadDoneMsg{err: ctrl.Load(ctx, page)}
	}
}

func (m Model) pageCmd(move func(context.Context) (bool, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		_, err := move(ctx)
		return loadDoneMsg{err: err}
	}
}

func expireAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return statusExpiryMsg{} })
}

// View renders the form, the contact list and the help bar.
func (m Model) View() string {
	if m.confirming != nil {
		return m.viewConfirm()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Contact Book"))
	b.WriteString("\n\n")

	formBox := unfocusedBorder()
	listBox := unfocusedBorder()
	if m.focus == FocusList {
		listBox = focusedBorder()
	} else {
		formBox = focusedBorder()
	}

	b.WriteString(formBox.Render(m.viewForm()))
	b.WriteString("\n")
	if status := m.viewStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString(listBox.Render(m.viewList()))
	b.WriteString("\n")

	if m.focus == FocusList {
		b.WriteString(m.help.View(m.listKeys))
	} else {
		b.WriteString(m.help.View(m.formKeys))
	}
	return b.String()
}

func (m Model) viewForm() string {
	rows := make([]string, 0, 2*len(m.inputs)+1)
	for i := range m.inputs {
		rows = append(rows, labelStyle.Render(fieldLabels[i])+m.inputs[i].View())
		if msg, ok := m.state.Errors[fieldOrder[i]]; ok {
			rows = append(rows, fieldErrorStyle.Render(msg))
		}
	}
	label := "[enter] Add Contact"
	if m.state.Busy {
		label = m.spinner.View() + " Adding..."
	}
	rows = append(rows, dimStyle.Render(label))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewStatus() string {
	switch m.state.Status.Kind {
	case form.StatusSuccess:
		return successStyle.Render(m.state.Status.Message)
	case form.StatusError:
		return errorStyle.Render(m.state.Status.Message)
	default:
		return ""
	}
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString("Contacts\n")
	if len(m.state.Contacts) == 0 {
		b.WriteString(dimStyle.Render("No contacts yet"))
		b.WriteString("\n")
	}
	for i, c := range m.state.Contacts {
		line := fmt.Sprintf("%-20s %-28s %s", c.Name, c.Email, c.Phone)
		if m.focus == FocusList && i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(PageLabel(m.state.Pagination)))
	return b.String()
}

func (m Model) viewConfirm() string {
	c := m.confirming
	var b strings.Builder
	fmt.Fprintf(&b, "Are you sure you want to delete this contact?\n\n  %s <%s> %s\n\n", c.Name, c.Email, c.Phone)
	b.WriteString(m.help.View(m.confirmKeys))
	return b.String()
}

// PageLabel renders the pager line under the contact list.
func PageLabel(p models.Pagination) string {
	return fmt.Sprintf("Page %d of %d (%d total contacts)", p.CurrentPage, p.TotalPages, p.TotalContacts)
}
