package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/contactbook/form"
	"github.com/satheeshds/contactbook/models"
	"github.com/satheeshds/contactbook/validation"
)

type stubAPI struct {
	mu       sync.Mutex
	contacts []models.Contact
	nextID   int64
	deleted  []int64
	created  []models.ContactInput
}

func (s *stubAPI) CreateContact(_ context.Context, in models.ContactInput) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := models.Contact{ID: s.nextID, Name: in.Name, Email: in.Email, Phone: in.Phone}
	s.created = append(s.created, in)
	s.contacts = append([]models.Contact{c}, s.contacts...)
	return &c, nil
}

func (s *stubAPI) ListContacts(_ context.Context, page, limit int) (*models.ContactPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.contacts)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	pages := (total + limit - 1) / limit
	return &models.ContactPage{
		Contacts: append([]models.Contact{}, s.contacts[start:end]...),
		Pagination: models.Pagination{
			CurrentPage:   page,
			TotalPages:    pages,
			TotalContacts: total,
			HasNext:       page < pages,
			HasPrev:       page > 1,
		},
	}, nil
}

func (s *stubAPI) DeleteContact(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	for i, c := range s.contacts {
		if c.ID == id {
			s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
			break
		}
	}
	return nil
}

func seeded(n int) *stubAPI {
	api := &stubAPI{}
	for i := 0; i < n; i++ {
		api.nextID++
		api.contacts = append([]models.Contact{{ID: api.nextID, Name: "Contact", Email: "c@example.com", Phone: "1234567890"}}, api.contacts...)
	}
	return api
}

func newTestModel(api *stubAPI) Model {
	m := NewModel(context.Background(), form.New(api))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestNewModel_FocusesName(t *testing.T) {
	m := newTestModel(&stubAPI{})

	assert.Equal(t, FocusName, m.focus)
	assert.True(t, m.inputs[FocusName].Focused())
	assert.False(t, m.inputs[FocusEmail].Focused())
}

func TestInit_LoadsFirstPage(t *testing.T) {
	m := newTestModel(seeded(3))

	m = run(t, m, m.loadCmd(1))
	assert.Len(t, m.state.Contacts, 3)
	assert.Contains(t, m.View(), "Page 1 of 1 (3 total contacts)")
}

func TestTab_CyclesFocus(t *testing.T) {
	m := newTestModel(&stubAPI{})

	for _, want := range []Focus{FocusEmail, FocusPhone, FocusList, FocusName} {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
		assert.Equal(t, want, m.focus)
	}
}

func TestTyping_UpdatesController(t *testing.T) {
	m := newTestModel(&stubAPI{})

	m = typeText(m, "Jane")
	assert.Equal(t, "Jane", m.ctrl.Snapshot().Values.Name)
	assert.Equal(t, "Jane", m.inputs[FocusName].Value())
}

func TestSubmit_InvalidShowsFieldErrors(t *testing.T) {
	api := &stubAPI{}
	m := newTestModel(api)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m = run(t, m, cmd)

	assert.Empty(t, api.created)
	view := m.View()
	assert.Contains(t, view, validation.MsgNameRequired)
	assert.Contains(t, view, validation.MsgEmailRequired)
	assert.Contains(t, view, validation.MsgPhoneRequired)
}

func TestSubmit_AddsContactAndClearsForm(t *testing.T) {
	api := &stubAPI{}
	m := newTestModel(api)

	m = typeText(m, "Jane")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "jane@example.com")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "1234567890")

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	updated, expiry := m.Update(cmd())
	m = updated.(Model)

	require.Len(t, api.created, 1)
	assert.Equal(t, models.ContactInput{Name: "Jane", Email: "jane@example.com", Phone: "1234567890"}, api.created[0])
	assert.Equal(t, "", m.inputs[FocusName].Value())
	assert.Equal(t, "", m.inputs[FocusPhone].Value())
	assert.Contains(t, m.View(), form.MsgAdded)
	assert.NotNil(t, expiry, "status expiry is scheduled")
}

func TestDelete_ConfirmThenRemove(t *testing.T) {
	api := seeded(2)
	m := newTestModel(api)
	m = run(t, m, m.loadCmd(1))

	m = m.focusList()
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	assert.Nil(t, cmd)
	require.NotNil(t, m.confirming)
	assert.Equal(t, int64(1), m.confirming.ID)
	assert.Contains(t, m.View(), "Are you sure you want to delete this contact?")

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	assert.Nil(t, m.confirming)
	m = run(t, m, cmd)

	assert.Equal(t, []int64{1}, api.deleted)
	require.Len(t, m.state.Contacts, 1)
	assert.Equal(t, int64(2), m.state.Contacts[0].ID)
	assert.Contains(t, m.View(), form.MsgDeleted)
}

func TestDelete_CancelMakesNoRequest(t *testing.T) {
	api := seeded(1)
	m := newTestModel(api)
	m = run(t, m, m.loadCmd(1))

	m = m.focusList()
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.NotNil(t, m.confirming)

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Nil(t, cmd)
	assert.Nil(t, m.confirming)
	assert.Empty(t, api.deleted)
}

func TestPaging(t *testing.T) {
	api := seeded(15)
	m := newTestModel(api)
	m = run(t, m, m.loadCmd(1))
	m = m.focusList()

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Nil(t, cmd, "no previous page on page 1")

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m = run(t, m, cmd)
	assert.Len(t, m.state.Contacts, 5)
	assert.Contains(t, m.View(), "Page 2 of 2 (15 total contacts)")

	_, cmd = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd, "no next page on the last page")
}

func TestQuit(t *testing.T) {
	m := newTestModel(&stubAPI{})

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	// q is ordinary text while the form has focus.
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.Equal(t, "q", m.inputs[FocusName].Value())
}

func TestPageLabel(t *testing.T) {
	assert.Equal(t, "Page 1 of 0 (0 total contacts)", PageLabel(models.Pagination{CurrentPage: 1}))
}

func TestView_EmptyList(t *testing.T) {
	m := newTestModel(&stubAPI{})
	m = run(t, m, m.loadCmd(1))

	view := m.View()
	assert.True(t, strings.Contains(view, "No contacts yet"))
	assert.Contains(t, view, "Contact Book")
}

// focusList moves focus to the contact list.
func (m Model) focusList() Model {
	m.setFocus(FocusList)
	return m
}
