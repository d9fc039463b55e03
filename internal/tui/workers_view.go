package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gusgushz/baches/internal/api"
	"github.com/gusgushz/baches/internal/model"
)

// crudMode is shared by the workers and vehicles screens.
type crudMode int

const (
	modeBrowse crudMode = iota
	modeForm
	modeConfirmDelete
)

const (
	workerFieldName = iota
	workerFieldSecondName
	workerFieldLastname
	workerFieldSecondLastname
	workerFieldEmail
	workerFieldPhone
	workerFieldPassword
)

// workersView lists and edits workers. The local list only changes after a
// mutation round-trips; a snapshot refresh follows every successful action.
type workersView struct {
	app       *App
	mode      crudMode
	search    textinput.Model
	searching bool
	cursor    int
	editing   string // worker id under edit, empty when creating
	form      *form
}

func newWorkersView(app *App) *workersView {
	search := textinput.New()
	search.Placeholder = "nombre o correo"
	search.Width = 30
	return &workersView{app: app, search: search}
}

func (v *workersView) open() {
	v.mode = modeBrowse
	v.searching = false
	v.cursor = 0
}

func (v *workersView) busy() bool {
	return v.mode != modeBrowse || v.searching
}

// filtered applies the search box against full name and email.
func (v *workersView) filtered() []model.UserProfile {
	query := strings.ToLower(strings.TrimSpace(v.search.Value()))
	workers := v.app.snap.Workers
	if query == "" {
		return workers
	}
	var out []model.UserProfile
	for _, w := range workers {
		haystack := strings.ToLower(w.FullName() + " " + w.Email)
		if strings.Contains(haystack, query) {
			out = append(out, w)
		}
	}
	return out
}

func (v *workersView) selected() *model.UserProfile {
	items := v.filtered()
	if len(items) == 0 {
		return nil
	}
	if v.cursor >= len(items) {
		v.cursor = len(items) - 1
	}
	return &items[v.cursor]
}

func (v *workersView) Update(msg tea.Msg) tea.Cmd {
	if done, ok := msg.(actionDoneMsg); ok {
		if done.err == nil && v.mode != modeBrowse {
			v.mode = modeBrowse
		}
		if done.err != nil && v.mode == modeForm && v.form != nil {
			v.form.errMsg = done.err.Error()
		}
		if done.err != nil && v.mode == modeConfirmDelete {
			v.mode = modeBrowse
		}
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.searching {
			var cmd tea.Cmd
			v.search, cmd = v.search.Update(msg)
			return cmd
		}
		return nil
	}

	switch v.mode {
	case modeForm:
		return v.updateForm(key)
	case modeConfirmDelete:
		return v.updateConfirm(key)
	default:
		return v.updateBrowse(key)
	}
}

func (v *workersView) updateBrowse(key tea.KeyMsg) tea.Cmd {
	if v.searching {
		switch key.String() {
		case "enter":
			v.searching = false
			v.search.Blur()
		case "esc":
			v.searching = false
			v.search.SetValue("")
			v.search.Blur()
		default:
			var cmd tea.Cmd
			v.search, cmd = v.search.Update(key)
			v.cursor = 0
			return cmd
		}
		return nil
	}

	switch key.String() {
	case "/":
		v.searching = true
		v.search.Focus()
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.filtered())-1 {
			v.cursor++
		}
	case "n":
		v.editing = ""
		v.form = buildWorkerForm(nil)
		v.mode = modeForm
	case "e":
		if w := v.selected(); w != nil {
			v.editing = w.ID
			v.form = buildWorkerForm(w)
			v.mode = modeForm
		}
	case "d":
		if v.selected() != nil {
			v.mode = modeConfirmDelete
		}
	}
	return nil
}

func (v *workersView) updateForm(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		v.mode = modeBrowse
		return nil
	case "enter":
		return v.submitForm()
	}
	return v.form.Update(key)
}

func (v *workersView) updateConfirm(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "y", "s":
		w := v.selected()
		if w == nil {
			v.mode = modeBrowse
			return nil
		}
		id, name := w.ID, w.FullName()
		return v.app.runAction(fmt.Sprintf("Trabajador %s eliminado", name), func(ctx context.Context) error {
			return v.app.svc.DeleteWorker(ctx, id)
		})
	case "n", "esc":
		v.mode = modeBrowse
	}
	return nil
}

func buildWorkerForm(w *model.UserProfile) *form {
	var name, secondName, lastname, secondLastname, email, phone string
	passwordLabel := "Contraseña"
	if w != nil {
		name, secondName, lastname, secondLastname = w.Name, w.SecondName, w.Lastname, w.SecondLastname
		email, phone = w.Email, w.PhoneNumber
		passwordLabel = "Contraseña (vacía = sin cambio)"
	}
	return newForm(
		func() (string, textinput.Model) { return textField("Nombre", "", name) },
		func() (string, textinput.Model) { return textField("Segundo nombre", "", secondName) },
		func() (string, textinput.Model) { return textField("Apellido", "", lastname) },
		func() (string, textinput.Model) { return textField("Segundo apellido", "", secondLastname) },
		func() (string, textinput.Model) { return textField("Correo", "", email) },
		func() (string, textinput.Model) { return textField("Teléfono", "", phone) },
		func() (string, textinput.Model) { return passwordField(passwordLabel) },
	)
}

// submitForm validates locally (required fields, password complexity) and
// only then issues the create or update.
func (v *workersView) submitForm() tea.Cmd {
	in := api.WorkerInput{
		Name:           v.form.value(workerFieldName),
		SecondName:     v.form.value(workerFieldSecondName),
		Lastname:       v.form.value(workerFieldLastname),
		SecondLastname: v.form.value(workerFieldSecondLastname),
		Email:          v.form.value(workerFieldEmail),
		PhoneNumber:    v.form.value(workerFieldPhone),
		Password:       v.form.inputs[workerFieldPassword].Value(),
		Role:           string(model.RoleWorker),
	}
	if err := in.Validate(v.editing == ""); err != nil {
		v.form.errMsg = err.Error()
		return nil
	}
	v.form.errMsg = ""
	id := v.editing
	if id == "" {
		return v.app.runAction(fmt.Sprintf("Trabajador %s creado", in.Name), func(ctx context.Context) error {
			return v.app.svc.CreateWorker(ctx, in)
		})
	}
	return v.app.runAction(fmt.Sprintf("Trabajador %s actualizado", in.Name), func(ctx context.Context) error {
		return v.app.svc.UpdateWorker(ctx, id, in)
	})
}

func (v *workersView) View() string {
	switch v.mode {
	case modeForm:
		title := "Nuevo trabajador"
		if v.editing != "" {
			title = "Editar trabajador"
		}
		return v.form.View(title, "Enter → guardar    Tab → siguiente campo    Esc → cancelar")
	case modeConfirmDelete:
		w := v.selected()
		if w == nil {
			return ""
		}
		return fmt.Sprintf("¿Eliminar a %s?\n\n(s)í / (n)o", w.FullName())
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Trabajadores")
	searchLine := "Buscar: " + v.search.View()
	items := v.filtered()
	var rows []string
	for i, w := range items {
		line := fmt.Sprintf("%s · %s · %s", w.FullName(), w.Email, w.Role)
		if w.Status != "" {
			line += " · " + w.Status
		}
		style := lipgloss.NewStyle()
		if i == v.cursor && !v.searching {
			style = style.Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		rows = append(rows, style.Render(line))
	}
	if len(rows) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("Sin trabajadores"))
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("n → nuevo    e → editar    d → eliminar    / → buscar    Esc → menú")
	return strings.Join([]string{title, searchLine, strings.Join(rows, "\n"), hint}, "\n\n")
}
