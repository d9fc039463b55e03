package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// loginView is the credentials screen shown until a session exists.
type loginView struct {
	app        *App
	form       *form
	remember   bool
	submitting bool
	errMsg     string
}

const (
	loginFieldEmail = iota
	loginFieldPassword
)

func newLoginView(app *App) *loginView {
	return &loginView{
		app: app,
		form: newForm(
			func() (string, textinput.Model) { return textField("Correo", "usuario@merida.gob.mx", "") },
			func() (string, textinput.Model) { return passwordField("Contraseña") },
		),
	}
}

func (v *loginView) Update(msg tea.Msg) tea.Cmd {
	if v.submitting {
		return nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			return v.submit()
		case "ctrl+r":
			v.remember = !v.remember
			return nil
		}
	}
	return v.form.Update(msg)
}

// submit validates locally before the credentials leave the process.
func (v *loginView) submit() tea.Cmd {
	v.errMsg = ""
	email := v.form.value(loginFieldEmail)
	password := strings.TrimSpace(v.form.inputs[loginFieldPassword].Value())
	if email == "" {
		v.errMsg = "Email requerido"
		return nil
	}
	if password == "" {
		v.errMsg = "Contraseña requerida"
		return nil
	}
	v.submitting = true
	svc := v.app.svc
	remember := v.remember
	return tea.Batch(v.app.loading.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		user, token, err := svc.Login(ctx, email, password)
		return loginResultMsg{user: user, token: token, remember: remember, err: err}
	})
}

func (v *loginView) View() string {
	hint := "Enter → entrar    Ctrl+R → recordarme    Ctrl+C → salir"
	check := "[ ]"
	if v.remember {
		check = "[x]"
	}
	body := v.form.View("Iniciar sesión", hint)
	rememberLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(fmt.Sprintf("%s Recordarme en este equipo", check))
	sections := []string{body, rememberLine}
	if v.submitting {
		sections = append(sections, fmt.Sprintf("%s Autenticando...", v.app.loading.View()))
	}
	if v.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render("⚠ "+v.errMsg))
	}
	return strings.Join(sections, "\n\n")
}
