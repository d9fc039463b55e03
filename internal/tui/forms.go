package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// form is a vertical stack of labeled text inputs shared by the login and
// CRUD screens. Tab / shift+tab / arrows move focus; the caller handles
// enter and esc.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
	errMsg string
}

func textField(label, placeholder, value string) (string, textinput.Model) {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	in.CharLimit = 120
	in.Width = 38
	return label, in
}

func passwordField(label string) (string, textinput.Model) {
	l, in := textField(label, "", "")
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	return l, in
}

func newForm(fields ...func() (string, textinput.Model)) *form {
	f := &form{}
	for _, field := range fields {
		label, in := field()
		f.labels = append(f.labels, label)
		f.inputs = append(f.inputs, in)
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func (f *form) value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	if i < 0 {
		i = len(f.inputs) - 1
	}
	if i >= len(f.inputs) {
		i = 0
	}
	for idx := range f.inputs {
		if idx == i {
			f.inputs[idx].Focus()
		} else {
			f.inputs[idx].Blur()
		}
	}
	f.focus = i
}

// Update moves focus on tab/arrows and forwards everything else to the
// focused input.
func (f *form) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			f.setFocus(f.focus + 1)
			return nil
		case "shift+tab", "up":
			f.setFocus(f.focus - 1)
			return nil
		}
	}
	if f.focus < 0 || f.focus >= len(f.inputs) {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) View(title, hint string) string {
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(title)
	var rows []string
	for i := range f.inputs {
		label := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Render(f.labels[i])
		rows = append(rows, fmt.Sprintf("%s\n%s", label, f.inputs[i].View()))
	}
	sections := []string{head, strings.Join(rows, "\n")}
	if f.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render("⚠ "+f.errMsg))
	}
	if hint != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Render(hint))
	}
	return strings.Join(sections, "\n\n")
}
