package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gusgushz/baches/internal/assign"
	"github.com/gusgushz/baches/internal/model"
)

type assignmentsMode int

const (
	assignBrowse assignmentsMode = iota
	assignWizard
	assignConfirmDelete
)

// assignmentsView lists assignments and hosts the creation wizard. The
// wizard state machine lives in internal/assign; this view only renders
// steps and routes key presses.
type assignmentsView struct {
	app    *App
	mode   assignmentsMode
	cursor int

	wizard       *assign.Wizard
	wizardCursor int
	wizardErr    string
	notes        textinput.Model
}

func newAssignmentsView(app *App) *assignmentsView {
	notes := textinput.New()
	notes.Placeholder = "notas (opcional)"
	notes.Width = 40
	notes.CharLimit = 200
	return &assignmentsView{app: app, notes: notes}
}

func (v *assignmentsView) open() {
	v.mode = assignBrowse
	v.cursor = 0
}

func (v *assignmentsView) busy() bool { return v.mode != assignBrowse }

func (v *assignmentsView) selected() *model.Assignment {
	items := v.app.snap.Assignments
	if len(items) == 0 {
		return nil
	}
	if v.cursor >= len(items) {
		v.cursor = len(items) - 1
	}
	return &items[v.cursor]
}

func (v *assignmentsView) Update(msg tea.Msg) tea.Cmd {
	if done, ok := msg.(actionDoneMsg); ok {
		switch {
		case done.err == nil:
			v.mode = assignBrowse
			v.wizard = nil
		case v.mode == assignWizard && v.wizard != nil && v.wizard.Step() == assign.StepSubmitting:
			// Failed POST: back to confirm so the user can retry or cancel.
			_ = v.wizard.FailSubmit()
			v.wizardErr = done.err.Error()
		case v.mode == assignConfirmDelete:
			v.mode = assignBrowse
		}
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.mode == assignWizard && v.wizard != nil && v.wizard.Step() == assign.StepConfirm {
			var cmd tea.Cmd
			v.notes, cmd = v.notes.Update(msg)
			return cmd
		}
		return nil
	}

	switch v.mode {
	case assignWizard:
		return v.updateWizard(key)
	case assignConfirmDelete:
		return v.updateConfirm(key)
	default:
		return v.updateBrowse(key)
	}
}

func (v *assignmentsView) updateBrowse(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.app.snap.Assignments)-1 {
			v.cursor++
		}
	case "n":
		snap := v.app.snap
		v.wizard = assign.New(snap.Workers, snap.Vehicles, snap.Assignments)
		v.wizardCursor = 0
		v.wizardErr = ""
		v.notes.SetValue("")
		v.mode = assignWizard
	case "1", "2", "3", "4":
		return v.setStatus(key.String())
	case "d":
		if v.selected() != nil {
			v.mode = assignConfirmDelete
		}
	}
	return nil
}

var statusByKey = map[string]model.ProgressStatus{
	"1": model.ProgressNotStarted,
	"2": model.ProgressInProgress,
	"3": model.ProgressCompleted,
	"4": model.ProgressOnHold,
}

func (v *assignmentsView) setStatus(key string) tea.Cmd {
	a := v.selected()
	if a == nil {
		return nil
	}
	status := statusByKey[key]
	if a.ProgressStatus == status {
		return nil
	}
	id := a.ID
	return v.app.runAction(fmt.Sprintf("Asignación %s → %s", id, status), func(ctx context.Context) error {
		return v.app.svc.UpdateAssignmentStatus(ctx, id, status)
	})
}

func (v *assignmentsView) updateConfirm(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "y", "s":
		a := v.selected()
		if a == nil {
			v.mode = assignBrowse
			return nil
		}
		id := a.ID
		return v.app.runAction("Asignación eliminada", func(ctx context.Context) error {
			return v.app.svc.DeleteAssignment(ctx, id)
		})
	case "n", "esc":
		v.mode = assignBrowse
	}
	return nil
}

func (v *assignmentsView) updateWizard(key tea.KeyMsg) tea.Cmd {
	w := v.wizard
	if w == nil {
		v.mode = assignBrowse
		return nil
	}
	switch w.Step() {
	case assign.StepSelectWorker:
		return v.updateWizardList(key, len(v.app.snap.Workers), func(i int) {
			w.SelectWorker(v.app.snap.Workers[i].ID)
		})
	case assign.StepSelectVehicle:
		return v.updateWizardList(key, len(v.app.snap.Vehicles), func(i int) {
			w.SelectVehicle(v.app.snap.Vehicles[i].ID)
		})
	case assign.StepConfirm:
		switch key.String() {
		case "enter":
			return v.submitWizard()
		case "esc":
			w.Back()
			v.wizardErr = ""
			v.wizardCursor = 0
			return nil
		}
		var cmd tea.Cmd
		v.notes, cmd = v.notes.Update(key)
		return cmd
	}
	return nil
}

func (v *assignmentsView) updateWizardList(key tea.KeyMsg, total int, pick func(int)) tea.Cmd {
	w := v.wizard
	switch key.String() {
	case "up", "k":
		if v.wizardCursor > 0 {
			v.wizardCursor--
		}
	case "down", "j":
		if v.wizardCursor < total-1 {
			v.wizardCursor++
		}
	case "enter":
		if total == 0 {
			return nil
		}
		pick(v.wizardCursor)
		if err := w.Next(); err != nil {
			v.wizardErr = err.Error()
			return nil
		}
		v.wizardErr = ""
		v.wizardCursor = 0
		if w.Step() == assign.StepConfirm {
			v.notes.Focus()
		}
	case "esc":
		if w.Step() == assign.StepSelectWorker {
			w.Cancel()
			v.wizard = nil
			v.mode = assignBrowse
			return nil
		}
		w.Back()
		v.wizardErr = ""
		v.wizardCursor = 0
	}
	return nil
}

func (v *assignmentsView) submitWizard() tea.Cmd {
	w := v.wizard
	w.SetNotes(v.notes.Value())
	in, err := w.BeginSubmit()
	if err != nil {
		v.wizardErr = err.Error()
		return nil
	}
	v.wizardErr = ""
	return v.app.runAction("Asignación creada", func(ctx context.Context) error {
		return v.app.svc.CreateAssignment(ctx, in)
	})
}

func (v *assignmentsView) View() string {
	switch v.mode {
	case assignWizard:
		return v.viewWizard()
	case assignConfirmDelete:
		a := v.selected()
		if a == nil {
			return ""
		}
		return fmt.Sprintf("¿Eliminar la asignación de %s?\n\n(s)í / (n)o", assignmentLabel(*a))
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Asignaciones")
	var rows []string
	for i, a := range v.app.snap.Assignments {
		line := fmt.Sprintf("%s · %s · %s", assignmentLabel(a), a.ProgressStatus, a.Priority)
		if a.Notes != "" {
			line += " · " + a.Notes
		}
		style := lipgloss.NewStyle()
		if i == v.cursor {
			style = style.Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		rows = append(rows, style.Render(line))
	}
	if len(rows) == 0 {
		rows = append(rows, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("Sin asignaciones"))
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("n → nueva    1-4 → avance    d → eliminar    Esc → menú")
	return strings.Join([]string{title, strings.Join(rows, "\n"), hint}, "\n\n")
}

func (v *assignmentsView) viewWizard() string {
	w := v.wizard
	var title, body, hint string
	switch w.Step() {
	case assign.StepSelectWorker:
		title = "Nueva asignación · 1/3 Trabajador"
		body = v.renderWizardWorkers()
		hint = "Enter → seleccionar    Esc → cancelar"
	case assign.StepSelectVehicle:
		title = "Nueva asignación · 2/3 Vehículo"
		body = v.renderWizardVehicles()
		hint = "Enter → seleccionar    Esc → atrás"
	case assign.StepConfirm:
		title = "Nueva asignación · 3/3 Confirmar"
		body = v.renderWizardConfirm()
		hint = "Enter → crear    Esc → atrás"
	case assign.StepSubmitting:
		title = "Nueva asignación"
		body = "Enviando..."
	}
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Render(title)
	sections := []string{head, body}
	if v.wizardErr != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render("⚠ "+v.wizardErr))
	}
	if hint != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(hint))
	}
	return strings.Join(sections, "\n\n")
}

func (v *assignmentsView) renderWizardWorkers() string {
	var rows []string
	for i, w := range v.app.snap.Workers {
		line := fmt.Sprintf("%s · %s", w.FullName(), w.Role)
		if i == v.wizardCursor {
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		return "Sin trabajadores disponibles"
	}
	return strings.Join(rows, "\n")
}

func (v *assignmentsView) renderWizardVehicles() string {
	var rows []string
	for i, veh := range v.app.snap.Vehicles {
		line := veh.LicensePlate
		if veh.Model != "" {
			line += " · " + veh.Model
		}
		line += " · " + veh.Status
		if i == v.wizardCursor {
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		return "Sin vehículos disponibles"
	}
	return strings.Join(rows, "\n")
}

func (v *assignmentsView) renderWizardConfirm() string {
	w := v.wizard
	lines := []string{}
	if worker := w.Worker(); worker != nil {
		lines = append(lines, "Trabajador: "+worker.FullName())
	}
	if veh := w.Vehicle(); veh != nil {
		lines = append(lines, "Vehículo: "+veh.LicensePlate)
	} else {
		lines = append(lines, "Vehículo: (ninguno)")
	}
	lines = append(lines, "", "Notas: "+v.notes.View())
	return strings.Join(lines, "\n")
}

func assignmentLabel(a model.Assignment) string {
	worker := a.WorkerName
	if worker == "" {
		worker = a.WorkerID
	}
	if a.VehiclePlate != "" {
		return worker + " ↔ " + a.VehiclePlate
	}
	if a.VehicleID != "" {
		return worker + " ↔ " + a.VehicleID
	}
	return worker
}
