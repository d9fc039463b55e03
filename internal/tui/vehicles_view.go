package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gusgushz/baches/internal/api"
	"github.com/gusgushz/baches/internal/model"
)

const (
	vehicleFieldPlate = iota
	vehicleFieldModel
	vehicleFieldYear
	vehicleFieldColor
	vehicleFieldCorporation
	vehicleFieldStatus
)

// vehiclesView lists and edits the municipal fleet.
type vehiclesView struct {
	app     *App
	mode    crudMode
	cursor  int
	editing string
	form    *form
}

func newVehiclesView(app *App) *vehiclesView {
	return &vehiclesView{app: app}
}

func (v *vehiclesView) open() {
	v.mode = modeBrowse
	v.cursor = 0
}

func (v *vehiclesView) busy() bool { return v.mode != modeBrowse }

func (v *vehiclesView) selected() *model.Vehicle {
	vehicles := v.app.snap.Vehicles
	if len(vehicles) == 0 {
		return nil
	}
	if v.cursor >= len(vehicles) {
		v.cursor = len(vehicles) - 1
	}
	return &vehicles[v.cursor]
}

func (v *vehiclesView) Update(msg tea.Msg) tea.Cmd {
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
		return nil
	}

	switch v.mode {
	case modeForm:
		switch key.String() {
		case "esc":
			v.mode = modeBrowse
			return nil
		case "enter":
			return v.submitForm()
		}
		return v.form.Update(key)
	case modeConfirmDelete:
		switch key.String() {
		case "y", "s":
			veh := v.selected()
			if veh == nil {
				v.mode = modeBrowse
				return nil
			}
			id, plate := veh.ID, veh.LicensePlate
			return v.app.runAction(fmt.Sprintf("Vehículo %s eliminado", plate), func(ctx context.Context) error {
				return v.app.svc.DeleteVehicle(ctx, id)
			})
		case "n", "esc":
			v.mode = modeBrowse
		}
		return nil
	}

	switch key.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.app.snap.Vehicles)-1 {
			v.cursor++
		}
	case "n":
		v.editing = ""
		v.form = buildVehicleForm(nil)
		v.mode = modeForm
	case "e":
		if veh := v.selected(); veh != nil {
			v.editing = veh.ID
			v.form = buildVehicleForm(veh)
			v.mode = modeForm
		}
	case "d":
		if v.selected() != nil {
			v.mode = modeConfirmDelete
		}
	}
	return nil
}

func buildVehicleForm(veh *model.Vehicle) *form {
	var plate, vmodel, year, color, corp, status string
	if veh != nil {
		plate, vmodel, color, corp, status = veh.LicensePlate, veh.Model, veh.Color, veh.Corporation, veh.Status
		if veh.Year > 0 {
			year = strconv.Itoa(veh.Year)
		}
	}
	return newForm(
		func() (string, textinput.Model) { return textField("Placa", "ABC-123", plate) },
		func() (string, textinput.Model) { return textField("Modelo", "", vmodel) },
		func() (string, textinput.Model) { return textField("Año", "", year) },
		func() (string, textinput.Model) { return textField("Color", "", color) },
		func() (string, textinput.Model) { return textField("Corporación", "", corp) },
		func() (string, textinput.Model) { return textField("Estado", "active", status) },
	)
}

func (v *vehiclesView) submitForm() tea.Cmd {
	in := api.VehicleInput{
		LicensePlate: v.form.value(vehicleFieldPlate),
		Model:        v.form.value(vehicleFieldModel),
		Color:        v.form.value(vehicleFieldColor),
		Corporation:  v.form.value(vehicleFieldCorporation),
		Status:       v.form.value(vehicleFieldStatus),
	}
	if raw := v.form.value(vehicleFieldYear); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			v.form.errMsg = "Año inválido"
			return nil
		}
		in.Year = year
	}
	if err := in.Validate(); err != nil {
		v.form.errMsg = err.Error()
		return nil
	}
	v.form.errMsg = ""
	id := v.editing
	if id == "" {
		return v.app.runAction(fmt.Sprintf("Vehículo %s creado", in.LicensePlate), func(ctx context.Context) error {
			return v.app.svc.CreateVehicle(ctx, in)
		})
	}
	return v.app.runAction(fmt.Sprintf("Vehículo %s actualizado", in.LicensePlate), func(ctx context.Context) error {
		return v.app.svc.UpdateVehicle(ctx, id, in)
	})
}

func (v *vehiclesView) View() string {
	switch v.mode {
	case modeForm:
		title := "Nuevo vehículo"
		if v.editing != "" {
			title = "Editar vehículo"
		}
		return v.form.View(title, "Enter → guardar    Tab → siguiente campo    Esc → cancelar")
	case modeConfirmDelete:
		veh := v.selected()
		if veh == nil {
			return ""
		}
		return fmt.Sprintf("¿Eliminar el vehículo %s?\n\n(s)í / (n)o", veh.LicensePlate)
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Vehículos")
	var rows []string
	for i, veh := range v.app.snap.Vehicles {
		line := veh.LicensePlate
		if veh.Model != "" {
			line += " · " + veh.Model
		}
		if veh.Year > 0 {
			line += fmt.Sprintf(" %d", veh.Year)
		}
		line += " · " + veh.Status
		if veh.AssignedWorkerID != "" {
			line += " · asignado"
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
		rows = append(rows, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("Sin vehículos"))
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("n → nuevo    e → editar    d → eliminar    Esc → menú")
	return strings.Join([]string{title, strings.Join(rows, "\n"), hint}, "\n\n")
}
