package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gusgushz/baches/internal/api"
	"github.com/gusgushz/baches/internal/model"
	"github.com/gusgushz/baches/internal/normalize"
)

type reportsMode int

const (
	reportsBrowse reportsMode = iota
	reportsDetail
	reportsEdit
	reportsConfirmDelete
)

// reportSort is one of the list orderings cycled with the o key.
type reportSort int

const (
	sortByDate reportSort = iota
	sortBySeverity
	sortByDescription
	sortByWorker
	sortByVehicle
	sortModeCount
)

func (s reportSort) label() string {
	switch s {
	case sortBySeverity:
		return "severidad"
	case sortByDescription:
		return "descripción"
	case sortByWorker:
		return "trabajador"
	case sortByVehicle:
		return "vehículo"
	default:
		return "fecha"
	}
}

const (
	reportFieldDescription = iota
	reportFieldSeverity
	reportFieldStatus
	reportFieldComments
)

// reportsView browses, edits and deletes pothole reports.
type reportsView struct {
	app      *App
	mode     reportsMode
	cursor   int
	severity model.Severity // "" = all
	sortMode reportSort
	editing  string
	form     *form
}

func newReportsView(app *App) *reportsView {
	return &reportsView{app: app}
}

func (v *reportsView) open() {
	v.mode = reportsBrowse
	v.cursor = 0
}

func (v *reportsView) busy() bool { return v.mode != reportsBrowse }

// visible applies the severity filter and the active sort.
func (v *reportsView) visible() []model.Report {
	return sortReports(filterBySeverity(v.app.snap.Reports, v.severity), v.sortMode)
}

func (v *reportsView) selected() *model.Report {
	items := v.visible()
	if len(items) == 0 {
		return nil
	}
	if v.cursor >= len(items) {
		v.cursor = len(items) - 1
	}
	return &items[v.cursor]
}

// filterBySeverity keeps reports matching sev; empty keeps everything.
func filterBySeverity(reports []model.Report, sev model.Severity) []model.Report {
	if sev == "" {
		return reports
	}
	var out []model.Report
	for _, r := range reports {
		if r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}

// sortReports returns a sorted copy; the snapshot order is never mutated.
func sortReports(reports []model.Report, mode reportSort) []model.Report {
	out := make([]model.Report, len(reports))
	copy(out, reports)
	switch mode {
	case sortBySeverity:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		})
	case sortByDescription:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Description) < strings.ToLower(out[j].Description)
		})
	case sortByWorker:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(reportWorker(out[i])) < strings.ToLower(reportWorker(out[j]))
		})
	case sortByVehicle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(reportVehicle(out[i])) < strings.ToLower(reportVehicle(out[j]))
		})
	default: // newest first
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedTime().After(out[j].CreatedTime())
		})
	}
	return out
}

func reportWorker(r model.Report) string {
	if r.ReportedByWorker == nil {
		return ""
	}
	return strings.TrimSpace(r.ReportedByWorker.Name + " " + r.ReportedByWorker.Lastname)
}

func reportVehicle(r model.Report) string {
	if r.ReportedByVehicle == nil {
		return ""
	}
	return r.ReportedByVehicle.LicensePlate
}

func (v *reportsView) Update(msg tea.Msg) tea.Cmd {
	if done, ok := msg.(actionDoneMsg); ok {
		if done.err == nil && v.mode != reportsBrowse {
			v.mode = reportsBrowse
		}
		if done.err != nil && v.mode == reportsEdit && v.form != nil {
			v.form.errMsg = done.err.Error()
		}
		if done.err != nil && v.mode == reportsConfirmDelete {
			v.mode = reportsBrowse
		}
		return nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch v.mode {
	case reportsDetail:
		switch key.String() {
		case "esc", "enter":
			v.mode = reportsBrowse
		case "e":
			return v.beginEdit()
		}
		return nil
	case reportsEdit:
		switch key.String() {
		case "esc":
			v.mode = reportsBrowse
			return nil
		case "enter":
			return v.submitEdit()
		}
		return v.form.Update(key)
	case reportsConfirmDelete:
		switch key.String() {
		case "y", "s":
			r := v.selected()
			if r == nil {
				v.mode = reportsBrowse
				return nil
			}
			id := r.ID
			return v.app.runAction("Reporte eliminado", func(ctx context.Context) error {
				return v.app.svc.DeleteReport(ctx, id)
			})
		case "n", "esc":
			v.mode = reportsBrowse
		}
		return nil
	}

	switch key.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.visible())-1 {
			v.cursor++
		}
	case "f":
		v.severity = nextSeverityFilter(v.severity)
		v.cursor = 0
	case "o":
		v.sortMode = (v.sortMode + 1) % sortModeCount
		v.cursor = 0
	case "enter":
		if v.selected() != nil {
			v.mode = reportsDetail
		}
	case "e":
		return v.beginEdit()
	case "d":
		return v.beginDelete()
	}
	return nil
}

// nextSeverityFilter cycles all → high → medium → low → all.
func nextSeverityFilter(sev model.Severity) model.Severity {
	switch sev {
	case "":
		return model.SeverityHigh
	case model.SeverityHigh:
		return model.SeverityMedium
	case model.SeverityMedium:
		return model.SeverityLow
	default:
		return ""
	}
}

func (v *reportsView) beginEdit() tea.Cmd {
	r := v.selected()
	if r == nil {
		return nil
	}
	v.editing = r.ID
	v.form = newForm(
		func() (string, textinput.Model) { return textField("Descripción", "", r.Description) },
		func() (string, textinput.Model) { return textField("Severidad", "alta / media / baja", string(r.Severity)) },
		func() (string, textinput.Model) { return textField("Estado", "", r.Status) },
		func() (string, textinput.Model) { return textField("Comentarios", "", r.Comments) },
	)
	v.mode = reportsEdit
	return nil
}

// beginDelete opens the confirmation, except for supervisors, who the
// backend does not allow to delete reports.
func (v *reportsView) beginDelete() tea.Cmd {
	if v.selected() == nil {
		return nil
	}
	if user := v.app.session.User(); user != nil && user.Role == model.RoleSupervisor {
		v.app.statusMsg = "Los supervisores no pueden eliminar reportes"
		return nil
	}
	v.mode = reportsConfirmDelete
	return nil
}

func (v *reportsView) submitEdit() tea.Cmd {
	in := api.ReportInput{
		Description: v.form.value(reportFieldDescription),
		Severity:    normalize.Severity(v.form.value(reportFieldSeverity)),
		Status:      v.form.value(reportFieldStatus),
		Comments:    v.form.value(reportFieldComments),
	}
	if in.Description == "" {
		v.form.errMsg = "Descripción requerida"
		return nil
	}
	v.form.errMsg = ""
	id := v.editing
	return v.app.runAction("Reporte actualizado", func(ctx context.Context) error {
		return v.app.svc.UpdateReport(ctx, id, in)
	})
}

func (v *reportsView) View() string {
	switch v.mode {
	case reportsDetail:
		return v.viewDetail()
	case reportsEdit:
		return v.form.View("Editar reporte", "Enter → guardar    Tab → siguiente campo    Esc → cancelar")
	case reportsConfirmDelete:
		r := v.selected()
		if r == nil {
			return ""
		}
		return fmt.Sprintf("¿Eliminar el reporte %q?\n\n(s)í / (n)o", shorten(r.Description, 50))
	}

	filterLabel := "todas"
	if v.severity != "" {
		filterLabel = string(v.severity)
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("Reportes · severidad: %s · orden: %s", filterLabel, v.sortMode.label()))

	var rows []string
	for i, r := range v.visible() {
		line := fmt.Sprintf("[%s] %s", r.Severity, shorten(r.Description, 48))
		if r.City != "" {
			line += " · " + r.City
		}
		if ts := r.CreatedTime(); !ts.IsZero() {
			line += " · " + ts.Format("2006-01-02")
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
		rows = append(rows, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("Sin reportes"))
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("Enter → detalle    e → editar    d → eliminar    f → filtro    o → orden    Esc → menú")
	return strings.Join([]string{title, strings.Join(rows, "\n"), hint}, "\n\n")
}

func (v *reportsView) viewDetail() string {
	r := v.selected()
	if r == nil {
		return ""
	}
	lines := []string{
		"Descripción: " + r.Description,
		fmt.Sprintf("Severidad: %s · Estado: %s", r.Severity, r.Status),
	}
	address := strings.TrimSpace(strings.Join(nonEmpty(r.Street, r.Neighborhood, r.City, r.State, r.PostalCode), ", "))
	if address != "" {
		lines = append(lines, "Dirección: "+address)
	}
	if r.Location != nil {
		lines = append(lines, fmt.Sprintf("Ubicación: %.6f, %.6f", r.Location.Lat, r.Location.Lng))
	}
	if worker := reportWorker(*r); worker != "" {
		lines = append(lines, "Reportado por: "+worker)
	}
	if plate := reportVehicle(*r); plate != "" {
		lines = append(lines, "Vehículo: "+plate)
	}
	if r.Comments != "" {
		lines = append(lines, "Comentarios: "+r.Comments)
	}
	if len(r.Images) > 0 {
		lines = append(lines, fmt.Sprintf("Imágenes: %d adjuntas", len(r.Images)))
	}
	if ts := r.CreatedTime(); !ts.IsZero() {
		lines = append(lines, "Creado: "+ts.Format("2006-01-02 15:04"))
	}
	head := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).Render("Detalle del reporte")
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("e → editar    Esc → volver")
	return strings.Join([]string{head, strings.Join(lines, "\n"), hint}, "\n\n")
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

func shorten(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}
