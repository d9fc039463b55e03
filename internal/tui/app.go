// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for bachadmin.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gusgushz/baches/internal/api"
	"github.com/gusgushz/baches/internal/config"
	"github.com/gusgushz/baches/internal/logbook"
	"github.com/gusgushz/baches/internal/model"
	"github.com/gusgushz/baches/internal/session"
)

// appState represents which "screen" we're on
type appState int

const (
	stateLoading     appState = iota // waiting for session hydration
	stateLogin                       // credentials form
	stateDashboard                   // main menu + KPI board
	stateWorkers                     // worker CRUD
	stateVehicles                    // vehicle CRUD
	stateAssignments                 // assignment list + wizard
	stateReports                     // report browse/edit
)

const (
	defaultRefreshInterval = 30 * time.Second
	actionTimeout          = 15 * time.Second
	snapshotTimeout        = 30 * time.Second
)

// Service is the backend surface the screens need. *api.Client is the
// production implementation; tests substitute a stub.
type Service interface {
	Login(ctx context.Context, email, password string) (model.UserProfile, string, error)
	Workers(ctx context.Context) ([]model.UserProfile, error)
	CreateWorker(ctx context.Context, in api.WorkerInput) error
	UpdateWorker(ctx context.Context, id string, in api.WorkerInput) error
	DeleteWorker(ctx context.Context, id string) error
	Vehicles(ctx context.Context) ([]model.Vehicle, error)
	CreateVehicle(ctx context.Context, in api.VehicleInput) error
	UpdateVehicle(ctx context.Context, id string, in api.VehicleInput) error
	DeleteVehicle(ctx context.Context, id string) error
	Assignments(ctx context.Context) ([]model.Assignment, error)
	CreateAssignment(ctx context.Context, in api.AssignmentInput) error
	UpdateAssignmentStatus(ctx context.Context, id string, status model.ProgressStatus) error
	DeleteAssignment(ctx context.Context, id string) error
	Reports(ctx context.Context, limit, skip int) ([]model.Report, error)
	UpdateReport(ctx context.Context, id string, in api.ReportInput) error
	DeleteReport(ctx context.Context, id string) error
}

// Warmer preloads the offline cache after a successful login.
type Warmer func(token string)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithWarmer installs the cache precache hook.
func WithWarmer(w Warmer) AppOption {
	return func(a *App) {
		if w != nil {
			a.warm = w
		}
	}
}

// WithRefreshInterval overrides the dashboard refresh interval.
func WithRefreshInterval(d time.Duration) AppOption {
	return func(a *App) {
		if d > 0 {
			a.refreshEvery = d
		}
	}
}

// Messages flowing through Update.

type hydratedMsg struct{}

type loginResultMsg struct {
	user     model.UserProfile
	token    string
	remember bool
	err      error
}

type snapshotMsg struct {
	gen  int
	snap snapshot
	err  error
}

type refreshTickMsg struct{ gen int }

// actionDoneMsg reports the outcome of a mutation (create/update/delete).
// refresh triggers a snapshot fetch so lists only change after the backend
// round-trips.
type actionDoneMsg struct {
	status  string
	err     error
	refresh bool
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	cfg     *config.Config
	svc     Service
	session *session.Store
	logbook *logbook.Logbook
	warm    Warmer

	mainMenu list.Model
	loading  spinner.Model

	login       *loginView
	workers     *workersView
	vehicles    *vehiclesView
	assignments *assignmentsView
	reports     *reportsView

	// Snapshot of backend data all screens render from. snapGen invalidates
	// in-flight fetches on refresh and logout so stale results are dropped.
	snap    snapshot
	snapGen int

	refreshEvery time.Duration
	pageSize     int
	statusMsg    string
	boardErr     string

	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp wires the screens around an authenticated backend service.
func NewApp(cfg *config.Config, store *session.Store, svc Service, lb *logbook.Logbook, opts ...AppOption) *App {
	items := []list.Item{
		menuItem{title: "Trabajadores", desc: "Altas, bajas y edición de cuadrillas"},
		menuItem{title: "Vehículos", desc: "Flota municipal"},
		menuItem{title: "Asignaciones", desc: "Trabajador ↔ vehículo"},
		menuItem{title: "Reportes", desc: "Baches reportados"},
		menuItem{title: "Cerrar sesión", desc: "Volver a la pantalla de acceso"},
		menuItem{title: "Salir", desc: "Cerrar bachadmin"},
	}
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "⬡ BACHES YUCATÁN"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	loading := spinner.New()
	loading.Spinner = spinner.Dot

	app := &App{
		state:        stateLoading,
		cfg:          cfg,
		svc:          svc,
		session:      store,
		logbook:      lb,
		mainMenu:     mainMenu,
		loading:      loading,
		refreshEvery: defaultRefreshInterval,
		pageSize:     100,
	}
	if cfg != nil {
		if s := cfg.RefreshInterval(); s > 0 {
			app.refreshEvery = time.Duration(s) * time.Second
		}
		if p := cfg.PageSize(); p > 0 {
			app.pageSize = p
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.login = newLoginView(app)
	app.workers = newWorkersView(app)
	app.vehicles = newVehiclesView(app)
	app.assignments = newAssignmentsView(app)
	app.reports = newReportsView(app)
	return app
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

// Init is called once when the program starts. The first thing that happens
// is session hydration; no screen is chosen until it finishes, so an
// expired-but-remembered session never flashes the dashboard.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.hydrateSession(), a.loading.Tick)
}

func (a *App) hydrateSession() tea.Cmd {
	store := a.session
	return func() tea.Msg {
		if store != nil {
			store.Hydrate()
		}
		return hydratedMsg{}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.loading, cmd = a.loading.Update(msg)
		if a.state == stateLoading || a.login.submitting {
			return a, cmd
		}
		return a, nil

	case hydratedMsg:
		if a.session != nil && a.session.Authenticated() {
			user := a.session.User()
			a.logInfo("Sesión restaurada · %s (%s)", user.FullName(), user.Role)
			return a.enterDashboard()
		}
		a.state = stateLogin
		return a, nil

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case snapshotMsg:
		if msg.gen != a.snapGen {
			// A refresh or logout happened while this fetch was in flight.
			return a, nil
		}
		if msg.err != nil {
			a.boardErr = msg.err.Error()
			a.logWarn("Actualización fallida: %v", msg.err)
		} else {
			a.boardErr = ""
			a.snap = msg.snap
		}
		return a, a.scheduleRefresh()

	case refreshTickMsg:
		if msg.gen != a.snapGen || a.session == nil || !a.session.Authenticated() {
			return a, nil
		}
		return a, a.fetchSnapshot()

	case actionDoneMsg:
		var cmds []tea.Cmd
		if msg.err != nil {
			a.statusMsg = msg.err.Error()
			a.logWarn("%v", msg.err)
		} else {
			a.statusMsg = msg.status
			if msg.status != "" {
				a.logInfo(msg.status)
			}
		}
		if msg.refresh {
			cmds = append(cmds, a.refresh())
		}
		if cmd := a.updateActiveView(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}
	}

	return a, a.updateActiveView(msg)
}

// handleGlobalKey processes keys that work on every screen. Returns handled
// = false when the active view should see the key instead.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return tea.Quit, true
	case "q":
		if a.state == stateDashboard {
			return tea.Quit, true
		}
	case "esc":
		// Views with an open form or confirmation consume esc themselves.
		if a.state != stateDashboard && a.state != stateLogin && !a.activeViewBusy() {
			a.state = stateDashboard
			a.statusMsg = ""
			return nil, true
		}
	case "r":
		if a.state == stateDashboard {
			a.statusMsg = "Actualizando..."
			return a.refresh(), true
		}
	case "enter":
		if a.state == stateDashboard {
			return a.handleMainMenuSelection(), true
		}
	}
	if a.state == stateDashboard {
		var cmd tea.Cmd
		a.mainMenu, cmd = a.mainMenu.Update(msg)
		return cmd, true
	}
	return nil, false
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() tea.Cmd {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return nil
	}
	a.statusMsg = ""
	switch item.title {
	case "Trabajadores":
		a.state = stateWorkers
		a.workers.open()
	case "Vehículos":
		a.state = stateVehicles
		a.vehicles.open()
	case "Asignaciones":
		a.state = stateAssignments
		a.assignments.open()
	case "Reportes":
		a.state = stateReports
		a.reports.open()
	case "Cerrar sesión":
		return a.logout()
	case "Salir":
		a.logInfo("Salida solicitada desde el menú")
		return tea.Quit
	}
	return nil
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	a.login.submitting = false
	if msg.err != nil {
		a.login.errMsg = msg.err.Error()
		a.logWarn("Acceso rechazado: %v", msg.err)
		return a, nil
	}
	if a.session != nil {
		a.session.Login(msg.user, msg.token, msg.remember)
	}
	a.logInfo("Sesión iniciada · %s (%s)", msg.user.FullName(), msg.user.Role)
	next, cmd := a.enterDashboard()
	if a.warm != nil {
		warm, token := a.warm, msg.token
		cmd = tea.Batch(cmd, func() tea.Msg {
			warm(token)
			return nil
		})
	}
	return next, cmd
}

func (a *App) enterDashboard() (tea.Model, tea.Cmd) {
	a.state = stateDashboard
	a.statusMsg = ""
	return a, a.refresh()
}

func (a *App) logout() tea.Cmd {
	a.snapGen++ // drop any in-flight snapshot
	a.snap = snapshot{}
	a.boardErr = ""
	if a.session != nil {
		a.session.Logout()
	}
	a.login = newLoginView(a)
	a.state = stateLogin
	a.logInfo("Sesión cerrada")
	return nil
}

// refresh invalidates in-flight fetches and starts a new one.
func (a *App) refresh() tea.Cmd {
	a.snapGen++
	return a.fetchSnapshot()
}

func (a *App) fetchSnapshot() tea.Cmd {
	gen := a.snapGen
	svc := a.svc
	limit := a.pageSize
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		snap, err := loadSnapshot(ctx, svc, limit)
		return snapshotMsg{gen: gen, snap: snap, err: err}
	}
}

func (a *App) scheduleRefresh() tea.Cmd {
	gen := a.snapGen
	return tea.Tick(a.refreshEvery, func(time.Time) tea.Msg {
		return refreshTickMsg{gen: gen}
	})
}

// runAction executes a mutation off the Update loop and reports back.
func (a *App) runAction(success string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: success, refresh: true}
	}
}

func (a *App) updateActiveView(msg tea.Msg) tea.Cmd {
	switch a.state {
	case stateLogin:
		return a.login.Update(msg)
	case stateWorkers:
		return a.workers.Update(msg)
	case stateVehicles:
		return a.vehicles.Update(msg)
	case stateAssignments:
		return a.assignments.Update(msg)
	case stateReports:
		return a.reports.Update(msg)
	}
	return nil
}

// activeViewBusy reports whether the active screen has a form or
// confirmation open that should capture esc.
func (a *App) activeViewBusy() bool {
	switch a.state {
	case stateWorkers:
		return a.workers.busy()
	case stateVehicles:
		return a.vehicles.busy()
	case stateAssignments:
		return a.assignments.busy()
	case stateReports:
		return a.reports.busy()
	}
	return false
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		leftWidth = width - 4
		rightWidth = 0
	}

	var content string
	switch a.state {
	case stateLoading:
		content = fmt.Sprintf("%s Restaurando sesión...", a.loading.View())
	case stateLogin:
		content = a.login.View()
	case stateDashboard:
		a.mainMenu.SetSize(max(20, leftWidth-4), max(10, a.height-14))
		content = a.mainMenu.View()
	case stateWorkers:
		content = a.workers.View()
	case stateVehicles:
		content = a.vehicles.View()
	case stateAssignments:
		content = a.assignments.View()
	case stateReports:
		content = a.reports.View()
	}
	return a.renderBoard(content, leftWidth, rightWidth)
}

func (a *App) renderBoard(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ BACHADMIN")
	if strings.TrimSpace(mainContent) == "" {
		mainContent = "Listo."
	}
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, leftWidth)).
		Render(lipgloss.NewStyle().Width(max(20, leftWidth-4)).Render(mainContent))

	var body string
	if rightWidth > 0 && a.state != stateLogin && a.state != stateLoading {
		right := a.renderKPIPanel(rightWidth - 4)
		rightBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, rightWidth)).
			Render(right)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	} else {
		body = leftBox
	}

	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
