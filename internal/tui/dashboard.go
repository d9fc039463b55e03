package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gusgushz/baches/internal/model"
)

// snapshot is the backend data every screen renders from. One fetch feeds
// the KPI board and all four entity lists.
type snapshot struct {
	Workers     []model.UserProfile
	Vehicles    []model.Vehicle
	Assignments []model.Assignment
	Reports     []model.Report
	FetchedAt   time.Time
}

// loadSnapshot fetches the four entity lists sequentially. The first failure
// aborts: a half-empty board is worse than a stale one.
func loadSnapshot(ctx context.Context, svc Service, reportLimit int) (snapshot, error) {
	var snap snapshot
	var err error
	if snap.Workers, err = svc.Workers(ctx); err != nil {
		return snapshot{}, err
	}
	if snap.Vehicles, err = svc.Vehicles(ctx); err != nil {
		return snapshot{}, err
	}
	if snap.Assignments, err = svc.Assignments(ctx); err != nil {
		return snapshot{}, err
	}
	if snap.Reports, err = svc.Reports(ctx, reportLimit, 0); err != nil {
		return snapshot{}, err
	}
	snap.FetchedAt = time.Now()
	return snap, nil
}

func countBySeverity(reports []model.Report) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, r := range reports {
		counts[r.Severity]++
	}
	return counts
}

func countByStatus(reports []model.Report) map[string]int {
	counts := make(map[string]int)
	for _, r := range reports {
		status := strings.TrimSpace(strings.ToLower(r.Status))
		if status == "" {
			status = "sin estado"
		}
		counts[status]++
	}
	return counts
}

func countByCity(reports []model.Report) map[string]int {
	counts := make(map[string]int)
	for _, r := range reports {
		city := strings.TrimSpace(r.City)
		if city == "" {
			city = "Sin ciudad"
		}
		counts[city]++
	}
	return counts
}

func countByProgress(assignments []model.Assignment) map[model.ProgressStatus]int {
	counts := make(map[model.ProgressStatus]int)
	for _, a := range assignments {
		counts[a.ProgressStatus]++
	}
	return counts
}

// topCities returns up to n (city, count) pairs ordered by count descending,
// ties broken alphabetically so the board does not jitter between refreshes.
func topCities(reports []model.Report, n int) []string {
	counts := countByCity(reports)
	cities := make([]string, 0, len(counts))
	for city := range counts {
		cities = append(cities, city)
	}
	sort.Slice(cities, func(i, j int) bool {
		if counts[cities[i]] != counts[cities[j]] {
			return counts[cities[i]] > counts[cities[j]]
		}
		return cities[i] < cities[j]
	})
	if len(cities) > n {
		cities = cities[:n]
	}
	lines := make([]string, 0, len(cities))
	for _, city := range cities {
		lines = append(lines, fmt.Sprintf("  %s: %d", city, counts[city]))
	}
	return lines
}

func (a *App) renderKPIPanel(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Tablero")

	snap := a.snap
	severity := countBySeverity(snap.Reports)
	progress := countByProgress(snap.Assignments)

	lines := []string{
		fmt.Sprintf("Trabajadores: %d", len(snap.Workers)),
		fmt.Sprintf("Vehículos: %d", len(snap.Vehicles)),
		fmt.Sprintf("Asignaciones: %d", len(snap.Assignments)),
		fmt.Sprintf("Reportes: %d", len(snap.Reports)),
		"",
		"Reportes por severidad",
		fmt.Sprintf("  alta %d · media %d · baja %d",
			severity[model.SeverityHigh], severity[model.SeverityMedium], severity[model.SeverityLow]),
		"",
		"Asignaciones por avance",
		fmt.Sprintf("  pendientes %d · en curso %d", progress[model.ProgressNotStarted], progress[model.ProgressInProgress]),
		fmt.Sprintf("  completadas %d · en pausa %d", progress[model.ProgressCompleted], progress[model.ProgressOnHold]),
	}
	if cities := topCities(snap.Reports, 3); len(cities) > 0 {
		lines = append(lines, "", "Reportes por ciudad")
		lines = append(lines, cities...)
	}
	if !snap.FetchedAt.IsZero() {
		lines = append(lines, "", fmt.Sprintf("Actualizado %s", snap.FetchedAt.Format("15:04:05")))
	}
	if a.boardErr != "" {
		lines = append(lines, fmt.Sprintf("⚠ %s", a.boardErr))
	}

	body := lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}
