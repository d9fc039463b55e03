// cmd/bachadmin/main.go
//
// This is the entry point for the bachadmin terminal client.
//
// Flow:
// 1. Bootstrap ~/.bachadmin (config, logs, session, cache)
// 2. Wire the offline cache under the REST client
// 3. Launch the TUI; session hydration decides login vs dashboard

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gusgushz/baches/internal/api"
	"github.com/gusgushz/baches/internal/cache"
	"github.com/gusgushz/baches/internal/config"
	"github.com/gusgushz/baches/internal/logbook"
	"github.com/gusgushz/baches/internal/session"
	"github.com/gusgushz/baches/internal/tui"
)

func main() {
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving home directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitAdminDir(home); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s directory: %v\n", config.AdminDir, err)
		os.Exit(1)
	}

	cfg, err := config.New(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// A broken logbook degrades to silence; it never blocks startup.
	lb, err := logbook.New(filepath.Join(cfg.LogsDir(), "bachadmin.log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logbook unavailable: %v\n", err)
		lb = nil
	}
	lb.Info("bachadmin iniciado · backend %s", cfg.BackendURL())

	store := session.NewStore(cfg.SessionDir(), lb)

	var clientOpts []api.Option
	var appOpts []tui.AppOption
	if cfg.File.Cache.Enabled {
		ttl := time.Duration(cfg.File.Cache.TTLMinutes) * time.Minute
		transport, err := cache.New(nil, cfg.CacheDir(), ttl, cfg.File.Cache.MaxEntries, lb)
		if err != nil {
			lb.Warn("cache deshabilitado: %v", err)
		} else {
			clientOpts = append(clientOpts, api.WithTransport(transport))
			base := cfg.BackendURL()
			appOpts = append(appOpts, tui.WithWarmer(func(token string) {
				transport.Warm(base, token, cache.PrecachePaths)
			}))
		}
	}

	client := api.New(cfg.BackendURL(), store.Token, lb, clientOpts...)
	app := tui.NewApp(cfg, store, client, lb, appOpts...)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	lb.Info("bachadmin cerrado")
}
