// Package server implements the local web dashboard: a small HTTP API
// over the progress file, catalog, snapshots and history, plus a
// WebSocket channel that pushes progress updates as they happen.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"

	"forge/internal/config"
	"forge/internal/history"
	"forge/internal/progress"
	"forge/pkg/catalog"
	"forge/pkg/manager"
	"forge/pkg/snapshot"
)

//go:embed index.html
var dashboardHTML []byte

// Server serves the forge dashboard.
type Server struct {
	addr         string
	progressPath string
	snapshotPath string
	historyPath  string
	pollInterval time.Duration
	schedule     string

	catalog  *catalog.Catalog
	registry *manager.Registry
	hub      *Hub
	cron     *cron.Cron
}

// New builds a server from the loaded configuration.
func New(cfg *config.Config, cat *catalog.Catalog, registry *manager.Registry) *Server {
	pollInterval := time.Duration(cfg.Dashboard.PollInterval) * time.Second
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	progressPath := cfg.Dashboard.ProgressPath
	if progressPath == "" {
		progressPath = config.ProgressPath()
	}

	return &Server{
		addr:         fmt.Sprintf("%s:%d", cfg.Dashboard.BindAddress, cfg.Dashboard.Port),
		progressPath: progressPath,
		snapshotPath: config.SnapshotPath(),
		historyPath:  config.HistoryPath(),
		pollInterval: pollInterval,
		schedule:     cfg.Dashboard.AutoSnapshotSchedule,
		catalog:      cat,
		registry:     registry,
		hub:          NewHub(),
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/progress", s.handleProgress)
	mux.HandleFunc("/api/packages", s.handlePackages)
	mux.HandleFunc("/api/snapshots", s.handleSnapshots)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/ws", s.hub.ServeWS)
	return mux
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run()
	defer s.hub.Stop()

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go s.watchProgress(watchCtx)

	if s.schedule != "" {
		if err := s.startScheduler(ctx); err != nil {
			return err
		}
		defer s.cron.Stop()
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// startScheduler registers the periodic snapshot job.
func (s *Server) startScheduler(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		store, err := snapshot.OpenStoreAt(s.snapshotPath)
		if err != nil {
			return
		}
		defer store.Close()
		_, _ = snapshot.CaptureAndSave(ctx, store, snapshot.TriggerScheduled, "scheduled", s.registry.Available()) //nolint:errcheck
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(dashboardHTML) //nolint:errcheck
}

// handleStatus reports the system, the available managers and the
// current run state in one document.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, err := progress.Read(s.progressPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type managerStatus struct {
		Name        string `json:"name"`
		DisplayName string `json:"display_name"`
		Type        string `json:"type"`
		Native      bool   `json:"native"`
	}

	var managers []managerStatus
	native := s.registry.Native()
	for _, mgr := range s.registry.Available() {
		managers = append(managers, managerStatus{
			Name:        mgr.Name(),
			DisplayName: mgr.DisplayName(),
			Type:        string(mgr.Type()),
			Native:      native != nil && mgr.Name() == native.Name(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"platform": runtime.GOOS,
		"managers": managers,
		"progress": state,
		"catalog":  s.catalog.Len(),
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	state, err := progress.Read(s.progressPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	type packageView struct {
		Name        string   `json:"name"`
		Package     string   `json:"package"`
		Category    string   `json:"category"`
		InstallType string   `json:"install_type"`
		Platforms   []string `json:"platforms,omitempty"`
		Notes       string   `json:"notes,omitempty"`
		Priority    string   `json:"priority"`
		Size        string   `json:"size,omitempty"`
		Manual      bool     `json:"manual"`
	}

	records := s.catalog.List(category)
	views := make([]packageView, 0, len(records))
	for _, rec := range records {
		views = append(views, packageView{
			Name:        rec.Name,
			Package:     rec.Package,
			Category:    rec.Category,
			InstallType: rec.InstallType,
			Platforms:   rec.Platforms,
			Notes:       rec.Notes,
			Priority:    rec.Priority,
			Size:        rec.Size,
			Manual:      rec.Manual(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": s.catalog.Categories(),
		"packages":   views,
	})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	store, err := snapshot.OpenStoreAt(s.snapshotPath)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot store busy")
		return
	}
	defer store.Close()

	snapshots, err := store.List(50, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type snapshotView struct {
		ID       string `json:"id"`
		Time     string `json:"time"`
		Label    string `json:"label,omitempty"`
		Trigger  string `json:"trigger"`
		Packages int    `json:"packages"`
	}

	views := make([]snapshotView, 0, len(snapshots))
	for _, snap := range snapshots {
		views = append(views, snapshotView{
			ID:       snap.ID,
			Time:     snap.FormatTime(),
			Label:    snap.Label,
			Trigger:  string(snap.Trigger),
			Packages: snap.PackageCount(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	store, err := history.OpenAt(s.historyPath)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "history store busy")
		return
	}
	defer store.Close()

	entries, err := store.List(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
