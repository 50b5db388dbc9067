package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/session"
	"github.com/warp/payroll-engine/store/sqlite"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

// serve wires the store, the session manager, the refresher and the router,
// then runs until SIGINT/SIGTERM.
func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	m := metrics.New(metrics.DefaultConfig())

	handler := api.NewHandler(store, cfg.Defaults)
	handler.Logger = logger.Component("api")
	handler.Metrics = m
	handler.AllowedOrigins = cfg.AllowedOrigins
	handler.BaseContext = ctx

	manager := session.NewManager(
		session.WithCalendar(handler.Calendar()),
		session.WithLogger(logger.Component("session")),
		session.WithRecorder(m),
		session.WithLocation(loc),
	)
	refresher := session.NewRefresher(manager.RefreshTick(handler.Rates), manager.Active, logger.Component("refresher"))
	refresher.Interval = cfg.RefreshInterval
	refresher.Recorder = m

	handler.Sessions = manager
	handler.Refresher = refresher

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "database", cfg.DatabasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	refresher.Stop()
	if done, ok := manager.Stop(); ok {
		entry := sqlite.Entry{ID: done.SessionID, Input: done.Input, Description: done.Description, CreatedAt: time.Now()}
		if err := store.SaveEntry(context.Background(), entry); err != nil {
			logger.Error("failed to store session on shutdown", "session_id", done.SessionID, "error", err)
		} else {
			logger.Info("session stored on shutdown", "session_id", done.SessionID)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dbPath), 0o755)
}
