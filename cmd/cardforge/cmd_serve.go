package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/meur/cardforge/internal/api"
	"github.com/meur/cardforge/internal/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored curation runs over HTTP",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("port", getEnv("PORT", "8080"), "Server port")
	f.String("db", getEnv("DB_PATH", "./cardforge.db"), "SQLite database path")
	f.String("static", "", "Directory of static frontend files to serve at /")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	port, _ := cmd.Flags().GetString("port")
	dbPath, _ := cmd.Flags().GetString("db")
	staticDir, _ := cmd.Flags().GetString("static")

	store, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	srv := api.New(store, log)
	if staticDir != "" {
		api.FileServer(srv.Router(), "/", http.Dir(staticDir))
	}

	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("cardforge API starting", "addr", "http://localhost:"+port, "db", dbPath)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
