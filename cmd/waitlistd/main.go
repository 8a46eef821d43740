/*
main.go - Application entry point

PURPOSE:
  The waitlistd binary has two modes:

    waitlistd run     Execute one full reconciliation run against the
                      configured roster file and print the report. This is
                      the periodic batch job.

    waitlistd serve   Start the HTTP report surface, from which runs can be
                      triggered and the member table inspected.

CONFIGURATION:
  Environment (a .env file in the working directory is honored):
    P1_LIST_PATH    SQLite database path        (default: waitlist.db)
    ROSTER_PATH     Roster snapshot CSV         (default: Data/update.csv)
    API_BASE_URL    External hours source       (default: https://api.vatsim.net)
    HOURS_STRATEGY  windowed | snapshot         (default: windowed)
    PACE_INTERVAL   Min spacing between fetches (default: 7s)
    PORT            HTTP port for serve         (default: 8080)
    APP_ENV         production switches logs to JSON
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/waitlist-engine/api"
	"github.com/warp/waitlist-engine/config"
	"github.com/warp/waitlist-engine/feed"
	"github.com/warp/waitlist-engine/logger"
	"github.com/warp/waitlist-engine/roster"
	"github.com/warp/waitlist-engine/store/sqlite"
	"github.com/warp/waitlist-engine/vatsim"
)

const programName = "waitlistd"

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Waitlist roster reconciliation engine",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(runCommand(), serveCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps is everything a command needs, built once per invocation and torn
// down on exit. No module-level singletons.
type deps struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	store *sqlite.Store
	orch  *roster.Orchestrator
}

func setup(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.New(programName)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}

	client := vatsim.NewClient(cfg.APIBaseURL, vatsim.NewPacer(cfg.PaceInterval), log)
	provider, err := vatsim.NewProvider(cfg.Strategy(), client)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &deps{
		cfg:   cfg,
		log:   log,
		store: store,
		orch:  roster.NewOrchestrator(store, provider, log),
	}, nil
}

func (d *deps) close() {
	d.store.Close()
	d.log.Sync()
}

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one reconciliation run and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			d, err := setup(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			entries, err := feed.LoadFile(d.cfg.RosterPath)
			if err != nil {
				return err
			}

			report, err := d.orch.Run(ctx, entries)
			if err != nil {
				return err
			}
			report.Render(os.Stdout)
			return nil
		},
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP report surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			d, err := setup(ctx)
			if err != nil {
				return err
			}
			defer d.close()

			loadRoster := func() ([]roster.RosterEntry, error) {
				return feed.LoadFile(d.cfg.RosterPath)
			}
			handler := api.NewHandler(d.store, d.orch, loadRoster, d.log)

			server := &http.Server{
				Addr:        fmt.Sprintf(":%d", d.cfg.Port),
				Handler:     api.NewRouter(handler),
				ReadTimeout: 15 * time.Second,
				// Triggered runs block on paced external fetches; give
				// responses room to finish.
				WriteTimeout: 30 * time.Minute,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				d.log.Infow("server starting", "addr", server.Addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			d.log.Info("shutting down server")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
