package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"librarysim/internal/catalog"
	"librarysim/internal/journal"
	"librarysim/internal/library"
	"librarysim/internal/membership"
	"librarysim/internal/telemetry"
	"librarysim/internal/wishlist"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the library HTTP API",
		Example: `  # Start on the configured address (default :8080)
  librarysim serve

  # Record events in Postgres and preload a catalog
  LIBRARYSIM_DATABASE_URL=postgres://localhost/library?sslmode=disable \
  LIBRARYSIM_SEED_FILE=books.csv librarysim serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Addr
			}

			tp, err := telemetry.NewProvider(ctx, a.cfg.Tracing)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("Tracer shutdown failed", "err", err)
				}
			}()

			j, closeJournal, err := openJournal(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer closeJournal()

			svc := library.NewService(catalog.New(), wishlist.New(), membership.NewRegistry(), j, a.logger,
				library.WithMeterProvider(tp.MeterProvider()),
			)
			if a.cfg.SeedFile != "" {
				rep, err := svc.ImportFile(ctx, a.cfg.SeedFile)
				if err != nil {
					return fmt.Errorf("seed catalog: %w", err)
				}
				a.logger.Info("Catalog seeded", "file", a.cfg.SeedFile, "titles", rep.Titles, "copies", rep.Copies)
			}

			limiter := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), a.cfg.RateLimit.Burst)
			server := &http.Server{
				Addr:              addr,
				Handler:           library.NewHandler(svc, a.logger).Routes(limiter),
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				a.logger.Info("Library API listening", "addr", addr, "tracing", tp.Enabled())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-ctx.Done():
				a.logger.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("Server shutdown failed", "err", err)
					return err
				}
				a.logger.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")

	return cmd
}

// openJournal uses Postgres when dsn is set and an in-memory journal
// otherwise.
func openJournal(ctx context.Context, dsn string) (journal.Journal, func(), error) {
	if dsn == "" {
		return journal.NewMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	pg := journal.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}
