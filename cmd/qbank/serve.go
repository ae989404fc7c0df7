package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	api "github.com/mind-engage/mindengage-qbank/internal/api/http"
	auth "github.com/mind-engage/mindengage-qbank/internal/auth/middleware"
	"github.com/mind-engage/mindengage-qbank/internal/events"
	"github.com/mind-engage/mindengage-qbank/internal/generation"
	"github.com/mind-engage/mindengage-qbank/internal/materials"
	"github.com/mind-engage/mindengage-qbank/internal/qbank"
	"github.com/mind-engage/mindengage-qbank/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		users := auth.NewUserStore(a.db)
		if err := users.EnsureAdmin(ctx, a.cfg.AdminUser, a.cfg.AdminPassHash); err != nil {
			return err
		}

		blobs, err := storage.NewFSStore(a.cfg.BlobBasePath)
		if err != nil {
			return err
		}
		repo := events.NewEventRepo(a.db)
		store := qbank.NewSQLStore(a.db, a.driver)
		deps := api.Deps{
			Config: a.cfg,
			DB:     a.db,
			Log:    a.log,
			Auth:   auth.NewAuthService(a.cfg.AuthHMACSecret, a.cfg.TokenTTL),
			Users:  users,
			Engine: qbank.NewEngine(store, a.log, qbank.WithEvents(repo)),
			Events: repo,
		}

		// Serving question sets does not need a generator; without one the
		// generation routes are left unmounted.
		if p, err := a.provider(ctx); err != nil {
			a.log.Warn("generation disabled", "err", err)
		} else {
			g := a.cfg.Generation
			deps.Generator = generation.NewOrchestrator(p, store, blobs, a.log, repo, generation.Options{
				Concurrency:          g.Concurrency,
				MaxQuestionsPerTopic: g.MaxQuestionsPerTopic,
				MaxTokens:            g.MaxTokens,
			})
			deps.Materials = materials.NewService(a.db, p, blobs, a.log)
		}

		srv := &http.Server{
			Addr:              a.cfg.HTTPAddr,
			Handler:           api.NewRouter(deps),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errc := make(chan error, 1)
		go func() {
			a.log.Info("listening", "addr", a.cfg.HTTPAddr, "mode", a.cfg.Mode, "db", a.driver)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
