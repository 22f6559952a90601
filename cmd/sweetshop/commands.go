package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/sweetshop/internal/handler"
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/router"
	"github.com/deppfellow/sweetshop/internal/service"
	"github.com/spf13/cobra"
)

const (
	migrateTimeout  = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply the schema and serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := migrate(cmd.Context(), srv.DB.Migrate); err != nil {
				_ = srv.DB.Close()
				return fail(srv.Logger, err, "failed to migrate database")
			}

			repos := repository.NewRepositories(srv.DB)
			services := service.NewServices(srv, repos)
			srv.SetupHTTPServer(router.NewRouter(srv, handler.NewHandlers(srv, services)))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case err := <-errCh:
				_ = srv.DB.Close()
				if err != nil {
					return fail(srv.Logger, err, "failed to start server")
				}
				return nil
			case <-ctx.Done():
			}

			srv.Logger.Info().Msg("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fail(srv.Logger, err, "server forced to shutdown")
			}

			srv.Logger.Info().Msg("server exited properly")
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()
			defer srv.DB.Close()

			if err := migrate(cmd.Context(), srv.DB.Migrate); err != nil {
				return fail(srv.Logger, err, "failed to migrate database")
			}
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace every vendor and sweet with the sample catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, cleanup, err := bootstrap()
			if err != nil {
				return err
			}
			defer cleanup()
			defer srv.DB.Close()

			ctx := cmd.Context()
			if err := migrate(ctx, srv.DB.Migrate); err != nil {
				return fail(srv.Logger, err, "failed to migrate database")
			}

			seeder := service.NewSeedService(srv, repository.NewRepositories(srv.DB))
			if _, err := seeder.Seed(ctx); err != nil {
				return fail(srv.Logger, err, "failed to seed database")
			}
			return nil
		},
	}
}

func migrate(parent context.Context, run func(context.Context) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, migrateTimeout)
	defer cancel()
	return run(ctx)
}
