// Command sweetshop serves the vendor/sweet catalog over HTTP.
//
//	sweetshop            same as "serve"
//	sweetshop serve      apply the schema, then serve until SIGINT/SIGTERM
//	sweetshop migrate    apply the schema and exit
//	sweetshop seed       reset the store to the sample catalog
package main

import (
	"fmt"
	"os"

	"github.com/deppfellow/sweetshop/internal/config"
	"github.com/deppfellow/sweetshop/internal/logger"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sweetshop",
		Short:         "Vendors, sweets and their priced listings over HTTP/JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := newServeCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCmd(), newSeedCmd())

	return root
}

// bootstrap loads the config, starts logging and opens the database.
//
// The returned cleanup flushes New Relic; the caller owns closing the server.
func bootstrap() (*server.Server, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return nil, nil, err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger service:", err)
		return nil, nil, err
	}
	cleanup := loggerService.Shutdown

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		cleanup()
		return nil, nil, err
	}

	return srv, cleanup, nil
}

// fail logs err on the server logger and returns it for cobra.
func fail(log *zerolog.Logger, err error, msg string) error {
	log.Error().Err(err).Msg(msg)
	return err
}
