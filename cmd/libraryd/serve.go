package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/librarium/library-backend-go/api"
	"github.com/librarium/library-backend-go/config"
	"github.com/librarium/library-backend-go/librarystore/oteladapters"
	"github.com/librarium/library-backend-go/librarystore/postgresengine"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the library HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		"libraryd", slog.NewJSONHandler(os.Stdout, nil))

	library, closeDB, err := buildLibrary(ctx, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	server := api.NewServer(library, api.WithContextualLogger(logger))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Listen(config.ListenAddress())
	}()

	logger.InfoContext(ctx, "listening", "address", config.ListenAddress())

	select {
	case err := <-serveErr:
		return err
	case sig := <-shutdown:
		logger.InfoContext(ctx, "shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

// buildLibrary constructs the store with the adapter selected by ADAPTER_TYPE.
func buildLibrary(
	ctx context.Context,
	logger *oteladapters.SlogBridgeLogger,
) (*postgresengine.Library, func(), error) {

	options := []postgresengine.Option{postgresengine.WithContextualLogger(logger)}

	switch adapterType := config.AdapterType(); adapterType {
	case "pgx.pool":
		pool, err := pgxpool.NewWithConfig(ctx, config.PostgresPGXPoolConfig())
		if err != nil {
			return nil, nil, err
		}

		library, err := postgresengine.NewLibraryFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return library, pool.Close, nil

	case "sql.db":
		db := config.PostgresSQLDBConfig()

		library, err := postgresengine.NewLibraryFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return library, func() { _ = db.Close() }, nil

	case "sqlx.db":
		db := config.PostgresSQLXConfig()

		library, err := postgresengine.NewLibraryFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return library, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown adapter type: %s", adapterType)
	}
}
