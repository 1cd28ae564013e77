// Command libraryd runs the library backend: an HTTP API over the
// Postgres-backed library store. It also ships a migrate subcommand that
// applies the database schema.
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/librarium/library-backend-go/config"
)

func main() {
	config.LoadEnv()

	rootCmd := &cobra.Command{
		Use:   "libraryd",
		Short: "Library backend server",
		Long: "libraryd serves the library HTTP API backed by Postgres. " +
			"Configuration is read from the environment (DATABASE_URL, LISTEN_ADDR, ADAPTER_TYPE).",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
