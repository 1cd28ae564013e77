package main

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/librarium/library-backend-go/config"
)

//go:embed schema.sql
var schemaDDL string

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Creates the books, members and loans tables if they do not exist yet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := config.PostgresSQLDBConfig()
			defer func() { _ = db.Close() }()

			if _, err := db.ExecContext(cmd.Context(), schemaDDL); err != nil {
				return fmt.Errorf("applying schema failed: %w", err)
			}

			cmd.Println("schema applied")

			return nil
		},
	}
}
