package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finwell-app/finwell/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			defer closeStore(store)

			fmt.Println(cli.SuccessStyle.Render("Database schema is up to date"))
			return nil
		},
	}
}
