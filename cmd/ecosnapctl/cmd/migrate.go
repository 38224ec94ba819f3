package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ecosnap/ecosnap/internal/db"
)

func MigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, driver, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			return db.RunMigrations(conn.DB, driver)
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, driver, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			return db.MigrateDown(conn.DB, driver)
		},
	})

	return migrateCmd
}
