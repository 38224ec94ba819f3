package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ecosnap/ecosnap/cmd/ecosnapctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ecosnapctl",
		Short:        "Admin tools for the EcoSnap API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
