package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; every subcommand hangs off it via init.
var rootCmd = &cobra.Command{
	Use:   "authnctl",
	Short: "Manage the Conjur authentication service",
	Long: `authnctl manages the Conjur authentication service: the server process,
the database schema, organization accounts and their signing keys, and
role credentials.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
