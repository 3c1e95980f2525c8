// Package cmd defines and implements the CLI commands for the bookdex executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookdex",
		Short: "Enriches ISBN-only rows of a Notion book database.",
		Long: `bookdex finds rows in the configured Notion book database that carry
only an ISBN, resolves metadata for each from Google Books with a Goodreads
fallback, scrapes ratings, genres, series, and availability from the detail
page, and writes the merged record back, creating series and genre pages as
needed.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bookdex.yaml)")

	cmd.AddCommand(newEnrichCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
