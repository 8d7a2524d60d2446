// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the QueryDesk CLI application.
// It implements subcommands for managing connections, running SQL, editing result
// rows, and browsing history and schema using the Cobra CLI framework. The package
// handles command parsing, execution, and provides a rich terminal UI with tables,
// spinners, and progress indicators.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
// It serves as the entry point for the QueryDesk CLI application.
var rootCmd = &cobra.Command{
	Use:           "querydesk",
	Short:         "QueryDesk CLI for administering PostgreSQL and MySQL databases",
	Long:          `QueryDesk is a command-line database administration tool: saved connections, a multi-statement query runner, editable result grids, query history, and schema browsing for PostgreSQL and MySQL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("querydesk %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
}
