// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"querydesk/cli/internal/keychain"
	"querydesk/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd displays a saved connection's DSN with credentials masked.
// This helps verify which database a connection points at without
// exposing sensitive credentials.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo <name>",
	Short: "Show a connection's DSN with credentials masked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		km, err := keychain.GetManager()
		if err != nil {
			pterm.Println("❌ Secure storage is not available on this system")
			return err
		}

		rawDSN, err := km.LoadConnectionDSN(name)
		if err != nil {
			pterm.Printf("⚠️  No stored credentials for %q\n", name)
			pterm.Println("   Please run: querydesk connect " + name)
			return nil
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Connection " + name)).
			WithPadding(1).
			Println(logging.Mask(rawDSN))
		pterm.Println()
		pterm.Println("To update this connection, run: querydesk connect " + name)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
