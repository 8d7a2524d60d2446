// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"querydesk/cli/internal/connstore"
	"querydesk/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	removeConnection string
)

// connectionsCmd lists saved connections and removes them on request.
var connectionsCmd = &cobra.Command{
	Use:   "connections",
	Short: "List or remove saved connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := connstore.NewStore()
		if err != nil {
			return err
		}

		if removeConnection != "" {
			if err := store.Remove(removeConnection); err != nil {
				return err
			}
			// Best effort: the descriptor is gone either way.
			if km, err := keychain.GetManager(); err == nil {
				_ = km.DeleteConnectionDSN(removeConnection)
			}
			pterm.Printf("Removed connection %q\n", removeConnection)
			return nil
		}

		conns, err := store.List()
		if err != nil {
			return err
		}
		if len(conns) == 0 {
			pterm.Println("No saved connections. Run: querydesk connect <name>")
			return nil
		}

		data := pterm.TableData{{"Name", "Engine", "Host", "Port", "Database", "Connected"}}
		for _, c := range conns {
			connected := "no"
			if c.LastConnected {
				connected = "yes"
			}
			data = append(data, []string{c.Name, string(c.Engine), c.Host, c.Port, c.Database, connected})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(connectionsCmd)
	connectionsCmd.Flags().StringVar(&removeConnection, "remove", "", "Remove the named connection")
}
