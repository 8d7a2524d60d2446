// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"strings"

	"querydesk/cli/internal/inspect"
	"querydesk/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	tablesConnection string
	tablesDescribe   string
)

// tablesCmd lists tables on a connection, or describes one table's
// primary key with --describe.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables or describe a table's primary key",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := resolveConnectionName(tablesConnection)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		sess, desc, err := openSession(ctx, name)
		if err != nil {
			return errors.New(logging.PresentError("", err))
		}
		defer sess.Close()

		inspector := inspect.New(sess)

		if tablesDescribe != "" {
			info, err := inspector.Info(ctx, tablesDescribe)
			if err != nil {
				return errors.New(logging.PresentError("describe failed", err))
			}
			if len(info.PrimaryKeyCols) == 0 {
				pterm.Printf("%s: no primary key\n", tablesDescribe)
				return nil
			}
			pterm.Printf("%s: primary key (%s)\n", tablesDescribe, strings.Join(info.PrimaryKeyCols, ", "))
			return nil
		}

		tables, err := inspector.Tables(ctx)
		if err != nil {
			return errors.New(logging.PresentError("listing failed", err))
		}
		if len(tables) == 0 {
			pterm.Printf("No tables in %s\n", desc.Database)
			return nil
		}
		items := make([]pterm.BulletListItem, 0, len(tables))
		for _, t := range tables {
			items = append(items, pterm.BulletListItem{Level: 0, Text: t})
		}
		return pterm.DefaultBulletList.WithItems(items).Render()
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
	tablesCmd.Flags().StringVarP(&tablesConnection, "connection", "c", "", "Saved connection to inspect")
	tablesCmd.Flags().StringVar(&tablesDescribe, "describe", "", "Describe the named table instead of listing")
}
