// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strconv"

	"querydesk/cli/internal/config"
	"querydesk/cli/internal/history"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyClear bool
)

// historyCmd shows the query history: every attempted statement with its
// timing and row count, failures included (their row count is zero).
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently executed statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.NewStore()
		if err != nil {
			return err
		}

		if historyClear {
			if err := store.Clear(); err != nil {
				return err
			}
			pterm.Println("History cleared")
			return nil
		}

		limit := historyLimit
		if limit == 0 {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			limit = cfg.HistoryLimit
		}

		entries, err := store.Recent(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Println("No history yet. Run: querydesk run")
			return nil
		}

		data := pterm.TableData{{"At", "Connection", "Rows", "ms", "Statement"}}
		for _, e := range entries {
			data = append(data, []string{
				e.At.Format("2006-01-02 15:04:05"),
				e.Connection,
				strconv.Itoa(e.RowCount),
				fmt.Sprintf("%d", e.ElapsedMs),
				truncate(e.Statement, 60),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Number of entries to show (default from config)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Clear the history log")
}
