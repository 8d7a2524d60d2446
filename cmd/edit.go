// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"querydesk/cli/internal/grid"
	"querydesk/cli/internal/logging"
	"querydesk/cli/internal/sqlscan"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	editConnection string
	editDatabase   string
	editTable      string
	editLimit      int
	editSets       []string
	editDryRun     bool
)

// editCmd fetches a page of rows from a table, applies cell edits, and
// reconciles them into one UPDATE per edited row. Rows with an "id"
// column are targeted by it; otherwise the WHERE clause matches every
// original column value, which can affect duplicate rows.
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit table cells and write the changes back",
	Long: `The edit command fetches rows from a table and applies cell edits given as
--set row:column=value (row positions are zero-based within the fetched page).
Each edited row produces one UPDATE, executed independently and in order; a
failing row does not roll back rows already updated.

Rows without an "id" column are matched by all of their original column
values. When the table holds duplicate rows, such an UPDATE affects every
matching row; a warning is printed but no detection is attempted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if editTable == "" {
			return errors.New("--table is required")
		}
		if len(editSets) == 0 {
			return errors.New("no edits given; use --set row:column=value")
		}
		name, err := resolveConnectionName(editConnection)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		sess, _, err := openSession(ctx, name)
		if err != nil {
			return errors.New(logging.PresentError("", err))
		}
		defer sess.Close()

		sourceSQL := fmt.Sprintf("SELECT * FROM %s LIMIT %d", editTable, editLimit)
		res, err := sess.Execute(ctx, sourceSQL, editDatabase)
		if err != nil {
			return errors.New(logging.PresentError("fetch failed", err))
		}

		es := grid.NewEditSession(res, sourceSQL, sqlscan.New())
		for _, spec := range editSets {
			row, column, value, err := parseSetSpec(spec)
			if err != nil {
				return err
			}
			if err := es.SetCell(row, column, value); err != nil {
				return err
			}
		}

		rec := &grid.Reconciler{
			Session:  sess,
			Database: editDatabase,
			OnRefresh: func() {
				pterm.Println("Saved. Refresh any open result views.")
			},
		}

		updates, err := rec.Plan(es)
		if err != nil {
			return err
		}
		for _, upd := range updates {
			if upd.AmbiguityWarning {
				pterm.Println(pterm.NewStyle(pterm.FgYellow).Sprintf(
					"⚠️  row %d has no id column; the UPDATE matches all rows with identical values", upd.Row))
			}
		}

		if editDryRun {
			for _, upd := range updates {
				pterm.Println(upd.SQL)
			}
			return nil
		}

		if err := rec.Apply(ctx, es); err != nil {
			return errors.New(logging.PresentError("save failed", err))
		}
		pterm.Printf("✅ %d row(s) updated\n", len(updates))
		return nil
	},
}

// parseSetSpec parses "row:column=value" into its parts. The literal
// value "NULL" sets the cell to SQL NULL.
func parseSetSpec(spec string) (int, string, any, error) {
	colon := strings.Index(spec, ":")
	eq := strings.Index(spec, "=")
	if colon < 0 || eq < colon {
		return 0, "", nil, fmt.Errorf("invalid --set %q; expected row:column=value", spec)
	}
	row, err := strconv.Atoi(spec[:colon])
	if err != nil {
		return 0, "", nil, fmt.Errorf("invalid row in --set %q: %w", spec, err)
	}
	column := spec[colon+1 : eq]
	if column == "" {
		return 0, "", nil, fmt.Errorf("invalid --set %q; empty column", spec)
	}
	raw := spec[eq+1:]
	if raw == "NULL" {
		return row, column, nil, nil
	}
	return row, column, raw, nil
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editConnection, "connection", "c", "", "Saved connection to execute against")
	editCmd.Flags().StringVarP(&editDatabase, "database", "d", "", "Target database/schema overriding the connection default")
	editCmd.Flags().StringVarP(&editTable, "table", "t", "", "Table to fetch and edit")
	editCmd.Flags().IntVarP(&editLimit, "limit", "n", 100, "Maximum rows to fetch")
	editCmd.Flags().StringArrayVar(&editSets, "set", nil, "Cell edit as row:column=value (repeatable)")
	editCmd.Flags().BoolVar(&editDryRun, "dry-run", false, "Print the planned UPDATE statements without executing them")
}
