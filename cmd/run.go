// Copyright (c) 2025 QueryDesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"querydesk/cli/internal/history"
	"querydesk/cli/internal/logging"
	"querydesk/cli/internal/runner"
	"querydesk/cli/internal/splitter"

	"atomicgo.dev/cursor"
	"github.com/spf13/cobra"
)

var (
	runConnection string
	runDatabase   string
	runExecute    string
	runFile       string
	runSelection  string
)

// runCmd executes a SQL buffer against a saved connection. Buffers with
// multiple ';'-separated statements run sequentially and render one result
// grid per statement; a single statement renders one grid. A selection,
// when given, runs verbatim as one statement without splitting.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute SQL against a saved connection",
	Long: `The run command executes SQL from --execute, --file, or stdin against a
saved connection. The buffer is split on ';' into statements that execute
strictly in order; the first failure aborts the rest of the batch. Every
attempted statement is recorded in the query history.

Semicolons inside string literals are not protected during splitting. To run
such SQL as a single statement, pass it via --selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := resolveConnectionName(runConnection)
		if err != nil {
			return err
		}

		buffer, err := readBuffer()
		if err != nil {
			return err
		}
		if strings.TrimSpace(buffer) == "" && strings.TrimSpace(runSelection) == "" {
			return errors.New("no SQL to execute; use --execute, --file, or stdin")
		}

		ctx := cmd.Context()
		sess, _, err := openSession(ctx, name)
		if err != nil {
			return errors.New(logging.PresentError("", err))
		}
		defer sess.Close()

		store, err := history.NewStore()
		if err != nil {
			return err
		}

		exec := &runner.Executor{
			Session:    sess,
			History:    store,
			Connection: name,
			Database:   runDatabase,
		}

		cursor.Hide()
		stopSpinner := startInlineSpinner(os.Stdout, "executing",
			[]string{"-", "\\", "|", "/"}, 100*time.Millisecond)
		env, err := exec.Run(ctx, splitter.Submission{Buffer: buffer, Selection: runSelection})
		stopSpinner()
		cursor.Show()

		if err != nil {
			return errors.New(logging.PresentError("execution failed", err))
		}
		renderEnvelope(env)
		return nil
	},
}

// readBuffer collects the SQL buffer from --execute, --file, or stdin, in
// that priority order. Stdin is only read when piped.
func readBuffer() (string, error) {
	if runExecute != "" {
		return runExecute, nil
	}
	if runFile != "" {
		data, err := os.ReadFile(runFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", runFile, err)
		}
		return string(data), nil
	}
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConnection, "connection", "c", "", "Saved connection to execute against")
	runCmd.Flags().StringVarP(&runDatabase, "database", "d", "", "Target database/schema overriding the connection default")
	runCmd.Flags().StringVarP(&runExecute, "execute", "e", "", "SQL buffer to execute")
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "File containing the SQL buffer")
	runCmd.Flags().StringVarP(&runSelection, "selection", "s", "", "Run this text verbatim as one statement, bypassing splitting")
}
