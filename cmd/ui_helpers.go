package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"querydesk/cli/internal/runner"
	"querydesk/cli/internal/session"

	"github.com/pterm/pterm"
)

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal. The spinner runs in a separate goroutine and
// can be stopped by calling the returned function.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}

// renderEnvelope prints a result envelope: one grid for a single-statement
// submission, a labeled grid per statement otherwise.
func renderEnvelope(env *runner.Envelope) {
	switch env.Kind {
	case runner.EnvelopeSingle:
		renderStatementResult(env.Single(), false)
	case runner.EnvelopeMulti:
		for _, sr := range env.Results() {
			renderStatementResult(sr, true)
		}
	}
}

// renderStatementResult prints one statement's outcome. Results without
// columns (writes, DDL) get a one-line summary instead of a grid.
func renderStatementResult(sr runner.StatementResult, labeled bool) {
	if labeled {
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint(sr.Label))
	}
	res := sr.Result
	if len(res.Columns) == 0 {
		pterm.Printf("OK, %d row(s) affected (%d ms)\n", res.RowCount, res.Elapsed.Milliseconds())
		pterm.Println()
		return
	}
	renderGrid(res)
	pterm.Printf("%d row(s) in %d ms\n", res.RowCount, res.Elapsed.Milliseconds())
	pterm.Println()
}

// renderGrid prints a result set as a table in column order.
func renderGrid(res *session.Result) {
	data := pterm.TableData{res.Columns}
	for _, row := range res.Rows {
		cells := make([]string, len(res.Columns))
		for i, col := range res.Columns {
			cells[i] = formatCell(row[col])
		}
		data = append(data, cells)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// formatCell renders one cell value for display.
func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return truncate(fmt.Sprint(v), 80)
}

// truncate shortens a string for display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
