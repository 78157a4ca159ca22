package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"frame/internal/rows"
	"frame/internal/session"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var timeout time.Duration
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ingest <url> [url...]",
		Short: "Look up videos, fill table rows and queue them for ingestion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := ctx.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			sess, err := app.NewSession(cmd.Context())
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			results := make([]session.Result, 0, len(args))
			for _, url := range args {
				rowID := firstEmptyRow(sess.Rows().Snapshot())
				if rowID == "" {
					rowID = sess.AddRow().ID
				}
				result, err := sess.Submit(cmd.Context(), rowID, url)
				if err != nil {
					return fmt.Errorf("submit %s: %w", url, err)
				}
				results = append(results, result)
			}

			waitCtx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				waitCtx, cancel = context.WithTimeout(waitCtx, timeout)
				defer cancel()
			}
			waitErr := sess.Wait(waitCtx)
			if waitErr != nil && !errors.Is(waitErr, context.DeadlineExceeded) {
				return waitErr
			}

			snapshot := sess.Rows().Snapshot()
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"results": results,
					"rows":    snapshot,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderRowsTable(snapshot))
			if errors.Is(waitErr, context.DeadlineExceeded) {
				fmt.Fprintf(out, "Timed out after %s; remaining jobs were abandoned\n", timeout)
			}
			failed := 0
			for _, result := range results {
				if result.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d videos could not be looked up", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up waiting for ingestion after this long (0 waits indefinitely)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

func firstEmptyRow(snapshot []rows.Row) string {
	for _, row := range snapshot {
		if row.VideoURL == "" && !row.Loading {
			return row.ID
		}
	}
	return ""
}

func renderRowsTable(snapshot []rows.Row) string {
	tableRows := make([][]string, 0, len(snapshot))
	for _, row := range snapshot {
		if row.VideoURL == "" {
			continue
		}
		tableRows = append(tableRows, []string{
			row.VideoURL,
			orDash(row.Title),
			orDash(row.Duration),
			orDash(row.Status),
			truncate(orDash(row.KeyTopics), maxCellWidth),
		})
	}
	if len(tableRows) == 0 {
		return "No rows\n"
	}
	return renderTable(
		[]string{"Video", "Title", "Duration", "Status", "Key Topics"},
		tableRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}
