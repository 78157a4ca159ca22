package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"frame/internal/localstore"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clearAll bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent ingestion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *localstore.Store) error {
				out := cmd.OutOrStdout()
				if clearAll {
					removed, err := store.ClearHistory(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed %d jobs from history\n", removed)
					return nil
				}

				jobs, err := store.RecentJobs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, jobs)
				}
				if len(jobs) == 0 {
					fmt.Fprintln(out, "No jobs recorded")
					return nil
				}
				fmt.Fprint(out, renderTable(
					[]string{"Finished", "Outcome", "Title", "URL", "Detail"},
					historyRows(jobs),
					nil,
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded jobs")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output jobs as JSON")
	return cmd
}

func historyRows(jobs []localstore.JobRecord) [][]string {
	out := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		detail := job.Message
		if job.Outcome == localstore.OutcomeCompleted {
			detail = job.KeyTopics
		}
		out = append(out, []string{
			job.FinishedAt.Local().Format(time.DateTime),
			label(string(job.Outcome)),
			orDash(job.Title),
			job.URL,
			truncate(orDash(detail), maxCellWidth),
		})
	}
	return out
}
