package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"frame/internal/analytics"
	"frame/internal/localstore"
)

func newDashboardCommand(ctx *commandContext) *cobra.Command {
	var rangeLabel string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show ingestion usage over a time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *localstore.Store) error {
				usage, err := analytics.LoadUsage(cmd.Context(), store, rangeLabel, time.Now())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, usage)
				}

				out := cmd.OutOrStdout()
				sw := newStatusWriter(out)
				sw.section("Usage (" + usage.Range + ")")
				sw.info("Videos", strconv.Itoa(usage.Total))
				sw.info("Average per day", strconv.Itoa(usage.AveragePerDay))
				sw.info("Content hours", strconv.Itoa(usage.ContentHours))
				fmt.Fprintln(out)

				days := make([][]string, 0, len(usage.Days))
				for _, day := range usage.Days {
					if day.Videos == 0 {
						continue
					}
					days = append(days, []string{day.Date, strconv.Itoa(day.Videos)})
				}
				if len(days) == 0 {
					fmt.Fprintln(out, "No completed videos in range")
					return nil
				}
				fmt.Fprint(out, renderTable([]string{"Date", "Videos"}, days, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&rangeLabel, "range", "r", analytics.DefaultRange, "Time range: 7d, 14d, 30d or 90d")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output usage as JSON")
	return cmd
}
