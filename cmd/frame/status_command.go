package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"frame/internal/api"
	"frame/internal/daemonrun"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, table and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil && !api.IsAPIUnavailable(err) {
				return err
			}
			running := err == nil

			if jsonOutput {
				if !running {
					return writeJSON(cmd, api.DaemonStatus{})
				}
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			sw := newStatusWriter(out)
			sw.section("Daemon")
			if !running {
				detail := "not reachable; start it with `frame serve` or framed"
				if pid, pidErr := daemonrun.ReadPID(ctx.configValue()); pidErr == nil {
					detail = fmt.Sprintf("pid file names %d but the API did not answer", pid)
				}
				sw.line("Daemon", statusError, detail)
				return nil
			}
			sw.line("Daemon", statusOK, fmt.Sprintf("running (pid %d)", status.PID))
			sw.info("State DB", status.StateDBPath)
			sw.info("Subscribers", strconv.Itoa(status.Subscribers))
			rowKind := statusInfo
			if status.RowCap > 0 && status.RowCount >= status.RowCap {
				rowKind = statusWarn
			}
			sw.line("Rows", rowKind, fmt.Sprintf("%d of %d", status.RowCount, status.RowCap))
			fmt.Fprintln(out)

			sw.section("Queue")
			counters := status.Queue
			busy := "idle"
			if counters.Busy {
				busy = "processing"
			}
			sw.info("Worker", busy)
			fmt.Fprint(out, renderTable(
				[]string{"Pending", "Processed", "Failed"},
				[][]string{{strconv.Itoa(counters.Pending), strconv.Itoa(counters.Processed), strconv.Itoa(counters.Failed)}},
				[]columnAlignment{alignRight, alignRight, alignRight},
			))
			queue, err := client.Queue(cmd.Context())
			if err != nil {
				return err
			}
			if len(queue.Jobs) == 0 {
				return nil
			}
			jobs := make([][]string, 0, len(queue.Jobs))
			for _, job := range queue.Jobs {
				jobs = append(jobs, []string{job.ID, orDash(job.Title), job.URL, orDash(job.EnqueuedAt)})
			}
			fmt.Fprint(out, renderTable([]string{"Job", "Title", "URL", "Enqueued"}, jobs, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	return cmd
}
