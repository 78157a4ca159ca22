package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"frame/internal/apikey"
	"frame/internal/services/backend"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	videosCmd := &cobra.Command{
		Use:   "videos",
		Short: "Browse videos processed by the backend",
	}

	var skip, limit int
	var listJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List processed videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPIKeys(func(keys *apikey.Manager, client *backend.Client) error {
				var page *backend.VideoList
				err := withKeyRetry(cmd.Context(), keys, func(key string) error {
					var err error
					page, err = client.ListVideos(cmd.Context(), key, skip, limit)
					return err
				})
				if err != nil {
					return err
				}
				if listJSON {
					return writeJSON(cmd, page)
				}
				out := cmd.OutOrStdout()
				if len(page.Videos) == 0 {
					fmt.Fprintln(out, "No videos")
					return nil
				}
				rows := make([][]string, 0, len(page.Videos))
				for _, video := range page.Videos {
					rows = append(rows, []string{
						video.ID,
						orDash(video.Title),
						orDash(video.Duration),
						label(video.Status),
						orDash(video.CreatedAt),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"ID", "Title", "Duration", "Status", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "Showing %d-%d of %d\n", page.Skip+1, page.Skip+len(page.Videos), page.Total)
				return nil
			})
		},
	}
	listCmd.Flags().IntVar(&skip, "skip", 0, "Number of videos to skip")
	listCmd.Flags().IntVar(&limit, "limit", 10, "Maximum videos to return")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	var showJSON bool
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a processed video and its frame summaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withAPIKeys(func(keys *apikey.Manager, client *backend.Client) error {
				var video *backend.Video
				err := withKeyRetry(cmd.Context(), keys, func(key string) error {
					var err error
					video, err = client.GetVideo(cmd.Context(), key, args[0])
					return err
				})
				if err != nil {
					return err
				}
				if showJSON {
					return writeJSON(cmd, video)
				}
				out := cmd.OutOrStdout()
				sw := newStatusWriter(out)
				sw.section(orDash(video.Title))
				sw.info("ID", video.ID)
				sw.info("Source", orDash(video.VideoURL))
				sw.info("Duration", orDash(video.Duration))
				sw.info("Status", label(video.Status))
				sw.info("Frames", fmt.Sprintf("%d every %ds", video.TotalFrames, video.FrameInterval))
				sw.info("Key topics", truncate(orDash(video.KeyTopics), maxCellWidth))
				if len(video.Summaries) == 0 {
					return nil
				}
				fmt.Fprintln(out)
				rows := make([][]string, 0, len(video.Summaries))
				for _, summary := range video.Summaries {
					rows = append(rows, []string{
						orDash(summary.Timestamp),
						strconv.FormatFloat(summary.TimestampSeconds, 'f', 1, 64),
						summary.Description,
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Timestamp", "Seconds", "Description"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")

	videosCmd.AddCommand(listCmd, showCmd)
	return videosCmd
}

// withKeyRetry runs fn with the stored key, rotating once when the backend
// rejects it.
func withKeyRetry(ctx context.Context, keys *apikey.Manager, fn func(key string) error) error {
	key, err := keys.Ensure(ctx)
	if err != nil {
		return err
	}
	err = fn(key)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || (apiErr.StatusCode != http.StatusUnauthorized && apiErr.StatusCode != http.StatusForbidden) {
		return err
	}
	key, err = keys.Rotate(ctx)
	if err != nil {
		return err
	}
	return fn(key)
}
