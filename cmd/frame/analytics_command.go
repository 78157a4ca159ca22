package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"frame/internal/analytics"
)

func newAnalyticsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var path string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Summarize the content gap analysis artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source := cfg.Paths.GapAnalysisPath
			if path != "" {
				source = path
			}
			doc, err := analytics.LoadGapAnalysis(source)
			if err != nil {
				return fmt.Errorf("load gap analysis %s: %w", source, err)
			}
			if jsonOutput {
				return writeJSON(cmd, doc)
			}

			out := cmd.OutOrStdout()
			sw := newStatusWriter(out)
			analysis, _ := doc["analysis"].(map[string]any)
			gaps, _ := doc["gaps"].(map[string]any)

			sw.section("Clusters")
			fmt.Fprint(out, renderTable(
				[]string{"Cluster", "Videos", "Description"},
				clusterRows(analysis["clusters"]),
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintln(out)

			for _, section := range []struct{ title, key string }{
				{"Underrepresented", "underrepresented_patterns"},
				{"Overrepresented", "overrepresented_patterns"},
			} {
				patterns, _ := gaps[section.key].([]any)
				if len(patterns) == 0 {
					continue
				}
				sw.section(section.title)
				fmt.Fprint(out, renderTable(
					[]string{"Cluster", "Current %", "Target %", "Gap", "Description"},
					patternRows(patterns),
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				fmt.Fprintln(out)
			}

			recs, _ := gaps["recommendations"].([]any)
			fmt.Fprintf(out, "%d recommendations (use --json for details)\n", len(recs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the reshaped artifact as JSON")
	cmd.Flags().StringVar(&path, "file", "", "Read this artifact instead of paths.gap_analysis_path")
	return cmd
}

func clusterRows(value any) [][]string {
	clusters, _ := value.(map[string]any)
	keys := make([]string, 0, len(clusters))
	for key := range clusters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([][]string, 0, len(keys))
	for _, key := range keys {
		cluster, _ := clusters[key].(map[string]any)
		out = append(out, []string{
			key,
			cellNumber(cluster["video_count"]),
			truncate(cellString(cluster["ai_description"]), maxCellWidth),
		})
	}
	return out
}

func patternRows(patterns []any) [][]string {
	out := make([][]string, 0, len(patterns))
	for _, item := range patterns {
		pattern, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, []string{
			cellString(pattern["cluster"]),
			cellNumber(pattern["current_percentage"]),
			cellNumber(pattern["target_percentage"]),
			cellNumber(pattern["percentage_gap"]),
			truncate(cellString(pattern["ai_description"]), maxCellWidth),
		})
	}
	return out
}

func cellString(value any) string {
	if s, ok := value.(string); ok && s != "" {
		return s
	}
	return "-"
}

func cellNumber(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return "-"
}
