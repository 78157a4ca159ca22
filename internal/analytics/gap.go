package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedArtifact marks a gap analysis artifact missing required sections.
var ErrMalformedArtifact = errors.New("malformed gap analysis artifact")

// LoadGapAnalysis reads the artifact at path and returns the reshaped document.
func LoadGapAnalysis(path string) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: no artifact path configured", ErrMalformedArtifact)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gap analysis: %w", err)
	}
	return ReshapeGapAnalysis(data)
}

// ReshapeGapAnalysis decodes a raw artifact and attaches the fields the
// dashboard expects: cluster descriptions, numeric cluster ids, default
// scene change rates and derived percentage gaps. Unknown keys pass through.
func ReshapeGapAnalysis(raw []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode gap analysis: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedArtifact)
	}

	analysis, ok := doc["analysis"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing analysis", ErrMalformedArtifact)
	}
	clusters, ok := analysis["clusters"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing analysis.clusters", ErrMalformedArtifact)
	}
	gaps, ok := doc["gaps"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing gaps", ErrMalformedArtifact)
	}

	descriptions := clusterDescriptions(doc["clustered_videos"])

	outClusters := make(map[string]any, len(clusters))
	for key, value := range clusters {
		cluster := copyObject(value)
		id, ok := clusterNumber(key)
		desc := descriptions[id]
		if !ok || desc == "" {
			desc = fmt.Sprintf("Content pattern %s with %s videos.", formatID(key), formatNumber(cluster["video_count"]))
		}
		cluster["ai_description"] = desc
		outClusters[key] = cluster
	}
	outAnalysis := copyObject(analysis)
	outAnalysis["clusters"] = outClusters

	outGaps := copyObject(gaps)
	outGaps["underrepresented_patterns"] = reshapePatterns(gaps["underrepresented_patterns"], func(pattern map[string]any, id int, ok bool) {
		if desc, has := pattern["ai_description"].(string); has && desc != "" {
			return
		}
		pattern["ai_description"] = "Underrepresented content pattern."
	})
	outGaps["overrepresented_patterns"] = reshapePatterns(gaps["overrepresented_patterns"], func(pattern map[string]any, id int, ok bool) {
		if desc := descriptions[id]; ok && desc != "" {
			pattern["ai_description"] = desc
			return
		}
		pattern["ai_description"] = fmt.Sprintf("Overrepresented content pattern with %s videos.", formatNumber(pattern["current_count"]))
	})
	outGaps["balanced_patterns"] = []any{}
	outGaps["recommendations"] = reshapeRecommendations(gaps["recommendations"])

	out := make(map[string]any, len(doc))
	for key, value := range doc {
		out[key] = value
	}
	out["analysis"] = outAnalysis
	out["gaps"] = outGaps
	return out, nil
}

func reshapePatterns(value any, describe func(pattern map[string]any, id int, ok bool)) []any {
	items, _ := value.([]any)
	out := make([]any, 0, len(items))
	for _, item := range items {
		pattern := copyObject(item)
		label, _ := pattern["cluster"].(string)
		id, ok := clusterNumber(label)
		if ok {
			pattern["cluster_id"] = id
		} else {
			pattern["cluster_id"] = nil
		}
		describe(pattern, id, ok)

		inner := copyObject(pattern["pattern"])
		if rate, isNum := inner["scene_change_rate"].(float64); !isNum || rate == 0 {
			inner["scene_change_rate"] = 0.0
		}
		pattern["pattern"] = inner

		if _, has := pattern["percentage_gap"]; !has {
			target, tok := pattern["target_percentage"].(float64)
			current, cok := pattern["current_percentage"].(float64)
			if tok && cok {
				pattern["percentage_gap"] = math.Round((target-current)*100) / 100
			}
		}
		out = append(out, pattern)
	}
	return out
}

func reshapeRecommendations(value any) []any {
	items, _ := value.([]any)
	out := make([]any, 0, len(items))
	for _, item := range items {
		rec := copyObject(item)
		if _, isNum := rec["cluster_id"].(float64); !isNum {
			label := "0"
			for _, key := range []string{"cluster_id", "cluster"} {
				if s := stringValue(rec[key]); s != "" {
					label = s
					break
				}
			}
			if id, ok := clusterNumber(label); ok {
				rec["cluster_id"] = id
			} else {
				rec["cluster_id"] = nil
			}
		}
		out = append(out, rec)
	}
	return out
}

// clusterDescriptions maps cluster numbers to the description carried by the
// first clustered video of that cluster.
func clusterDescriptions(value any) map[int]string {
	out := make(map[int]string)
	items, _ := value.([]any)
	for _, item := range items {
		video, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cluster, ok := video["cluster"].(float64)
		if !ok || cluster != math.Trunc(cluster) {
			continue
		}
		id := int(cluster)
		if _, seen := out[id]; seen {
			continue
		}
		// First match wins even when it carries no description.
		desc, _ := video["cluster_description"].(string)
		out[id] = desc
	}
	return out
}

// clusterNumber parses the leading integer of a "cluster_N" label.
func clusterNumber(label string) (int, bool) {
	s := strings.TrimSpace(strings.Replace(label, "cluster_", "", 1))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatID(key string) string {
	if id, ok := clusterNumber(key); ok {
		return fmt.Sprintf("%d", id)
	}
	return "NaN"
}

func formatNumber(value any) string {
	switch v := value.(type) {
	case float64:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	case nil:
		return "undefined"
	default:
		return fmt.Sprint(v)
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	default:
		return ""
	}
}

func copyObject(value any) map[string]any {
	src, _ := value.(map[string]any)
	out := make(map[string]any, len(src)+2)
	for key, v := range src {
		out[key] = v
	}
	return out
}
