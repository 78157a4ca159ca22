package analytics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"frame/internal/localstore"
	"frame/internal/services"
)

// MinutesPerVideo is the content length credited to each processed video
// when converting counts to content hours.
const MinutesPerVideo = 12.5

// DefaultRange is used when no range is requested.
const DefaultRange = "30d"

var rangeDays = map[string]int{
	"7d":  7,
	"14d": 14,
	"30d": 30,
	"90d": 90,
}

// HistorySource yields completed jobs finished at or after a cutoff.
type HistorySource interface {
	CompletedSince(ctx context.Context, since time.Time) ([]localstore.JobRecord, error)
}

// DayCount is the number of videos processed on one UTC calendar day.
type DayCount struct {
	Date   string `json:"date"`
	Videos int    `json:"videos"`
}

// Usage summarizes processing volume over a trailing window of days.
type Usage struct {
	Range         string     `json:"range"`
	Days          []DayCount `json:"days"`
	Total         int        `json:"total"`
	AveragePerDay int        `json:"averagePerDay"`
	ContentHours  int        `json:"contentHours"`
}

// ParseRange maps a range label such as "7d" to a day count.
func ParseRange(label string) (string, int, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		label = DefaultRange
	}
	days, ok := rangeDays[label]
	if !ok {
		return "", 0, services.Wrap(services.ErrInvalidInput, "analytics", "parse range", fmt.Sprintf("unsupported range %q", label), nil)
	}
	return label, days, nil
}

// WindowStart returns midnight UTC of the first day in a window ending on now.
func WindowStart(now time.Time, days int) time.Time {
	today := now.UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -(days - 1))
}

// BuildUsage buckets completed jobs into one entry per day, oldest first.
// Records outside the window are ignored.
func BuildUsage(label string, records []localstore.JobRecord, days int, now time.Time) Usage {
	if days <= 0 {
		days = 1
	}
	start := WindowStart(now, days)
	index := make(map[string]int, days)
	series := make([]DayCount, days)
	for i := range series {
		date := start.AddDate(0, 0, i).Format(time.DateOnly)
		series[i] = DayCount{Date: date}
		index[date] = i
	}

	total := 0
	for _, rec := range records {
		if rec.Outcome != localstore.OutcomeCompleted {
			continue
		}
		pos, ok := index[rec.FinishedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		series[pos].Videos++
		total++
	}

	return Usage{
		Range:         label,
		Days:          series,
		Total:         total,
		AveragePerDay: int(math.Round(float64(total) / float64(days))),
		ContentHours:  int(math.Round(float64(total) * MinutesPerVideo / 60)),
	}
}

// LoadUsage reads history for the named range and builds the series.
func LoadUsage(ctx context.Context, source HistorySource, label string, now time.Time) (Usage, error) {
	label, days, err := ParseRange(label)
	if err != nil {
		return Usage{}, err
	}
	if source == nil {
		return BuildUsage(label, nil, days, now), nil
	}
	records, err := source.CompletedSince(ctx, WindowStart(now, days))
	if err != nil {
		return Usage{}, fmt.Errorf("load usage history: %w", err)
	}
	return BuildUsage(label, records, days, now), nil
}
