package videoinfo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Patterns are tried in order; the bare-ID pattern is anchored and last so it
// cannot match a fragment of a full URL.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{11})$`),
}

var durationPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// ExtractID returns the video identifier referenced by raw, trying the watch,
// short, and embed URL shapes before a bare 11-character identifier.
func ExtractID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, pattern := range idPatterns {
		if match := pattern.FindStringSubmatch(raw); match != nil {
			return match[1], true
		}
	}
	return "", false
}

// IsVideoURL reports whether raw looks like a watch or short video URL. Search
// results are filtered with this before IDs are extracted.
func IsVideoURL(raw string) bool {
	return strings.Contains(raw, "youtube.com/watch") || strings.Contains(raw, "youtu.be/")
}

// WatchURL builds the canonical watch URL for id.
func WatchURL(id string) string {
	return watchURLPrefix + id
}

// ParseDuration renders an ISO-8601 duration such as PT1H2M10S as H:MM:SS, or
// M:SS when there are no hours. Input without a PT designator yields "0:00".
func ParseDuration(iso string) string {
	match := durationPattern.FindStringSubmatch(iso)
	if match == nil {
		return "0:00"
	}
	hours := atoiOrZero(match[1])
	minutes := atoiOrZero(match[2])
	seconds := atoiOrZero(match[3])
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// DurationSeconds returns the total length of an ISO-8601 duration in seconds.
func DurationSeconds(iso string) int {
	match := durationPattern.FindStringSubmatch(iso)
	if match == nil {
		return 0
	}
	return atoiOrZero(match[1])*3600 + atoiOrZero(match[2])*60 + atoiOrZero(match[3])
}

func atoiOrZero(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
