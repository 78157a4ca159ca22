package videoinfo_test

import (
	"testing"

	"frame/internal/videoinfo"
)

func TestExtractIDSameVideoAcrossURLShapes(t *testing.T) {
	const want = "dQw4w9WgXcQ"
	inputs := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=share",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ#comments",
		"dQw4w9WgXcQ",
		"  dQw4w9WgXcQ  ",
	}
	for _, input := range inputs {
		got, ok := videoinfo.ExtractID(input)
		if !ok || got != want {
			t.Fatalf("ExtractID(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}
}

func TestExtractIDRejectsUnknownShapes(t *testing.T) {
	for _, input := range []string{
		"",
		"https://vimeo.com/12345",
		"not a url",
		"dQw4w9WgXc",   // 10 chars
		"dQw4w9WgXcQQ", // 12 chars
		"https://example.com/dQw4w9WgXcQ",
	} {
		if got, ok := videoinfo.ExtractID(input); ok {
			t.Fatalf("ExtractID(%q) = %q, expected no match", input, got)
		}
	}
}

func TestExtractIDPrefersURLPatternOverBareID(t *testing.T) {
	got, ok := videoinfo.ExtractID("https://youtube.com/watch?v=abc12345678")
	if !ok || got != "abc12345678" {
		t.Fatalf("unexpected id %q", got)
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]string{
		"PT1H2M10S": "1:02:10",
		"PT5M3S":    "5:03",
		"PT45S":     "0:45",
		"PT3M30S":   "3:30",
		"PT2H":      "2:00:00",
		"PT10M":     "10:00",
		"PT":        "0:00",
		"garbage":   "0:00",
		"":          "0:00",
	}
	for input, want := range cases {
		if got := videoinfo.ParseDuration(input); got != want {
			t.Fatalf("ParseDuration(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDurationSeconds(t *testing.T) {
	if got := videoinfo.DurationSeconds("PT1H2M10S"); got != 3730 {
		t.Fatalf("unexpected seconds: %d", got)
	}
	if got := videoinfo.DurationSeconds("bogus"); got != 0 {
		t.Fatalf("expected zero for malformed duration, got %d", got)
	}
}

func TestIsVideoURLAndWatchURL(t *testing.T) {
	if !videoinfo.IsVideoURL("https://www.youtube.com/watch?v=abc") || !videoinfo.IsVideoURL("https://youtu.be/abc") {
		t.Fatal("expected watch and short URLs to be video URLs")
	}
	if videoinfo.IsVideoURL("https://www.youtube.com/channel/UC123") {
		t.Fatal("channel pages are not video URLs")
	}
	if got := videoinfo.WatchURL("abc12345678"); got != "https://www.youtube.com/watch?v=abc12345678" {
		t.Fatalf("unexpected watch url %q", got)
	}
}
