package gateway_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"frame/internal/gateway"
)

func TestCleanAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "keeps punctuation", in: "Is it good?", want: "Is it good?"},
		{name: "adds period", in: "Line one\\nline two", want: "Line one line two."},
		{name: "collapses whitespace", in: "a \t\n  b", want: "a b."},
		{name: "composes accents", in: "Café talk", want: "Café talk."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gateway.CleanAnswer(tt.in); got != tt.want {
				t.Fatalf("CleanAnswer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanAnswerTruncates(t *testing.T) {
	got := gateway.CleanAnswer(strings.Repeat("word ", 100))
	if n := utf8.RuneCountInString(got); n > 251 {
		t.Fatalf("expected at most 250 characters plus period, got %d", n)
	}
	if !strings.HasSuffix(got, "word.") {
		t.Fatalf("expected trailing space trimmed before period, got %q", got[len(got)-10:])
	}
}

func TestDescriptionTopics(t *testing.T) {
	meta := gateway.Metadata{Title: "Deep dive", Channel: "Chan", Description: "First line here\nSecond line"}
	if got := gateway.DescriptionTopics(meta); got != "First line here." {
		t.Fatalf("unexpected topics: %q", got)
	}

	meta.Description = ""
	meta.Title = strings.Repeat("x", 80)
	want := "Video by Chan covering topics related to " + strings.Repeat("x", 50) + "."
	if got := gateway.DescriptionTopics(meta); got != want {
		t.Fatalf("unexpected fallback: %q", got)
	}
}
