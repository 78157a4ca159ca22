package gateway

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	answerLimit      = 250
	descriptionLimit = 200
	titleLimit       = 50
)

// CleanAnswer normalizes a synthesized answer for the key topics column:
// literal "\n" escapes and runs of whitespace become single spaces, the text
// is cut to 250 characters, and a period is appended when it does not already
// end a sentence.
func CleanAnswer(text string) string {
	text = strings.ReplaceAll(text, `\n`, " ")
	text = norm.NFC.String(text)
	text = strings.Join(strings.Fields(text), " ")
	text = strings.TrimSpace(truncateRunes(text, answerLimit))
	if text == "" {
		return ""
	}
	return ensureTerminalPunctuation(text)
}

// DescriptionTopics derives initial key topics from the first line of the
// description, or a generic sentence naming the channel and title when the
// description is empty.
func DescriptionTopics(meta Metadata) string {
	if desc := strings.TrimSpace(meta.Description); desc != "" {
		first, _, _ := strings.Cut(desc, "\n")
		first = strings.TrimSpace(truncateRunes(norm.NFC.String(first), descriptionLimit))
		if first != "" {
			return ensureTerminalPunctuation(first)
		}
	}
	return fmt.Sprintf("Video by %s covering topics related to %s.", meta.Channel, truncateRunes(meta.Title, titleLimit))
}

func ensureTerminalPunctuation(text string) string {
	if strings.HasSuffix(text, ".") || strings.HasSuffix(text, "!") || strings.HasSuffix(text, "?") {
		return text
	}
	return text + "."
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
