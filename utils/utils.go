package utils

import (
	"regexp"
	"strings"
	"unicode"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

var (
	markdownLinkRegex    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	markdownHeadingRegex = regexp.MustCompile(`(?m)^#+\s*(.+)$`)
	markdownBoldRegex    = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// ConvertMarkdownToSlack rewrites agent-produced markdown into Slack mrkdwn
func ConvertMarkdownToSlack(message string) string {
	// Links first so the bracket text is not mistaken for formatting
	result := markdownLinkRegex.ReplaceAllString(message, "<$2|$1>")

	result = markdownHeadingRegex.ReplaceAllStringFunc(result, func(match string) string {
		content := markdownHeadingRegex.ReplaceAllString(match, "$1")
		content = markdownBoldRegex.ReplaceAllString(content, "$1")
		return "*" + content + "*"
	})

	return markdownBoldRegex.ReplaceAllString(result, "*$1*")
}

// Truncate shortens s to at most max runes, appending an ellipsis when cut
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// TitleCase upper-cases the first letter of each word and treats underscores as spaces
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
