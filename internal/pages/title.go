package pages

import (
	"regexp"
	"strings"
)

// DefaultTitle is the placeholder used when no title can be derived.
const DefaultTitle = "Untitled"

const (
	maxTitleLength   = 100
	maxSnippetLength = 50
)

var (
	titlePattern  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Pattern     = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&[^;]+;`)
)

// ExtractTitle derives a display title from raw page content. It prefers the
// first <title> tag, then the first <h1>, then the leading plain text of the
// stripped content, and finally the placeholder. Truncation counts runes, not
// bytes.
func ExtractTitle(content string) string {
	if match := titlePattern.FindStringSubmatch(content); len(match) > 1 && match[1] != "" {
		title := entityPattern.ReplaceAllString(strings.TrimSpace(match[1]), "")
		return truncate(title, maxTitleLength)
	}

	if match := h1Pattern.FindStringSubmatch(content); len(match) > 1 && match[1] != "" {
		title := tagPattern.ReplaceAllString(strings.TrimSpace(match[1]), "")
		return truncate(title, maxTitleLength)
	}

	text := strings.TrimSpace(tagPattern.ReplaceAllString(content, ""))
	if text != "" {
		runes := []rune(text)
		if len(runes) > maxSnippetLength {
			return string(runes[:maxSnippetLength]) + "..."
		}
		return text
	}

	return DefaultTitle
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
