// Package ingestion turns uploaded résumé documents into clean plain text.
package ingestion

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	multiSpace     = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	excessiveBlank = regexp.MustCompile(`\n\n\n+`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := excessiveBlank.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine normalizes inner whitespace, keeping headings and bullet markers intact.
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	content := multiSpace.ReplaceAllString(trimmed, " ")

	// PDF extraction often produces "•" bullets; normalize them to markdown
	for _, bullet := range []string{"• ", "· ", "▪ ", "◦ "} {
		if strings.HasPrefix(content, bullet) {
			content = "- " + strings.TrimPrefix(content, bullet)
			break
		}
	}

	if indent > 0 && isBulletLine(content) {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ")
}
