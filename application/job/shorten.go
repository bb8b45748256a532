package job

import "strings"

// ShortenText compresses an article body for prompting: each line is
// trimmed and bulleted, lines shorter than minLineLen are dropped, and a
// line that would push the running total past maxTotalLen is skipped
// while later, shorter lines may still fit.
func ShortenText(text string, minLineLen, maxTotalLen int) string {
	var (
		lines    []string
		totalLen int
	)
	for _, raw := range strings.Split(text, "\n") {
		line := "- " + strings.TrimSpace(raw)
		length := len(line)
		if totalLen+length > maxTotalLen {
			continue
		}
		if length >= minLineLen {
			lines = append(lines, line)
			totalLen += length
		}
	}
	return strings.Join(lines, "\n")
}
