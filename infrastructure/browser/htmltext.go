package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText strips markup, scripts and styles from an HTML document and
// returns the visible text, one block per line. A panic inside the parser
// is converted to an error so a single hostile page cannot take the
// crawler down.
func HTMLToText(html string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("html to text panicked: %v", r)
		}
	}()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, head").Remove()

	var lines []string
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		for _, raw := range strings.Split(body.Text(), "\n") {
			if line := strings.TrimSpace(raw); line != "" {
				lines = append(lines, line)
			}
		}
	})

	// Documents without a body element still carry text nodes.
	if len(lines) == 0 {
		for _, raw := range strings.Split(doc.Text(), "\n") {
			if line := strings.TrimSpace(raw); line != "" {
				lines = append(lines, line)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
