package probe

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxHintBytes = 1 << 20 // 1 MiB

// bodyHint describes a body that failed JSON decoding, so error pages
// served with a 200 are recognizable in the log line.
func bodyHint(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "empty body"
	}
	if !looksLikeHTML(trimmed) {
		return ""
	}
	if len(trimmed) > maxHintBytes {
		trimmed = trimmed[:maxHintBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return "html body"
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		return "html body"
	}
	return "html body titled " + `"` + title + `"`
}

func looksLikeHTML(body []byte) bool {
	if body[0] != '<' {
		return false
	}
	head := strings.ToLower(string(body[:min(len(body), 512)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<head") || strings.Contains(head, "<body") || strings.Contains(head, "<title")
}
