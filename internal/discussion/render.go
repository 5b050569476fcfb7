package discussion

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

// RenderHTML converts a message's free-text body to HTML, for clients
// that render the discussion log as formatted markdown rather than
// plain text. Enrichment beyond what Speak/Reply return: message
// bodies are stored as plain text, rendered on demand.
func RenderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("discussion: render markdown: %w", err)
	}
	return buf.String(), nil
}
