package httphandler

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	// Raw HTML is let through by goldmark and stripped here.
	htmlSanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown converts GitHub-flavored markdown to sanitized HTML. A nil
// or empty source yields "".
func renderMarkdown(src *string) string {
	if src == nil || *src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(*src), &buf); err != nil {
		return htmlSanitizer.Sanitize(*src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}
