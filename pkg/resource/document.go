package resource

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const markdownPage = `<html>
<head><meta charset="utf-8"></head>
<body>
%s</body>
</html>
`

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// IsMarkdown reports whether uri or its content type names a Markdown
// document.
func IsMarkdown(uri, contentType string) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "text/markdown") {
		return true
	}
	if i := strings.IndexAny(uri, "?#"); i >= 0 && IsNetworkURL(uri) {
		uri = uri[:i]
	}
	switch strings.ToLower(path.Ext(uri)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// MarkdownToHTML converts Markdown source into a complete HTML page.
func MarkdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return fmt.Sprintf(markdownPage, buf.String()), nil
}

// LoadDocument fetches the markup at uri. Markdown documents are converted
// to HTML.
func (f *Fetcher) LoadDocument(ctx context.Context, uri string) (string, error) {
	res, err := f.Fetch(ctx, uri)
	if err != nil {
		return "", err
	}
	text, err := res.Text()
	if err != nil {
		return "", err
	}
	if IsMarkdown(res.URL, res.ContentType) {
		return MarkdownToHTML(text)
	}
	return text, nil
}
