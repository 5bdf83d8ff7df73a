package resource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown("notes.md", ""))
	assert.True(t, IsMarkdown("README.Markdown", ""))
	assert.True(t, IsMarkdown("https://example.com/a.md?raw=1", ""))
	assert.True(t, IsMarkdown("x", "text/markdown; charset=utf-8"))
	assert.False(t, IsMarkdown("index.html", "text/html"))
}

func TestLoadDocumentConvertsMarkdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.md"), []byte("# Title\n\nSome *text*.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte("<p>plain</p>"), 0o644))

	f := newFetcher(t, Options{BaseURL: dir})
	ctx := context.Background()

	doc, err := f.LoadDocument(ctx, "doc.md")
	require.NoError(t, err)
	assert.Contains(t, doc, `<h1 id="title">Title</h1>`)
	assert.Contains(t, doc, "<em>text</em>")
	assert.Contains(t, doc, "<body>")

	page, err := f.LoadDocument(ctx, "page.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>plain</p>", page)
}
