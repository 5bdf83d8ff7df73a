package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlbox/pkg/html"
	"htmlbox/pkg/observability"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	t.Setenv("HTMLBOX_LOGGER_LEVEL", "error")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRenderWritesPNG(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", `<style>body { margin: 0 }</style><div style="height: 30px; background: red">x</div>`)
	output := filepath.Join(dir, "out.png")

	stdout, err := run(t, "render", input, "-o", output, "--width", "64")
	require.NoError(t, err)
	assert.Contains(t, stdout, "64x30")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestRenderFixedHeight(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", `<p>short</p>`)
	output := filepath.Join(dir, "out.png")

	stdout, err := run(t, "render", input, "-o", output, "-w", "50", "--height", "200")
	require.NoError(t, err)
	assert.Contains(t, stdout, "50x200")
}

func TestTreeJSON(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", `<p id="a">hello <b>world</b></p>`)

	stdout, err := run(t, "tree", input, "--json")
	require.NoError(t, err)

	var root html.Node
	require.NoError(t, json.Unmarshal([]byte(stdout), &root))
	var tags []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Tag != "" {
			tags = append(tags, n.Tag)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(&root)
	assert.Contains(t, tags, "p")
	assert.Contains(t, tags, "b")
	assert.Contains(t, stdout, `"rect"`)
}

func TestTreeOutline(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", `<ul><li>one</li></ul>`)

	stdout, err := run(t, "tree", input, "--no-layout")
	require.NoError(t, err)
	assert.Contains(t, stdout, "<ul>")
	assert.Contains(t, stdout, "<li>")
	assert.NotContains(t, stdout, "[")
}

func TestTreeMarkdown(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "notes.md", "# Heading\n\n- item\n")

	stdout, err := run(t, "tree", input, "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"tag": "h1"`)
	assert.Contains(t, stdout, `"tag": "li"`)
}

func TestCSSCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.css", "p { color: red } @media print { h1 { color: black } }")

	stdout, err := run(t, "css", input)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{"p { color: red; }", "@media print {", "  h1 { color: black; }", "}"}, lines)
}

func TestMissingInput(t *testing.T) {
	_, err := run(t, "render", filepath.Join(t.TempDir(), "none.html"))
	assert.Error(t, err)

	_, err = run(t, "tree")
	assert.Error(t, err)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", `<p>x</p>`)
	t.Setenv("HTMLBOX_RENDER_BACKGROUND", "bogus")

	_, err := run(t, "tree", input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.background")
}
