package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/graphics/graphicstest"
	"htmlbox/pkg/html"
	"htmlbox/pkg/resource"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newContainer creates a session reading files from a temporary directory
// seeded with files. Test images hold "WxH".
func newContainer(t *testing.T, files map[string]string, opts Options) (*Container, *events.Collector) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	fetcher, err := resource.NewFetcher(resource.Options{BaseURL: dir}, nil)
	require.NoError(t, err)

	collector := &events.Collector{}
	opts.Fetcher = fetcher
	opts.Reporter = collector
	adapter := graphics.NewAdapter(graphicstest.NewBackend("serif"), "serif", nil)
	c, err := New(adapter, opts)
	require.NoError(t, err)
	t.Cleanup(c.Dispose)
	return c, collector
}

func waitImages(t *testing.T, c *Container) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.WaitForImages(ctx))
}

func find(root *html.Box, pred func(*html.Box) bool) *html.Box {
	var found *html.Box
	root.Walk(func(b *html.Box) bool {
		if found == nil && pred(b) {
			found = b
		}
		return found == nil
	})
	return found
}

func byID(root *html.Box, id string) *html.Box {
	return find(root, func(b *html.Box) bool { return b.ID() == id })
}

func wordRect(root *html.Box, text string) css.RectF {
	var r css.RectF
	root.Walk(func(b *html.Box) bool {
		for _, w := range b.Words {
			if w.Text == text {
				r = w.Rect
			}
		}
		return true
	})
	return r
}

func center(r css.RectF) (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func TestLayoutAndPaint(t *testing.T) {
	c, collector := newContainer(t, nil, Options{})
	c.SetHTML(`<div style="background-color: red; height: 20px">hello</div>`)

	height := c.Layout(200)
	assert.GreaterOrEqual(t, height, 20.0)
	assert.Equal(t, height, c.Height())

	g := graphicstest.NewGraphics(css.RectF{Width: 200, Height: 100})
	c.Paint(g, css.RectF{Width: 200, Height: 100})
	assert.Contains(t, g.Texts(), "hello")

	fills := g.Find("fill-rect")
	require.NotEmpty(t, fills)
	assert.Equal(t, css.Color{R: 255, A: 255}, fills[0].Color)
	assert.Empty(t, collector.Events())
}

func TestLinkedStylesheetIsFetched(t *testing.T) {
	c, _ := newContainer(t, map[string]string{"site.css": "p { color: purple }"}, Options{})
	c.SetHTML(`<link rel="stylesheet" href="site.css"><p id="p">x</p>`)
	assert.Equal(t, "purple", byID(c.Root(), "p").Style("color"))
}

func TestStylesheetHandlerSuppliesText(t *testing.T) {
	var seen []string
	c, _ := newContainer(t, nil, Options{
		StylesheetHandler: func(e *events.StylesheetLoadEvent) {
			seen = append(seen, e.Src)
			e.SetStyleSheet("p { color: teal }")
		},
	})
	c.SetHTML(`<link rel="stylesheet" href="virtual.css"><p id="p">x</p>`)
	assert.Equal(t, []string{"virtual.css"}, seen)
	assert.Equal(t, "teal", byID(c.Root(), "p").Style("color"))
}

func TestStylesheetHandlerRedirects(t *testing.T) {
	c, _ := newContainer(t, map[string]string{"real.css": "p { color: navy }"}, Options{
		StylesheetHandler: func(e *events.StylesheetLoadEvent) { e.SetSrc("real.css") },
	})
	c.SetHTML(`<link rel="stylesheet" href="alias.css"><p id="p">x</p>`)
	assert.Equal(t, "navy", byID(c.Root(), "p").Style("color"))
}

func TestMissingStylesheetIsReported(t *testing.T) {
	c, collector := newContainer(t, nil, Options{})
	c.SetHTML(`<link rel="stylesheet" href="missing.css"><p>x</p>`)

	evs := collector.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.CssParsing, evs[0].Type)
	assert.Contains(t, evs[0].Message, "missing.css")
}

func TestImagesArriveThroughApplyPending(t *testing.T) {
	c, collector := newContainer(t, map[string]string{"pic.img": "40x30"}, Options{})
	c.SetHTML(`<p><img id="i" src="pic.img"></p>`)
	img := byID(c.Root(), "i")
	assert.Nil(t, img.Image, "results wait for ApplyPending")

	select {
	case <-c.Refresh():
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh signal")
	}
	waitImages(t, c)

	require.NotNil(t, img.Image)
	assert.Equal(t, 40, img.Image.Width())
	assert.Zero(t, c.PendingImages())

	c.Layout(200)
	assert.Equal(t, 40.0, img.Size.Width)
	assert.Equal(t, 30.0, img.Size.Height)
	assert.Empty(t, collector.Events())
}

func TestBrokenImageIsReported(t *testing.T) {
	c, collector := newContainer(t, nil, Options{})
	c.SetHTML(`<img id="i" src="nowhere.png">`)
	waitImages(t, c)

	assert.True(t, byID(c.Root(), "i").ImageError)
	evs := collector.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.Image, evs[0].Type)
}

func TestImageHandlerSuppliesImage(t *testing.T) {
	c, _ := newContainer(t, nil, Options{
		ImageHandler: func(e *events.ImageLoadEvent) {
			e.Callback(graphicstest.NewImage(5, 7))
		},
	})
	c.SetHTML(`<img id="i" src="anything">`)
	require.True(t, c.ApplyPending())
	assert.Equal(t, 7, byID(c.Root(), "i").Image.Height())
	assert.False(t, c.ApplyPending())
}

func TestBackgroundImage(t *testing.T) {
	c, _ := newContainer(t, map[string]string{"tile.img": "10x10"}, Options{})
	c.SetHTML(`<div id="d" style="background-image: url(tile.img); height: 20px"></div>`)
	waitImages(t, c)

	d := byID(c.Root(), "d")
	require.NotNil(t, d.BackgroundImage)
	assert.Equal(t, 10, d.BackgroundImage.Width())
	assert.False(t, d.ImageError)
}

func TestHoverAppliesAndReverts(t *testing.T) {
	c, _ := newContainer(t, nil, Options{})
	c.SetHTML(`<style>a:hover { color: red }</style><p><a id="l" href="next.html">link</a> text</p>`)
	c.Layout(300)

	a := byID(c.Root(), "l")
	before := a.Style("color")
	require.NotEqual(t, "red", before)

	x, y := center(wordRect(c.Root(), "link"))
	assert.True(t, c.HandleMouseMove(x, y))
	assert.Equal(t, "red", a.Style("color"))
	assert.Equal(t, "red", a.Children[0].Style("color"))
	assert.False(t, c.HandleMouseMove(x, y), "already hovered")

	assert.True(t, c.HandleMouseMove(1000, 1000))
	assert.Equal(t, before, a.Style("color"))
	assert.Equal(t, before, a.Children[0].Style("color"))
}

// wordOwner returns the text box holding the word text.
func wordOwner(root *html.Box, text string) *html.Box {
	var owner *html.Box
	root.Walk(func(b *html.Box) bool {
		for _, w := range b.Words {
			if w.Text == text {
				owner = b
			}
		}
		return true
	})
	return owner
}

func TestHoverReachesTaggedDescendants(t *testing.T) {
	c, _ := newContainer(t, nil, Options{})
	c.SetHTML(`<style>span:hover { text-decoration: line-through; color: red }</style>` +
		`<p><span><b>bold</b> <i style="color: green">own</i></span> out</p>`)
	c.Layout(300)

	bold := wordOwner(c.Root(), "bold")
	own := wordOwner(c.Root(), "own")
	b := bold.Parent
	require.Equal(t, "b", b.TagName())
	boldColor, boldDeco := bold.Style("color"), bold.Style("text-decoration")
	bColor := b.Style("color")
	require.NotEqual(t, "red", boldColor)
	require.NotEqual(t, "line-through", boldDeco)

	assert.True(t, c.HandleMouseMove(center(wordRect(c.Root(), "bold"))))
	assert.Equal(t, "red", b.Style("color"))
	assert.Equal(t, "red", bold.Style("color"))
	assert.Equal(t, "line-through", bold.Style("text-decoration"))
	assert.Equal(t, "green", own.Style("color"), "own color wins over the inherited one")

	assert.True(t, c.HandleMouseMove(1000, 1000))
	assert.Equal(t, bColor, b.Style("color"))
	assert.Equal(t, boldColor, bold.Style("color"))
	assert.Equal(t, boldDeco, bold.Style("text-decoration"))
	assert.Equal(t, "green", own.Style("color"))
}

func TestNestedHoverRevertsInnermostFirst(t *testing.T) {
	c, _ := newContainer(t, nil, Options{})
	c.SetHTML(`<style>div:hover { color: blue } span:hover { color: red }</style>` +
		`<div><span>x</span> y</div>`)
	c.Layout(300)

	x := wordOwner(c.Root(), "x")
	y := wordOwner(c.Root(), "y")
	before := x.Style("color")
	require.NotEqual(t, "blue", before)

	assert.True(t, c.HandleMouseMove(center(wordRect(c.Root(), "x"))))
	assert.Equal(t, "red", x.Style("color"))
	assert.Equal(t, "blue", y.Style("color"))

	assert.True(t, c.HandleMouseMove(center(wordRect(c.Root(), "y"))))
	assert.Equal(t, "blue", x.Style("color"), "span left, div still hovered")
	assert.Equal(t, "blue", y.Style("color"))

	assert.True(t, c.HandleMouseMove(center(wordRect(c.Root(), "x"))))
	assert.True(t, c.HandleMouseMove(1000, 1000))
	assert.Equal(t, before, x.Style("color"))
	assert.Equal(t, before, y.Style("color"))
}

func TestLinkAt(t *testing.T) {
	c, _ := newContainer(t, nil, Options{})
	c.SetHTML(`<p><a href="next.html"><b>bold</b></a> plain</p>`)
	c.Layout(300)

	href, ok := c.LinkAt(center(wordRect(c.Root(), "bold")))
	assert.True(t, ok)
	assert.Equal(t, "next.html", href)

	_, ok = c.LinkAt(center(wordRect(c.Root(), "plain")))
	assert.False(t, ok)
}

func TestSelection(t *testing.T) {
	c, _ := newContainer(t, nil, Options{})
	c.SetHTML(`<p>hello world</p>`)
	color, background := c.SelectionColors()
	assert.Equal(t, defaultSelectionColor, color)
	assert.Equal(t, defaultSelectionBackground, background)

	c.SetHTML(`<style>::selection { color: white; background-color: black }</style><p>hello world</p>`)
	c.Layout(300)
	color, background = c.SelectionColors()
	assert.Equal(t, css.Color{R: 255, G: 255, B: 255, A: 255}, color)
	assert.Equal(t, css.Color{A: 255}, background)

	c.SelectAll()
	assert.Equal(t, "hello world", c.SelectedText())

	g := graphicstest.NewGraphics(css.RectF{Width: 300, Height: 100})
	c.Paint(g, css.RectF{Width: 300, Height: 100})
	for _, op := range g.Find("text") {
		assert.Equal(t, color, op.Color)
	}

	c.ClearSelection()
	assert.Empty(t, c.SelectedText())
}

func TestGetHTML(t *testing.T) {
	c, _ := newContainer(t, nil, Options{})
	assert.Empty(t, c.GetHTML())
	c.SetHTML(`<p class="x">hi</p>`)
	assert.Contains(t, c.GetHTML(), `<p class="x">hi</p>`)
}

func TestDisposeStopsEverything(t *testing.T) {
	c, _ := newContainer(t, map[string]string{"pic.img": "4x4"}, Options{})
	c.SetHTML(`<img src="pic.img">`)
	c.Dispose()

	assert.False(t, c.ApplyPending())
	assert.Zero(t, c.Layout(100))
	root := c.Root()
	c.SetHTML(`<p>ignored</p>`)
	assert.Same(t, root, c.Root())
}

func TestRenderImageUsesDocumentHeight(t *testing.T) {
	c, _ := newContainer(t, nil, Options{})
	c.SetHTML(`<style>body { margin: 0 }</style><div style="height: 42px; background-color: blue"></div>`)

	s := c.RenderImage(50, 0, css.Color{R: 255, G: 255, B: 255, A: 255})
	bounds := s.Image().Bounds()
	assert.Equal(t, 50, bounds.Dx())
	assert.Equal(t, 42, bounds.Dy())

	r, g, b, _ := s.Image().At(10, 10).RGBA()
	assert.Equal(t, []uint32{0, 0, 0xffff}, []uint32{r, g, b})
}
