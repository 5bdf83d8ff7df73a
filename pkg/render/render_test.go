package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlbox/pkg/cascade"
	"htmlbox/pkg/correct"
	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/graphics/graphicstest"
	"htmlbox/pkg/html"
	"htmlbox/pkg/layout"
)

var (
	red  = css.Color{R: 255, A: 255}
	blue = css.Color{B: 255, A: 255}
)

func newAdapter() *graphics.Adapter {
	return graphics.NewAdapter(graphicstest.NewBackend("serif"), "serif", nil)
}

// laidOut builds, corrects and lays out markup with 10px fonts at the given
// width.
func laidOut(t *testing.T, sheet, markup string, width float64) *html.Box {
	t.Helper()
	parser := css.NewParser(nil)
	root := html.Parse(markup)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet+"div { font-size: 10px }"+sheet))
	correct.Tree(root, nil)
	layout.NewEngine(newAdapter(), nil, nil).Layout(root, width)
	return root
}

func paint(root *html.Box, res Resources, reporter events.Reporter) *graphicstest.Graphics {
	g := graphicstest.NewGraphics(css.RectF{Width: 1000, Height: 1000})
	NewPainter(res, reporter, nil).Paint(g, root, g.Clip())
	return g
}

func byID(root *html.Box, id string) *html.Box {
	var found *html.Box
	root.Walk(func(b *html.Box) bool {
		if found == nil && b.ID() == id {
			found = b
		}
		return found == nil
	})
	return found
}

func TestBackgroundColorFillsBorderBox(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; background-color: red }", `<div id="a"></div>`, 200)
	g := paint(root, newAdapter(), nil)

	fills := g.Find("fill-rect")
	require.Len(t, fills, 1)
	assert.Equal(t, css.RectF{Width: 200, Height: 20}, fills[0].Rect)
	assert.Equal(t, red, fills[0].Color)
}

func TestGradientBackground(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; background: linear-gradient(to right, blue, red) }", `<div id="a"></div>`, 200)
	g := paint(root, newAdapter(), nil)

	fills := g.Find("fill-rect")
	require.Len(t, fills, 1)
	assert.Equal(t, blue, fills[0].Color)
}

func TestUniformBorderIsOneRectangle(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; border: 2px solid blue }", `<div id="a"></div>`, 200)
	g := paint(root, newAdapter(), nil)

	rects := g.Find("rect")
	require.Len(t, rects, 1)
	assert.Equal(t, css.RectF{X: 1, Y: 1, Width: 198, Height: 22}, rects[0].Rect)
	assert.Equal(t, 2.0, rects[0].Width)
	assert.Equal(t, blue, rects[0].Color)
	assert.Empty(t, g.Find("fill-polygon"))
}

func TestInsetBorderIsShadedPolygons(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; border: 2px inset #808080 }", `<div id="a"></div>`, 200)
	g := paint(root, newAdapter(), nil)

	polys := g.Find("fill-polygon")
	require.Len(t, polys, 4)
	assert.Equal(t, []css.PointF{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 198, Y: 2}, {X: 2, Y: 2}}, polys[0].Points)
	assert.Equal(t, css.Color{R: 64, G: 64, B: 64, A: 255}, polys[0].Color)
	assert.Equal(t, css.Color{R: 191, G: 191, B: 191, A: 255}, polys[1].Color)
	assert.Equal(t, css.Color{R: 191, G: 191, B: 191, A: 255}, polys[2].Color)
	assert.Equal(t, css.Color{R: 64, G: 64, B: 64, A: 255}, polys[3].Color)
}

func TestRoundedBorderIsArcPath(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; border: 2px solid black; border-radius: 5px }", `<div id="a"></div>`, 200)
	g := paint(root, newAdapter(), nil)

	paths := g.Find("path")
	require.Len(t, paths, 1)
	arcs := 0
	for _, op := range paths[0].Path {
		if op[0] == 'A' {
			arcs++
		}
	}
	assert.Equal(t, 4, arcs)
	assert.Equal(t, "M5,1", paths[0].Path[0])
}

func TestDashedSideIsLine(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; border-top: 2px dashed red; border-bottom: 1px solid black }", `<div id="a"></div>`, 200)
	g := paint(root, newAdapter(), nil)

	lines := g.Find("line")
	require.Len(t, lines, 1)
	assert.Equal(t, graphics.DashDash, lines[0].Dash)
	assert.Equal(t, []css.PointF{{X: 0, Y: 1}, {X: 200, Y: 1}}, lines[0].Points)
	assert.Len(t, g.Find("fill-polygon"), 1)
}

func TestWordsAreDrawnAtTheirRectangles(t *testing.T) {
	root := laidOut(t, "", `<div>ab cd</div>`, 200)
	g := paint(root, newAdapter(), nil)

	assert.Equal(t, []string{"ab", "cd"}, g.Texts())
	texts := g.Find("text")
	assert.Equal(t, 15.0, texts[1].Rect.X)
	assert.Equal(t, css.Black, texts[0].Color)
}

func TestUnderline(t *testing.T) {
	root := laidOut(t, "", `<div><u>ab</u></div>`, 200)
	g := paint(root, newAdapter(), nil)

	lines := g.Find("line")
	require.Len(t, lines, 1)
	assert.Equal(t, []css.PointF{{X: 0, Y: 10.5}, {X: 10, Y: 10.5}}, lines[0].Points)
}

func TestWrappedInlineBordersOpenOnInnerEdges(t *testing.T) {
	root := laidOut(t, "span { border: 1px solid black }", `<div><span>aaa bbb</span></div>`, 20)
	g := paint(root, newAdapter(), nil)

	assert.Empty(t, g.Find("rect"))
	polys := g.Find("fill-polygon")
	require.Len(t, polys, 6)
}

func TestBrokenImagePlaceholder(t *testing.T) {
	parser := css.NewParser(nil)
	root := html.Parse(`<div><img id="i" src="x.png"></div>`)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet))
	correct.Tree(root, nil)
	byID(root, "i").ImageError = true
	layout.NewEngine(newAdapter(), nil, nil).Layout(root, 200)

	g := paint(root, newAdapter(), nil)
	fills := g.Find("fill-rect")
	require.Len(t, fills, 1)
	assert.Equal(t, placeholderFill, fills[0].Color)
	assert.Equal(t, 16.0, fills[0].Rect.Width)
	assert.Len(t, g.Find("line"), 2)
}

func TestImageDrawnIntoContentBox(t *testing.T) {
	parser := css.NewParser(nil)
	root := html.Parse(`<div><img id="i" src="x.png"></div>`)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet+"img { padding: 2px }"))
	correct.Tree(root, nil)
	byID(root, "i").Image = graphicstest.NewImage(30, 20)
	layout.NewEngine(newAdapter(), nil, nil).Layout(root, 200)

	g := paint(root, newAdapter(), nil)
	images := g.Find("image")
	require.Len(t, images, 1)
	img := byID(root, "i")
	assert.Equal(t, img.ClientRect(), images[0].Rect)
	assert.Equal(t, 30.0, images[0].Rect.Width)
}

func TestOutsideListMarker(t *testing.T) {
	root := laidOut(t, "ul { margin: 0 0 0 40px }", `<div><ul><li>a</li></ul></div>`, 200)
	g := paint(root, newAdapter(), nil)

	texts := g.Find("text")
	require.Len(t, texts, 2)
	assert.Equal(t, "•", texts[0].Text)
	assert.Equal(t, 30.0, texts[0].Rect.X)
	assert.Equal(t, 0.0, texts[0].Rect.Y)
	assert.Equal(t, "a", texts[1].Text)
	assert.Equal(t, 40.0, texts[1].Rect.X)
}

func TestBoxesOutsideClipAreSkipped(t *testing.T) {
	root := laidOut(t,
		"#a { height: 20px; background-color: red } #b { height: 20px; margin-top: 80px; background-color: blue }",
		`<div><div id="a"></div><div id="b"></div></div>`, 200)
	g := graphicstest.NewGraphics(css.RectF{Width: 1000, Height: 1000})
	NewPainter(newAdapter(), nil, nil).Paint(g, root, css.RectF{Y: 90, Width: 200, Height: 50})

	fills := g.Find("fill-rect")
	require.Len(t, fills, 1)
	assert.Equal(t, blue, fills[0].Color)
}

func TestHiddenBoxesAreNotPainted(t *testing.T) {
	root := laidOut(t, "#a { display: none; background-color: red } #b { visibility: hidden }",
		`<div><div id="a">x</div><div id="b">y</div></div>`, 200)
	g := paint(root, newAdapter(), nil)
	assert.Empty(t, g.Find("fill-rect"))
	assert.Empty(t, g.Texts())
}

func TestSelectionColors(t *testing.T) {
	root := laidOut(t, "", `<div>ab cd</div>`, 200)
	var cd *html.Word
	root.Walk(func(b *html.Box) bool {
		for _, w := range b.Words {
			if w.Text == "cd" {
				cd = w
			}
		}
		return true
	})
	require.NotNil(t, cd)

	g := graphicstest.NewGraphics(css.RectF{Width: 1000, Height: 1000})
	p := NewPainter(newAdapter(), nil, nil)
	p.Selection = &Selection{Words: map[*html.Word]bool{cd: true}, Color: css.White, Background: blue}
	p.Paint(g, root, g.Clip())

	fills := g.Find("fill-rect")
	require.Len(t, fills, 1)
	assert.Equal(t, cd.Rect, fills[0].Rect)
	texts := g.Find("text")
	require.Len(t, texts, 2)
	assert.Equal(t, css.Black, texts[0].Color)
	assert.Equal(t, css.White, texts[1].Color)
}

func TestBackgroundImageRepeatX(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; background-repeat: repeat-x }", `<div id="a"></div>`, 200)
	byID(root, "a").BackgroundImage = graphicstest.NewImage(50, 10)
	g := paint(root, newAdapter(), nil)

	images := g.Find("image")
	require.Len(t, images, 4)
	assert.Equal(t, css.RectF{X: 150, Width: 50, Height: 10}, images[3].Rect)
}

func TestBackgroundPosition(t *testing.T) {
	tests := []struct {
		value string
		x, y  float64
	}{
		{"0% 0%", 0, 0},
		{"center", 50, 25},
		{"right bottom", 100, 50},
		{"bottom right", 100, 50},
		{"top", 50, 0},
		{"10px 20%", 10, 10},
	}
	for _, tt := range tests {
		x, y := backgroundPosition(tt.value, 10, 100, 50)
		assert.Equal(t, tt.x, x, tt.value)
		assert.Equal(t, tt.y, y, tt.value)
	}
}

func TestClampRadii(t *testing.T) {
	c := clampRadii(css.Corners{TopLeft: 20, TopRight: 20}, css.RectF{Width: 20, Height: 100})
	assert.Equal(t, 10.0, c.TopLeft)
	assert.Equal(t, 10.0, c.TopRight)
}

var errBrush = errors.New("no brush")

type failingBrushes struct{ *graphics.Adapter }

func (failingBrushes) GetSolidBrush(css.Color) graphics.Brush { panic(errBrush) }

func TestPaintPanicIsReportedAndPaintingContinues(t *testing.T) {
	root := laidOut(t, "#a { height: 20px; background-color: red }", `<div id="a">x</div>`, 200)
	collector := &events.Collector{}
	g := paint(root, failingBrushes{newAdapter()}, collector)

	evs := collector.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.Paint, evs[0].Type)
	assert.ErrorIs(t, evs[0].Err, errBrush)
	assert.Equal(t, []string{"x"}, g.Texts())
}
