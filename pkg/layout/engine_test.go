package layout

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
)

// The test font is 10px: every rune and a space are 5px wide, the ascent
// is 10 and a normal line is 12.5 high.
const testSheet = `div { font-size: 10px }`

func newTestEngine(reporter events.Reporter) *Engine {
	adapter := graphics.NewAdapter(graphicstest.NewBackend("serif"), "serif", nil)
	return NewEngine(adapter, reporter, nil)
}

func laidOut(t *testing.T, sheet, markup string, width float64) (*html.Box, float64) {
	t.Helper()
	parser := css.NewParser(nil)
	root := html.Parse(markup)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet+testSheet+sheet))
	correct.Tree(root, nil)
	height := newTestEngine(nil).Layout(root, width)
	return root, height
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

func byTag(root *html.Box, tag string) *html.Box {
	return find(root, func(b *html.Box) bool { return b.TagName() == tag })
}

// words returns the words under b in document order.
func words(b *html.Box) []*html.Word {
	var out []*html.Word
	b.Walk(func(x *html.Box) bool {
		out = append(out, x.Words...)
		return true
	})
	return out
}

func wordAt(t *testing.T, b *html.Box, text string) *html.Word {
	t.Helper()
	for _, w := range words(b) {
		if w.Text == text {
			return w
		}
	}
	t.Fatalf("no word %q under %v", text, b)
	return nil
}

func TestBlocksStackWithCollapsedMargins(t *testing.T) {
	root, height := laidOut(t,
		`#a { height: 20px; margin-bottom: 10px } #b { height: 30px; margin-top: 15px }`,
		`<div><div id="a"></div><div id="b"></div></div>`, 200)

	a, b := byID(root, "a"), byID(root, "b")
	assert.Equal(t, css.RectF{X: 0, Y: 0, Width: 200, Height: 20}, a.Bounds())
	assert.Equal(t, css.RectF{X: 0, Y: 35, Width: 200, Height: 30}, b.Bounds())
	assert.Equal(t, 65.0, height)
}

func TestNegativeMarginsCollapse(t *testing.T) {
	assert.Equal(t, 15.0, collapseMargins(10, 15))
	assert.Equal(t, -15.0, collapseMargins(-10, -15))
	assert.Equal(t, 5.0, collapseMargins(-10, 15))
}

func TestFixedWidthWithAutoMarginsIsCentered(t *testing.T) {
	root, _ := laidOut(t, `#a { width: 100px; height: 10px; margin: 0 auto; padding: 0 5px }`,
		`<div><div id="a"></div></div>`, 200)
	a := byID(root, "a")
	assert.Equal(t, 45.0, a.Location.X)
	assert.Equal(t, 110.0, a.Size.Width)
	assert.Equal(t, 45.0, a.Margin.Left)
}

func TestDisplayNoneTakesNoSpace(t *testing.T) {
	root, _ := laidOut(t, `#x { display: none } #y { height: 10px }`,
		`<div><div id="x">aaa</div><div id="y">b</div></div>`, 200)
	assert.Equal(t, 0.0, byID(root, "y").Location.Y)
	assert.Empty(t, byID(root, "x").LineBoxes)
}

func TestOverflowingChildExtendsActualBottom(t *testing.T) {
	root, height := laidOut(t, `#a { height: 10px } #b { height: 50px }`,
		`<div><div id="a"><div id="b"></div></div></div>`, 200)
	assert.Equal(t, 10.0, byID(root, "a").Size.Height)
	assert.Equal(t, 50.0, byID(root, "a").ActualBottom)
	assert.Equal(t, 50.0, height)
}

func TestLinesBreakAtWordBoundaries(t *testing.T) {
	root, height := laidOut(t, "", `<div id="t">aaa bbb ccc</div>`, 40)
	div := byID(root, "t")

	assert.Equal(t, css.RectF{X: 0, Y: 0, Width: 15, Height: 12.5}, wordAt(t, div, "aaa").Rect)
	assert.Equal(t, css.RectF{X: 20, Y: 0, Width: 15, Height: 12.5}, wordAt(t, div, "bbb").Rect)
	assert.Equal(t, css.RectF{X: 0, Y: 12.5, Width: 15, Height: 12.5}, wordAt(t, div, "ccc").Rect)
	require.Len(t, div.LineBoxes, 2)
	assert.Equal(t, 10.0, div.LineBoxes[0].Baseline)
	assert.Equal(t, 25.0, div.Size.Height)
	assert.Equal(t, 25.0, height)
}

func TestTextAlign(t *testing.T) {
	tests := []struct {
		name  string
		align string
		width float64
		xs    map[string]float64
	}{
		{"left", "left", 100, map[string]float64{"ab": 0, "cd": 15}},
		{"center", "center", 100, map[string]float64{"ab": 37.5, "cd": 52.5}},
		{"right", "right", 100, map[string]float64{"ab": 75, "cd": 90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, _ := laidOut(t, "#t { text-align: "+tt.align+" }", `<div id="t">ab cd</div>`, tt.width)
			div := byID(root, "t")
			for text, x := range tt.xs {
				assert.Equal(t, x, wordAt(t, div, text).Rect.X, text)
			}
		})
	}
}

func TestJustifySpreadsSpacesExceptOnLastLine(t *testing.T) {
	root, _ := laidOut(t, "#t { text-align: justify }", `<div id="t">aa bb cc dd</div>`, 45)
	div := byID(root, "t")
	assert.Equal(t, 0.0, wordAt(t, div, "aa").Rect.X)
	assert.Equal(t, 17.5, wordAt(t, div, "bb").Rect.X)
	assert.Equal(t, 35.0, wordAt(t, div, "cc").Rect.X)
	assert.Equal(t, 0.0, wordAt(t, div, "dd").Rect.X)
	assert.Equal(t, 12.5, wordAt(t, div, "dd").Rect.Y)
}

func TestNowrapKeepsOneLine(t *testing.T) {
	root, _ := laidOut(t, "#t { white-space: nowrap }", `<div id="t">aaa bbb</div>`, 20)
	div := byID(root, "t")
	assert.Equal(t, 20.0, wordAt(t, div, "bbb").Rect.X)
	assert.Equal(t, 0.0, wordAt(t, div, "bbb").Rect.Y)
	assert.Len(t, div.LineBoxes, 1)
}

func TestPreBreaksOnlyAtNewlines(t *testing.T) {
	root, _ := laidOut(t, "", "<div><pre id=\"t\">aaa bbb\nc</pre></div>", 20)
	pre := byID(root, "t")
	require.Len(t, pre.LineBoxes, 2)
	assert.Equal(t, 0.0, wordAt(t, pre, "bbb").Rect.Y)
	assert.Equal(t, 12.5, wordAt(t, pre, "c").Rect.Y)
}

func TestTextIndentMovesFirstLine(t *testing.T) {
	root, _ := laidOut(t, "#t { text-indent: 10px }", `<div id="t">aa bb</div>`, 30)
	div := byID(root, "t")
	assert.Equal(t, 10.0, wordAt(t, div, "aa").Rect.X)
	assert.Equal(t, 0.0, wordAt(t, div, "bb").Rect.X)
	assert.Equal(t, 12.5, wordAt(t, div, "bb").Rect.Y)
}

func TestWrappedInlineHasOneFragmentPerLine(t *testing.T) {
	root, _ := laidOut(t, "", `<div><span>aaa bbb</span></div>`, 20)
	span := byTag(root, "span")
	require.Len(t, span.Fragments, 2)
	assert.Equal(t, css.RectF{X: 0, Y: 0, Width: 15, Height: 12.5}, span.Fragments[0])
	assert.Equal(t, css.RectF{X: 0, Y: 12.5, Width: 15, Height: 12.5}, span.Fragments[1])
	assert.Equal(t, css.RectF{X: 0, Y: 0, Width: 15, Height: 25}, span.Bounds())
}

func TestInlinePaddingWidensLine(t *testing.T) {
	root, _ := laidOut(t, "span { padding: 0 5px }", `<div id="t">a<span>b</span>c</div>`, 100)
	div := byID(root, "t")
	assert.Equal(t, 0.0, wordAt(t, div, "a").Rect.X)
	assert.Equal(t, 10.0, wordAt(t, div, "b").Rect.X)
	assert.Equal(t, 20.0, wordAt(t, div, "c").Rect.X)
	span := byTag(root, "span")
	require.Len(t, span.Fragments, 1)
	assert.Equal(t, 5.0, span.Fragments[0].X)
	assert.Equal(t, 15.0, span.Fragments[0].Width)
}

func TestImageSizing(t *testing.T) {
	root, height := laidOut(t, "img { width: 40px; height: 30px }", `<div id="t"><img src="x.png"></div>`, 200)
	img := byTag(root, "img")
	assert.Equal(t, css.RectF{X: 0, Y: 0, Width: 40, Height: 30}, img.Bounds())
	// the strut's descent hangs below the image
	assert.Equal(t, 32.5, height)
}

func TestImageKeepsAspectRatio(t *testing.T) {
	parser := css.NewParser(nil)
	root := html.Parse(`<div><img src="x.png"></div>`)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet+testSheet+"img { width: 40px }"))
	correct.Tree(root, nil)
	img := byTag(root, "img")
	img.Image = graphicstest.NewImage(80, 40)

	newTestEngine(nil).Layout(root, 200)
	assert.Equal(t, 40.0, img.Size.Width)
	assert.Equal(t, 20.0, img.Size.Height)
}

func TestBrokenImageGetsPlaceholder(t *testing.T) {
	parser := css.NewParser(nil)
	root := html.Parse(`<div><img src="x.png"></div>`)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet+testSheet))
	correct.Tree(root, nil)
	img := byTag(root, "img")
	img.ImageError = true

	newTestEngine(nil).Layout(root, 200)
	assert.Equal(t, css.SizeF{Width: 16, Height: 16}, img.Size)
}

func TestInlineBlockShrinksToFit(t *testing.T) {
	const markup = `<div><span id="ib">aa bb</span></div>`
	const sheet = "#ib { display: inline-block }"

	root, _ := laidOut(t, sheet, markup, 200)
	assert.Equal(t, 25.0, byID(root, "ib").Size.Width)

	root, _ = laidOut(t, sheet, markup, 18)
	ib := byID(root, "ib")
	assert.Equal(t, 18.0, ib.Size.Width)
	assert.Len(t, ib.LineBoxes, 2)
}

func TestListMarkers(t *testing.T) {
	tests := []struct {
		name   string
		sheet  string
		markup string
		want   []string
	}{
		{"decimal", "", `<div><ol><li>a</li><li>b</li></ol></div>`, []string{"1.", "2."}},
		{"start", "", `<div><ol start="3"><li>a</li><li>b</li></ol></div>`, []string{"3.", "4."}},
		{"value", "", `<div><ol><li>a</li><li value="10">b</li><li>c</li></ol></div>`, []string{"1.", "10.", "11."}},
		{"roman", "ol { list-style-type: upper-roman }", `<div><ol start="4"><li>a</li></ol></div>`, []string{"IV."}},
		{"disc", "", `<div><ul><li>a</li></ul></div>`, []string{"•"}},
		{"none", "ul { list-style-type: none }", `<div><ul><li>a</li></ul></div>`, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, _ := laidOut(t, tt.sheet, tt.markup, 200)
			var got []string
			root.Walk(func(b *html.Box) bool {
				if b.TagName() == "li" {
					got = append(got, b.Marker)
				}
				return true
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarkerText(t *testing.T) {
	assert.Equal(t, "a.", markerText("lower-alpha", 1))
	assert.Equal(t, "aa.", markerText("lower-alpha", 27))
	assert.Equal(t, "Z.", markerText("upper-latin", 26))
	assert.Equal(t, "xiv.", markerText("lower-roman", 14))
	assert.Equal(t, "MCMXCIX.", markerText("upper-roman", 1999))
	assert.Equal(t, "07.", markerText("decimal-leading-zero", 7))
	assert.Equal(t, "○", markerText("circle", 1))
	assert.Equal(t, "•", markerText("unknown", 1))
}

func TestInsideMarkerIndentsFirstLine(t *testing.T) {
	root, _ := laidOut(t, "ul { margin: 0; list-style-position: inside }", `<div><ul><li>aa</li></ul></div>`, 200)
	li := byTag(root, "li")
	// "•" is one rune wide plus a space
	assert.Equal(t, 10.0, wordAt(t, li, "aa").Rect.X)
}

func TestTableGrid(t *testing.T) {
	root, _ := laidOut(t, "",
		`<div><table><tr><td>aa</td><td>b</td></tr><tr><td colspan="2">cccc</td></tr></table></div>`, 200)
	table := byTag(root, "table")

	assert.Equal(t, 26.0, table.Size.Width)
	assert.Equal(t, 35.0, table.Size.Height)

	var cells []*html.Box
	root.Walk(func(b *html.Box) bool {
		if b.TagName() == "td" {
			cells = append(cells, b)
		}
		return true
	})
	require.Len(t, cells, 3)
	assert.Equal(t, css.RectF{X: 2, Y: 2, Width: 12.5, Height: 14.5}, cells[0].Bounds())
	assert.Equal(t, css.RectF{X: 16.5, Y: 2, Width: 7.5, Height: 14.5}, cells[1].Bounds())
	assert.Equal(t, css.RectF{X: 2, Y: 18.5, Width: 22, Height: 14.5}, cells[2].Bounds())
	assert.Equal(t, 3.0, wordAt(t, cells[0], "aa").Rect.X)
	assert.Equal(t, 3.0, wordAt(t, cells[0], "aa").Rect.Y)
}

func TestRowspanReservesSlots(t *testing.T) {
	parser := css.NewParser(nil)
	root := html.Parse(`<table><tr><td rowspan="2">a</td><td>b</td></tr><tr><td>c</td></tr></table>`)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet))
	correct.Tree(root, nil)

	info := newTestEngine(nil).buildTableInfo(byTag(root, "table"))
	require.Len(t, info.Rows, 2)
	assert.Equal(t, 2, info.Cols)
	c := info.Rows[1].Cells[0]
	assert.Equal(t, 1, c.Row)
	assert.Equal(t, 1, c.Col)
}

func TestBorderSpacing(t *testing.T) {
	parser := css.NewParser(nil)
	root := html.Parse(`<table id="a"></table><table id="b"></table><table id="c"></table>`)
	sheet := css.DefaultStyleSheet + `#a { border-spacing: 3px } #b { border-spacing: 3px 5px } #c { border-collapse: collapse }`
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(sheet))

	h, v := borderSpacing(byID(root, "a"))
	assert.Equal(t, []float64{3, 3}, []float64{h, v})
	h, v = borderSpacing(byID(root, "b"))
	assert.Equal(t, []float64{3, 5}, []float64{h, v})
	h, v = borderSpacing(byID(root, "c"))
	assert.Equal(t, []float64{0, 0}, []float64{h, v})
}

func TestDistributeColumns(t *testing.T) {
	mins := []float64{10, 10}
	maxs := []float64{30, 10}
	pcts := []float64{0, 0}

	assert.Equal(t, []float64{30, 10}, distribute(mins, maxs, pcts, 40))
	assert.Equal(t, []float64{20, 10}, distribute(mins, maxs, pcts, 30))
	assert.Equal(t, []float64{10, 10}, distribute(mins, maxs, pcts, 5))
	assert.Equal(t, []float64{60, 20}, distribute(mins, maxs, pcts, 80))
	assert.Equal(t, []float64{40, 10}, distribute(mins, maxs, []float64{0, 20}, 50))
}

func TestLayoutPanicIsReported(t *testing.T) {
	collector := &events.Collector{}
	e := NewEngine(panicFonts{}, collector, nil)
	parser := css.NewParser(nil)
	root := html.Parse(`<div>text</div>`)
	cascade.New(parser, nil, "", nil).Apply(root, parser.Parse(css.DefaultStyleSheet))
	correct.Tree(root, nil)

	require.NotPanics(t, func() { e.Layout(root, 100) })
	evs := collector.Events()
	require.NotEmpty(t, evs)
	assert.Equal(t, events.Layout, evs[0].Type)
	assert.True(t, errors.Is(evs[0].Err, errNoFonts))
}

var errNoFonts = errors.New("no fonts")

type panicFonts struct{}

func (panicFonts) GetFont(string, float64, css.FontStyle) graphics.Font { panic(errNoFonts) }
