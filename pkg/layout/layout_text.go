package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
)

type itemKind int

const (
	itemWord itemKind = iota
	itemAtom
	itemOpen
	itemClose
)

// inlineItem is one unit of an inline formatting context: a word, an
// atomic box (image or inline block), or the start or end edge of an
// inline element.
type inlineItem struct {
	kind itemKind
	word *html.Word
	// box is the text box of a word, the atomic box, or the inline
	// element an edge belongs to.
	box   *html.Box
	font  graphics.Font
	width float64
	// space is the width of a collapsed space in front of the item; it is
	// dropped at the start of a line.
	space float64
	// nowrap forbids a line break in front of the item.
	nowrap bool
	// path lists the inline elements containing the item, outermost first.
	path []*html.Box
}

type placedItem struct {
	*inlineItem
	x     float64
	space float64
}

type line struct {
	items []placedItem
	width float64
	// forced is set when the line was ended by a line break word.
	forced bool
}

func (l *line) hasContent() bool {
	for _, it := range l.items {
		if it.kind == itemWord || it.kind == itemAtom {
			return true
		}
	}
	return false
}

// layoutInline breaks the inline content of block into lines inside the
// content area at cx, cy of width cw and returns the height of the lines.
func (e *Engine) layoutInline(block *html.Box, cx, cy, cw float64) float64 {
	var items []*inlineItem
	pending := 0.0
	e.collectInline(block, nil, cw, &items, &pending)

	lines := e.breakLines(block, items, cw)
	blockFont := e.fontOf(block)
	y := cy
	for i, ln := range lines {
		indent := 0.0
		if i == 0 {
			indent = e.firstLineIndent(block, cw)
		}
		y += e.placeLine(block, blockFont, ln, cx+indent, y, cw-indent, i == len(lines)-1)
	}
	e.finishInlineBoxes(block)
	return y - cy
}

// collectInline flattens the inline descendants of b into items. pending
// carries a collapsed space that has not been attached to an item yet.
func (e *Engine) collectInline(b *html.Box, path []*html.Box, cw float64, items *[]*inlineItem, pending *float64) {
	for _, child := range b.Children {
		if child.Display() == css.DisplayNone {
			continue
		}
		nowrap := !wraps(child.Style("white-space"))
		switch {
		case child.HasText():
			e.collectWords(child, path, items, pending)
		case child.IsImage() || child.Display() == css.DisplayInlineBlock:
			e.resolveEdges(child, cw)
			e.layoutAtom(child, cw)
			*items = append(*items, &inlineItem{
				kind:   itemAtom,
				box:    child,
				width:  child.Size.Width + child.Margin.Horizontal(),
				space:  *pending,
				nowrap: nowrap,
				path:   path,
			})
			*pending = 0
		default:
			e.resolveEdges(child, cw)
			inner := append(append([]*html.Box(nil), path...), child)
			open := &inlineItem{kind: itemOpen, box: child, font: e.fontOf(child), nowrap: true, path: inner}
			if !child.Fragmented || child.IsFirstFragment {
				open.width = child.Margin.Left + child.Border.Left + child.Padding.Left
			}
			*items = append(*items, open)
			e.collectInline(child, inner, cw, items, pending)
			end := &inlineItem{kind: itemClose, box: child, font: open.font, nowrap: true, path: inner}
			if !child.Fragmented || child.IsLastFragment {
				end.width = child.Padding.Right + child.Border.Right + child.Margin.Right
			}
			*items = append(*items, end)
		}
	}
}

func (e *Engine) collectWords(text *html.Box, path []*html.Box, items *[]*inlineItem, pending *float64) {
	font := e.fontOf(text)
	ws := text.Style("white-space")
	nowrap := !wraps(ws)
	spaceWidth := font.SpaceWidth() + wordSpacing(text)
	letter := letterSpacing(text)
	for _, w := range text.Words {
		if w.IsSpace && !preserves(ws) {
			*pending = spaceWidth
			continue
		}
		if w.HasSpaceBefore {
			*pending = spaceWidth
		}
		it := &inlineItem{kind: itemWord, word: w, box: text, font: font, space: *pending, nowrap: nowrap, path: path}
		if !w.IsLineBreak {
			it.width = font.MeasureString(w.Text) + letter*float64(utf8.RuneCountInString(w.Text))
		}
		*items = append(*items, it)
		*pending = 0
		if w.HasSpaceAfter {
			*pending = spaceWidth
		}
	}
}

// layoutAtom sizes an image or inline block at the origin; placeLine moves
// it into its line.
func (e *Engine) layoutAtom(b *html.Box, cw float64) {
	if b.IsImage() {
		w, h := e.imageSize(b, cw)
		b.Location = css.PointF{}
		b.Size = css.SizeF{Width: w + b.Border.Horizontal() + b.Padding.Horizontal(), Height: h + b.Border.Vertical() + b.Padding.Vertical()}
		updateActual(b)
		return
	}
	edges := b.Border.Horizontal() + b.Padding.Horizontal()
	w, auto := e.specifiedWidth(b, cw)
	if auto {
		min, max := e.minMaxContent(b)
		avail := cw - b.Margin.Horizontal() - edges
		w = math.Min(math.Max(min, avail), max)
	}
	e.placeBlock(b, 0, 0, w+edges)
}

// breakLines distributes items over lines of width cw.
func (e *Engine) breakLines(block *html.Box, items []*inlineItem, cw float64) []*line {
	first := cw - e.firstLineIndent(block, cw)
	cur := &line{}
	lines := []*line{cur}
	avail := first
	newLine := func(forced bool) {
		cur.forced = forced
		// start edges stay with the content that follows them
		var carry []placedItem
		for len(cur.items) > 0 && cur.items[len(cur.items)-1].kind == itemOpen && !forced {
			carry = append([]placedItem{cur.items[len(cur.items)-1]}, carry...)
			cur.items = cur.items[:len(cur.items)-1]
		}
		cur.width = lineWidth(cur)
		cur = &line{}
		lines = append(lines, cur)
		avail = cw
		x := 0.0
		for _, it := range carry {
			it.x, it.space = x, 0
			cur.items = append(cur.items, it)
			x += it.width
		}
	}
	x := func() float64 {
		if len(cur.items) == 0 {
			return 0
		}
		last := cur.items[len(cur.items)-1]
		return last.x + last.width
	}

	for _, it := range items {
		if it.kind == itemWord && it.word.IsLineBreak {
			newLine(true)
			continue
		}
		space := it.space
		if !cur.hasContent() {
			space = 0
		}
		if (it.kind == itemWord || it.kind == itemAtom) && !it.nowrap && cur.hasContent() && x()+space+it.width > avail {
			newLine(false)
			space = 0
		}
		cur.items = append(cur.items, placedItem{inlineItem: it, x: x() + space, space: space})
	}
	cur.width = lineWidth(cur)
	return lines
}

func lineWidth(l *line) float64 {
	if len(l.items) == 0 {
		return 0
	}
	last := l.items[len(l.items)-1]
	return last.x + last.width
}

// placeLine positions the items of ln with its top at y and returns the
// line height.
func (e *Engine) placeLine(block *html.Box, blockFont graphics.Font, ln *line, x, y, avail float64, last bool) float64 {
	lb := html.NewLineBox(block)

	// strut
	above, below := halfLeading(block, blockFont)
	for _, it := range ln.items {
		switch it.kind {
		case itemWord:
			a, b := halfLeading(it.box, it.font)
			above, below = math.Max(above, a), math.Max(below, b)
		case itemAtom:
			a, b := atomExtent(it.box, blockFont)
			above, below = math.Max(above, a), math.Max(below, b)
		}
	}
	height := above + below
	baseline := y + above

	offsets := alignLine(block, ln, avail, last)
	for i, it := range ln.items {
		left := x + it.x + offsets[i]
		switch it.kind {
		case itemWord:
			top := baseline - it.font.Ascent()
			it.word.Rect = css.RectF{X: left, Y: top, Width: it.width, Height: it.font.Ascent() + it.font.Descent()}
			lb.Words = append(lb.Words, it.word)
			lb.Extend(it.box, it.word.Rect)
			for _, p := range it.path {
				lb.Extend(p, contentArea(e.fontOf(p), it.word.Rect, baseline))
			}
		case itemAtom:
			b := it.box
			top := atomTop(b, blockFont, baseline, y, height)
			shift(b, left+b.Margin.Left-b.Location.X, top-b.Location.Y)
			lb.Atoms = append(lb.Atoms, b)
			r := b.Bounds()
			for _, p := range it.path {
				lb.Extend(p, contentArea(e.fontOf(p), r, baseline))
			}
		case itemOpen, itemClose:
			b := it.box
			font := e.fontOf(b)
			top := baseline - font.Ascent()
			edge := css.RectF{X: left, Y: top, Width: 0, Height: font.Ascent() + font.Descent()}
			if it.kind == itemOpen {
				edge.X += b.Margin.Left
			} else if it.width > 0 {
				edge.X += it.width - b.Margin.Right
			}
			lb.Extend(b, edge)
			for _, p := range it.path[:len(it.path)-1] {
				lb.Extend(p, contentArea(e.fontOf(p), edge, baseline))
			}
		}
	}
	lb.Rect = css.RectF{X: x, Y: y, Width: avail, Height: height}
	lb.Baseline = baseline

	// inline element areas grow by their vertical padding and border
	for b, r := range lb.Rects {
		if b.HasText() {
			continue
		}
		r.Y -= b.Padding.Top + b.Border.Top
		r.Height += b.Padding.Vertical() + b.Border.Vertical()
		lb.Rects[b] = r
	}
	return height
}

// contentArea returns the area r covers in an inline element whose font is
// own: the vertical extent of that font around the baseline and the
// horizontal extent of r.
func contentArea(own graphics.Font, r css.RectF, baseline float64) css.RectF {
	top := baseline - own.Ascent()
	return css.RectF{X: r.X, Y: top, Width: r.Width, Height: own.Ascent() + own.Descent()}
}

// finishInlineBoxes records per-line fragments and overall bounds of the
// inline descendants of block.
func (e *Engine) finishInlineBoxes(block *html.Box) {
	seen := map[*html.Box]bool{}
	var order []*html.Box
	for _, lb := range block.LineBoxes {
		for b := range lb.Rects {
			if !seen[b] {
				seen[b] = true
				order = append(order, b)
			}
		}
	}
	for _, b := range order {
		b.Fragments = nil
		var bounds css.RectF
		for _, lb := range block.LineBoxes {
			r, ok := lb.Rects[b]
			if !ok {
				continue
			}
			b.Fragments = append(b.Fragments, r)
			if len(b.Fragments) == 1 {
				bounds = r
			} else {
				bounds = bounds.Union(r)
			}
		}
		b.Location = css.PointF{X: bounds.X, Y: bounds.Y}
		b.Size = css.SizeF{Width: bounds.Width, Height: bounds.Height}
		b.ActualBottom, b.ActualRight = bounds.Bottom(), bounds.Right()
	}
}

// firstLineIndent returns text-indent plus the room taken by an inside
// list marker.
func (e *Engine) firstLineIndent(block *html.Box, cw float64) float64 {
	indent := block.Length("text-indent", cw)
	if markerInside(block) {
		f := e.fontOf(block)
		indent += f.MeasureString(block.Marker) + f.SpaceWidth()
	}
	return indent
}

// halfLeading returns the space a run of text in box b takes above and
// below the baseline, with the line-height leading split evenly.
func halfLeading(b *html.Box, f graphics.Font) (above, below float64) {
	asc, desc := f.Ascent(), f.Descent()
	half := (lineHeight(b, f) - asc - desc) / 2
	return asc + half, desc + half
}

// lineHeight resolves line-height: normal, a unitless factor or a length.
func lineHeight(b *html.Box, f graphics.Font) float64 {
	v := strings.TrimSpace(b.Style("line-height"))
	if v == "" || v == "normal" {
		return f.Height()
	}
	if n, ok := css.ParseNumber(v); ok {
		return n * b.FontSize()
	}
	if n, ok := css.ParseLength(v, b.FontSize(), b.FontSize()); ok && n >= 0 {
		return n
	}
	return f.Height()
}

func wordSpacing(b *html.Box) float64 {
	v, ok := css.ParseLength(b.Style("word-spacing"), b.FontSize(), 0)
	if !ok {
		return 0
	}
	return v
}

func letterSpacing(b *html.Box) float64 {
	v, ok := css.ParseLength(b.Style("letter-spacing"), b.FontSize(), 0)
	if !ok {
		return 0
	}
	return v
}

// wraps reports whether lines may break inside text with this white-space.
func wraps(whiteSpace string) bool {
	return whiteSpace != "nowrap" && whiteSpace != "pre"
}

func preserves(whiteSpace string) bool {
	return whiteSpace == "pre" || whiteSpace == "pre-wrap"
}
