package layout

import (
	"math"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// layoutBlock lays out the block-level box b. x is the left edge of the
// containing block's content area, y the top of b's border box. The edges
// of b must have been resolved against containingWidth.
func (e *Engine) layoutBlock(b *html.Box, x, y, containingWidth float64) {
	if b.Display() == css.DisplayNone {
		b.Location = css.PointF{X: x, Y: y}
		return
	}
	if b.Display() == css.DisplayTable {
		e.layoutTable(b, x, y, containingWidth)
		return
	}
	width := e.blockWidth(b, containingWidth)
	e.placeBlock(b, x+b.Margin.Left, y, width)
}

// blockWidth returns the border-box width of b and resolves auto
// horizontal margins.
func (e *Engine) blockWidth(b *html.Box, containingWidth float64) float64 {
	edges := b.Border.Horizontal() + b.Padding.Horizontal()
	w, auto := e.specifiedWidth(b, containingWidth)
	if auto {
		return math.Max(0, containingWidth-b.Margin.Horizontal())
	}
	width := w + edges
	e.resolveAutoMargins(b, containingWidth, width)
	return width
}

func (e *Engine) resolveAutoMargins(b *html.Box, containingWidth, width float64) {
	left := b.Style("margin-left") == "auto"
	right := b.Style("margin-right") == "auto"
	free := containingWidth - width - b.Margin.Horizontal()
	if free < 0 {
		free = 0
	}
	switch {
	case left && right:
		b.Margin.Left += free / 2
		b.Margin.Right += free / 2
	case left:
		b.Margin.Left += free
	case right:
		b.Margin.Right += free
	}
}

// specifiedWidth returns the content width set by width, min-width and
// max-width, or auto.
func (e *Engine) specifiedWidth(b *html.Box, containingWidth float64) (float64, bool) {
	w, ok := css.ParseLength(b.Style("width"), b.FontSize(), containingWidth)
	if !ok || w < 0 {
		return 0, true
	}
	return clampLength(b, w, "min-width", "max-width", containingWidth), false
}

// clampLength applies a min/max pair to v.
func clampLength(b *html.Box, v float64, minName, maxName string, base float64) float64 {
	if max, ok := css.ParseLength(b.Style(maxName), b.FontSize(), base); ok && v > max {
		v = max
	}
	if min, ok := css.ParseLength(b.Style(minName), b.FontSize(), base); ok && v < min {
		v = min
	}
	return v
}

// placeBlock lays out the content of b with its border box at left, top
// and the given border-box width, then sets its height.
func (e *Engine) placeBlock(b *html.Box, left, top, width float64) {
	b.Location = css.PointF{X: left, Y: top}
	b.Size.Width = width
	cx := left + b.Border.Left + b.Padding.Left
	cy := top + b.Border.Top + b.Padding.Top
	cw := math.Max(0, width-b.Border.Horizontal()-b.Padding.Horizontal())

	if b.Display() == css.DisplayListItem {
		e.prepareMarker(b)
	}
	var contentHeight float64
	if hasInlineContent(b) {
		contentHeight = e.layoutInline(b, cx, cy, cw)
	} else {
		contentHeight = e.layoutBlockChildren(b, cx, cy, cw)
	}
	b.Size.Height = e.blockHeight(b, contentHeight) + b.Border.Vertical() + b.Padding.Vertical()
	updateActual(b)
}

// blockHeight returns the content height of b: its specified height, or
// the height of its content. Percentage heights behave as auto.
func (e *Engine) blockHeight(b *html.Box, contentHeight float64) float64 {
	h := contentHeight
	v := b.Style("height")
	if !css.IsPercentage(v) {
		if specified, ok := css.ParseLength(v, b.FontSize(), 0); ok && specified >= 0 {
			h = specified
		}
	}
	return math.Max(0, clampLength(b, h, "min-height", "max-height", 0))
}

// hasInlineContent reports whether b establishes an inline formatting
// context. After correction children are either all inline or all block.
func hasInlineContent(b *html.Box) bool {
	for _, child := range b.Children {
		if child.Display() == css.DisplayNone {
			continue
		}
		return child.IsInline()
	}
	return false
}

// layoutBlockChildren stacks the block children of b and returns the height
// they take, including the bottom margin of the last one. Vertical margins
// of adjacent siblings collapse.
func (e *Engine) layoutBlockChildren(b *html.Box, cx, cy, cw float64) float64 {
	cur := cy
	prevMargin := 0.0
	collapsing := false
	for _, child := range b.Children {
		if child.Display() == css.DisplayNone {
			child.Location = css.PointF{X: cx, Y: cur}
			continue
		}
		e.resolveEdges(child, cw)
		participates := participatesInCollapsing(child)
		base := cur
		if collapsing && participates {
			base = cur - prevMargin
		}
		top := cur + child.Margin.Top
		if collapsing && participates {
			top = base + collapseMargins(prevMargin, child.Margin.Top)
		}
		e.guard(child, func() { e.layoutBlock(child, cx, top, cw) })

		switch {
		case participates && isCollapseThrough(child):
			m := collapseMargins(child.Margin.Top, child.Margin.Bottom)
			if collapsing {
				m = collapseMargins(prevMargin, m)
			}
			prevMargin = m
			cur = base + m
			collapsing = true
		default:
			cur = child.Location.Y + child.Size.Height + child.Margin.Bottom
			prevMargin = child.Margin.Bottom
			collapsing = participates
		}
	}
	return math.Max(0, cur-cy)
}

// updateActual records the extent of b including overflowing descendants.
func updateActual(b *html.Box) {
	bottom := b.Location.Y + b.Size.Height
	right := b.Location.X + b.Size.Width
	for _, child := range b.Children {
		bottom = math.Max(bottom, child.ActualBottom)
		right = math.Max(right, child.ActualRight)
	}
	for _, line := range b.LineBoxes {
		bottom = math.Max(bottom, line.Rect.Bottom())
		right = math.Max(right, line.Rect.Right())
	}
	b.ActualBottom, b.ActualRight = bottom, right
}
