package layout

import (
	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// collapseMargins returns the collapsed margin value for two adjoining vertical margins.
// Per CSS 2.1: both positive => max, both negative => most negative, mixed => sum.
func collapseMargins(margin1, margin2 float64) float64 {
	if margin1 >= 0 && margin2 >= 0 {
		if margin1 > margin2 {
			return margin1
		}
		return margin2
	}
	if margin1 < 0 && margin2 < 0 {
		if margin1 < margin2 {
			return margin1
		}
		return margin2
	}
	return margin1 + margin2
}

// resolveEdges fills the margin, border and padding of b. Percentages refer
// to the width of the containing block; auto margins resolve to 0 here and
// are handled when the width is known.
func (e *Engine) resolveEdges(b *html.Box, containingWidth float64) {
	edges := func(prefix, suffix string) css.Edges {
		var v [4]float64
		for i, side := range css.Sides {
			v[i] = b.Length(prefix+side.String()+suffix, containingWidth)
		}
		return css.Edges{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
	}
	if b.HasText() {
		b.Margin, b.Padding, b.Border = css.Edges{}, css.Edges{}, css.Edges{}
		return
	}
	b.Margin = edges("margin-", "")
	b.Padding = edges("padding-", "")
	for _, p := range []*float64{&b.Padding.Top, &b.Padding.Right, &b.Padding.Bottom, &b.Padding.Left} {
		if *p < 0 {
			*p = 0
		}
	}
	b.Border = b.BorderWidths()
}

// isCollapseThrough returns true if a box's top and bottom margins collapse through it:
// no height, no vertical border or padding, and no content.
func isCollapseThrough(b *html.Box) bool {
	if b.Size.Height > 0 || b.Border.Vertical() > 0 || b.Padding.Vertical() > 0 {
		return false
	}
	if !participatesInCollapsing(b) {
		return false
	}
	for _, child := range b.Children {
		if child.Display() == css.DisplayNone {
			continue
		}
		if !isCollapseThrough(child) {
			return false
		}
	}
	return true
}

// participatesInCollapsing reports whether the vertical margins of b take
// part in sibling margin collapsing. Table cells, inline blocks and the
// document body keep their margins.
func participatesInCollapsing(b *html.Box) bool {
	if b.TagName() == "body" {
		return false
	}
	switch b.Display() {
	case css.DisplayBlock, css.DisplayListItem, css.DisplayTable:
		return b.Style("overflow") == "visible"
	}
	return false
}
