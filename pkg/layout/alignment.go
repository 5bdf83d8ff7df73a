package layout

import (
	"math"

	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
)

// alignLine returns the horizontal offset of every item of ln for the
// text-align of block. Justified lines spread the free space over the
// collapsed spaces; the last line and lines ended by a break stay left.
func alignLine(block *html.Box, ln *line, avail float64, last bool) []float64 {
	offsets := make([]float64, len(ln.items))
	free := avail - ln.width
	if free <= 0 {
		return offsets
	}
	switch block.Style("text-align") {
	case "right", "end":
		for i := range offsets {
			offsets[i] = free
		}
	case "center":
		for i := range offsets {
			offsets[i] = free / 2
		}
	case "justify":
		if last || ln.forced {
			return offsets
		}
		gaps := 0
		for _, it := range ln.items {
			if it.space > 0 {
				gaps++
			}
		}
		if gaps == 0 {
			return offsets
		}
		per := free / float64(gaps)
		acc := 0.0
		for i, it := range ln.items {
			if it.space > 0 {
				acc += per
			}
			offsets[i] = acc
		}
	}
	return offsets
}

// atomExtent returns how far an image or inline block reaches above and
// below the baseline for its vertical-align.
func atomExtent(b *html.Box, blockFont graphics.Font) (above, below float64) {
	h := b.Size.Height + b.Margin.Vertical()
	switch b.Style("vertical-align") {
	case "middle":
		mid := blockFont.Ascent() / 4
		return h/2 + mid, math.Max(0, h/2-mid)
	case "text-bottom":
		return math.Max(0, h-blockFont.Descent()), blockFont.Descent()
	}
	return h, 0
}

// atomTop returns the top of the border box of an atom placed on a line
// starting at lineTop with the given baseline and height.
func atomTop(b *html.Box, blockFont graphics.Font, baseline, lineTop, lineHeight float64) float64 {
	h := b.Size.Height + b.Margin.Vertical()
	switch b.Style("vertical-align") {
	case "top", "text-top":
		return lineTop + b.Margin.Top
	case "bottom":
		return lineTop + lineHeight - h + b.Margin.Top
	case "middle":
		return baseline - blockFont.Ascent()/4 - h/2 + b.Margin.Top
	case "text-bottom":
		return baseline + blockFont.Descent() - h + b.Margin.Top
	}
	return baseline - h + b.Margin.Top
}
