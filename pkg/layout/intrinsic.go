package layout

import (
	"math"
	"unicode/utf8"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// minMaxContent returns the min-content and max-content widths of the
// content box of b: the narrowest width it fits without overflowing and the
// width it takes without any soft line break.
func (e *Engine) minMaxContent(b *html.Box) (float64, float64) {
	if b.Display() == css.DisplayTable {
		return e.tableMinMax(b)
	}
	if !css.IsPercentage(b.Style("width")) {
		if w, auto := e.specifiedWidth(b, 0); !auto {
			return w, w
		}
	}
	if hasInlineContent(b) {
		return e.inlineMinMax(b)
	}
	var min, max float64
	for _, child := range b.Children {
		if child.Display() == css.DisplayNone {
			continue
		}
		cmin, cmax := e.outerMinMax(child)
		min = math.Max(min, cmin)
		max = math.Max(max, cmax)
	}
	return min, max
}

// outerMinMax is minMaxContent of b plus its margins, borders and padding.
func (e *Engine) outerMinMax(b *html.Box) (float64, float64) {
	e.resolveEdges(b, 0)
	edges := b.Margin.Horizontal() + b.Border.Horizontal() + b.Padding.Horizontal()
	if b.IsImage() {
		w, _ := e.imageSize(b, 0)
		return w + edges, w + edges
	}
	min, max := e.minMaxContent(b)
	return min + edges, max + edges
}

// intrinsicLine tracks the widths seen while walking inline content.
type intrinsicLine struct {
	min, max float64
	// line is the width of the current line without soft breaks, run the
	// width of the current unbreakable run.
	line, run float64
	pending   float64
}

func (s *intrinsicLine) breakRun() {
	s.min = math.Max(s.min, s.run)
	s.run = 0
}

func (s *intrinsicLine) endLine() {
	s.breakRun()
	s.max = math.Max(s.max, s.line)
	s.line, s.pending = 0, 0
}

func (s *intrinsicLine) add(width float64, nowrap bool) {
	if s.line > 0 {
		s.line += s.pending
		if nowrap {
			s.run += s.pending
		}
	}
	if !nowrap {
		s.breakRun()
	}
	s.pending = 0
	s.line += width
	s.run += width
}

func (e *Engine) inlineMinMax(b *html.Box) (float64, float64) {
	s := &intrinsicLine{}
	s.line = e.firstLineIndent(b, 0)
	e.walkIntrinsic(b, s)
	s.endLine()
	return s.min, s.max
}

func (e *Engine) walkIntrinsic(b *html.Box, s *intrinsicLine) {
	for _, child := range b.Children {
		if child.Display() == css.DisplayNone {
			continue
		}
		nowrap := !wraps(child.Style("white-space"))
		switch {
		case child.HasText():
			font := e.fontOf(child)
			ws := child.Style("white-space")
			space := font.SpaceWidth() + wordSpacing(child)
			letter := letterSpacing(child)
			for _, w := range child.Words {
				switch {
				case w.IsLineBreak:
					s.endLine()
					continue
				case w.IsSpace && !preserves(ws):
					s.pending = space
					continue
				}
				if w.HasSpaceBefore {
					s.pending = space
				}
				s.add(font.MeasureString(w.Text)+letter*float64(utf8.RuneCountInString(w.Text)), nowrap)
				if w.HasSpaceAfter {
					s.pending = space
				}
			}
		case child.IsImage() || child.Display() == css.DisplayInlineBlock:
			cmin, cmax := e.outerMinMax(child)
			s.add(cmax, nowrap)
			if !nowrap {
				s.run = cmin
			}
		default:
			e.resolveEdges(child, 0)
			s.line += child.Margin.Left + child.Border.Left + child.Padding.Left
			s.run += child.Margin.Left + child.Border.Left + child.Padding.Left
			e.walkIntrinsic(child, s)
			s.line += child.Padding.Right + child.Border.Right + child.Margin.Right
			s.run += child.Padding.Right + child.Border.Right + child.Margin.Right
		}
	}
}
