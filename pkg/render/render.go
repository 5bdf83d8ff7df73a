// Package render paints a laid out box tree on a graphics surface.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
)

// Resources hands out the cached drawing resources. graphics.Adapter
// implements it.
type Resources interface {
	GetFont(family string, size float64, style css.FontStyle) graphics.Font
	GetSolidBrush(c css.Color) graphics.Brush
	GetLinearGradientBrush(r css.RectF, angle float64, stops []css.ColorStop) graphics.Brush
	GetPen(c css.Color, width float64, dash graphics.DashStyle) graphics.Pen
}

// Selection marks selected words and the colors they are painted with.
type Selection struct {
	Words      map[*html.Word]bool
	Color      css.Color
	Background css.Color
}

// Painter paints box trees.
type Painter struct {
	res      Resources
	reporter events.Reporter
	logger   *zap.Logger

	// Selection, when set, highlights its words.
	Selection *Selection
}

// NewPainter creates a painter drawing with res.
func NewPainter(res Resources, reporter events.Reporter, logger *zap.Logger) *Painter {
	if reporter == nil {
		reporter = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Painter{res: res, reporter: reporter, logger: logger.Named("render")}
}

// Paint draws root and its descendants that intersect clip on g. Boxes
// paint in tree order: background and borders first, then their content and
// children.
func (p *Painter) Paint(g graphics.Graphics, root *html.Box, clip css.RectF) {
	g.PushClip(clip)
	defer g.PopClip()
	p.paintBox(g, root)
}

func (p *Painter) paintBox(g graphics.Graphics, b *html.Box) {
	if b.Display() == css.DisplayNone || !extent(b).Intersects(g.Clip()) {
		return
	}
	clipped := false
	p.guard(b, func() {
		if b.Style("visibility") != "hidden" {
			p.paintOwn(g, b)
		}
		if b.Style("overflow") == "hidden" && !b.HasText() && !isInlineElement(b) {
			g.PushClip(intersect(g.Clip(), paddingBox(b, b.Bounds())))
			clipped = true
		}
	})
	for _, child := range b.Children {
		p.paintBox(g, child)
	}
	if clipped {
		g.PopClip()
	}
}

// paintOwn paints everything b draws itself.
func (p *Painter) paintOwn(g graphics.Graphics, b *html.Box) {
	switch {
	case b.HasText():
		p.paintWords(g, b)
		p.paintDecorations(g, b)
		return
	case isInlineElement(b):
		last := len(b.Fragments) - 1
		for i, r := range b.Fragments {
			left := i == 0 && (!b.Fragmented || b.IsFirstFragment)
			right := i == last && (!b.Fragmented || b.IsLastFragment)
			p.paintBackground(g, b, r)
			p.paintBorders(g, b, r, left, right)
		}
		return
	}
	r := b.Bounds()
	p.paintBackground(g, b, r)
	p.paintBorders(g, b, r, true, true)
	if b.IsImage() {
		p.paintImage(g, b)
	}
	if b.Marker != "" {
		p.paintMarker(g, b)
	}
}

// guard runs fn and reports a panic as a paint error.
func (p *Painter) guard(b *html.Box, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			p.logger.Warn("paint failed", zap.Stringer("box", b), zap.Error(err))
			p.reporter.ReportError(events.Paint, "Failed to paint "+b.String(), err)
		}
	}()
	fn()
}

// isInlineElement reports whether b is an inline element painted per line
// fragment.
func isInlineElement(b *html.Box) bool {
	return b.Display() == css.DisplayInline && !b.HasText() && !b.IsImage()
}

// extent covers b and whatever overflows from it.
func extent(b *html.Box) css.RectF {
	r := css.RectF{X: b.Location.X, Y: b.Location.Y, Width: b.ActualRight - b.Location.X, Height: b.ActualBottom - b.Location.Y}
	if r.Width <= 0 {
		r.Width = 1
	}
	if r.Height <= 0 {
		r.Height = 1
	}
	return r
}

func intersect(a, b css.RectF) css.RectF {
	left, top := max(a.X, b.X), max(a.Y, b.Y)
	right, bottom := min(a.Right(), b.Right()), min(a.Bottom(), b.Bottom())
	if right < left || bottom < top {
		return css.RectF{X: left, Y: top}
	}
	return css.RectF{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// paddingBox shrinks the border box r by the borders of b.
func paddingBox(b *html.Box, r css.RectF) css.RectF {
	return css.RectF{
		X:      r.X + b.Border.Left,
		Y:      r.Y + b.Border.Top,
		Width:  max(0, r.Width-b.Border.Horizontal()),
		Height: max(0, r.Height-b.Border.Vertical()),
	}
}
