// Package layout computes the geometry of a corrected box tree: block
// stacking, inline line breaking, list markers, images and tables.
package layout

import (
	"fmt"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
)

// FontSource hands out measured fonts. graphics.Adapter implements it.
type FontSource interface {
	GetFont(family string, size float64, style css.FontStyle) graphics.Font
}

// Engine lays out box trees.
type Engine struct {
	fonts    FontSource
	reporter events.Reporter
	logger   *zap.Logger
}

// NewEngine creates a layout engine measuring text with fonts.
func NewEngine(fonts FontSource, reporter events.Reporter, logger *zap.Logger) *Engine {
	if reporter == nil {
		reporter = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{fonts: fonts, reporter: reporter, logger: logger.Named("layout")}
}

// Layout positions every box under root for a viewport of the given width
// and returns the document height.
func (e *Engine) Layout(root *html.Box, width float64) float64 {
	resetGeometry(root)
	e.guard(root, func() {
		e.resolveEdges(root, width)
		e.layoutBlock(root, 0, 0, width)
	})
	e.logger.Debug("layout done", zap.Float64("width", width), zap.Float64("height", root.ActualBottom))
	return root.ActualBottom
}

// guard runs fn and turns a panic into a reported layout error. The box
// keeps whatever geometry it had when the failure happened.
func (e *Engine) guard(b *html.Box, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			e.logger.Warn("layout failed", zap.Stringer("box", b), zap.Error(err))
			e.reporter.ReportError(events.Layout, "Failed to layout "+b.String(), err)
		}
	}()
	fn()
}

func resetGeometry(root *html.Box) {
	root.Walk(func(b *html.Box) bool {
		b.Location = css.PointF{}
		b.Size = css.SizeF{}
		b.ActualBottom, b.ActualRight = 0, 0
		b.LineBoxes = nil
		b.Fragments = nil
		for _, w := range b.Words {
			w.Rect = css.RectF{}
		}
		return true
	})
}

func (e *Engine) fontOf(b *html.Box) graphics.Font {
	return e.fonts.GetFont(b.Style("font-family"), b.FontSize(), b.FontStyle())
}
