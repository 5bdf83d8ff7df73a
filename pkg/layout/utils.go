package layout

import (
	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// shift moves b and everything laid out inside it by dx, dy.
func shift(b *html.Box, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	b.Walk(func(x *html.Box) bool {
		x.Location.X += dx
		x.Location.Y += dy
		x.ActualRight += dx
		x.ActualBottom += dy
		for _, w := range x.Words {
			w.Rect.X += dx
			w.Rect.Y += dy
		}
		for i := range x.Fragments {
			x.Fragments[i].X += dx
			x.Fragments[i].Y += dy
		}
		for _, lb := range x.LineBoxes {
			lb.Rect.X += dx
			lb.Rect.Y += dy
			lb.Baseline += dy
			for k, r := range lb.Rects {
				r.X += dx
				r.Y += dy
				lb.Rects[k] = r
			}
		}
		return true
	})
}

// shiftContent moves the children of b but not b itself.
func shiftContent(b *html.Box, dy float64) {
	if dy == 0 {
		return
	}
	for _, c := range b.Children {
		shift(c, 0, dy)
	}
	for _, lb := range b.LineBoxes {
		lb.Rect.Y += dy
		lb.Baseline += dy
		for k, r := range lb.Rects {
			r.Y += dy
			lb.Rects[k] = r
		}
	}
}

// imageSize returns the content size of an image from its width and
// height, keeping the natural aspect ratio when only one is set. A broken
// image without a size shows as a small placeholder.
func (e *Engine) imageSize(b *html.Box, containingWidth float64) (float64, float64) {
	var nw, nh float64
	switch {
	case b.Image != nil && !b.ImageRect.IsEmpty():
		nw, nh = b.ImageRect.Width, b.ImageRect.Height
	case b.Image != nil:
		nw, nh = float64(b.Image.Width()), float64(b.Image.Height())
	case b.ImageError:
		nw, nh = 16, 16
	}

	w, wAuto := e.specifiedWidth(b, containingWidth)
	h, hOK := css.ParseLength(b.Style("height"), b.FontSize(), 0)
	if css.IsPercentage(b.Style("height")) || h < 0 {
		hOK = false
	}
	switch {
	case !wAuto && hOK:
		return w, h
	case !wAuto:
		if nw > 0 {
			return w, w * nh / nw
		}
		return w, nh
	case hOK:
		if nh > 0 {
			return h * nw / nh, h
		}
		return nw, h
	}
	return nw, nh
}
