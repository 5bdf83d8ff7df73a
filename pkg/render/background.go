package render

import (
	"strings"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
)

// paintBackground fills r with the background color, gradient and image of
// b, in that order.
func (p *Painter) paintBackground(g graphics.Graphics, b *html.Box, r css.RectF) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	radii := clampRadii(b.CornerRadii(), r)
	fill := func(brush graphics.Brush) {
		if radii.IsZero() {
			g.FillRect(brush, r)
			return
		}
		g.FillPath(brush, roundedPath(g, r, radii))
	}

	if c := b.Color("background-color", css.Transparent); !c.IsTransparent() {
		fill(p.res.GetSolidBrush(c))
	}
	if v := b.Style("background-gradient"); v != "" {
		if grad, ok := css.ParseLinearGradient(v); ok && len(grad.Stops) > 0 {
			fill(p.res.GetLinearGradientBrush(r, grad.Angle, grad.Resolve(r.Width, r.Height)))
		}
	}
	if b.BackgroundImage != nil {
		p.paintBackgroundImage(g, b, r)
	}
}

// paintBackgroundImage tiles the background image of b over r following
// background-repeat, starting at background-position inside the padding
// box.
func (p *Painter) paintBackgroundImage(g graphics.Graphics, b *html.Box, r css.RectF) {
	img := b.BackgroundImage
	imgW, imgH := float64(img.Width()), float64(img.Height())
	if imgW <= 0 || imgH <= 0 {
		return
	}
	origin := paddingBox(b, r)
	posX, posY := backgroundPosition(b.Style("background-position"), b.FontSize(), origin.Width-imgW, origin.Height-imgH)
	startX, startY := origin.X+posX, origin.Y+posY

	g.PushClip(intersect(g.Clip(), r))
	defer g.PopClip()

	tile := func(x, y float64) {
		g.DrawImage(img, css.RectF{X: x, Y: y, Width: imgW, Height: imgH}, css.RectF{})
	}
	// first tile position at or before the start of the area
	first := func(start, areaStart, size float64) float64 {
		for start > areaStart {
			start -= size
		}
		return start
	}

	switch b.Style("background-repeat") {
	case "no-repeat":
		tile(startX, startY)
	case "repeat-x":
		for x := first(startX, r.X, imgW); x < r.Right(); x += imgW {
			tile(x, startY)
		}
	case "repeat-y":
		for y := first(startY, r.Y, imgH); y < r.Bottom(); y += imgH {
			tile(startX, y)
		}
	default:
		for y := first(startY, r.Y, imgH); y < r.Bottom(); y += imgH {
			for x := first(startX, r.X, imgW); x < r.Right(); x += imgW {
				tile(x, y)
			}
		}
	}
}

// backgroundPosition resolves a one or two value background-position.
// Percentages and keywords refer to the free space freeX, freeY between the
// area and the image.
func backgroundPosition(value string, em, freeX, freeY float64) (float64, float64) {
	parts := strings.Fields(strings.ToLower(value))
	if len(parts) == 0 {
		return 0, 0
	}
	// a lone vertical keyword or reversed keyword pair
	if parts[0] == "top" || parts[0] == "bottom" {
		if len(parts) == 1 {
			parts = []string{"center", parts[0]}
		} else {
			parts[0], parts[1] = parts[1], parts[0]
		}
	}
	if len(parts) == 1 {
		parts = append(parts, "center")
	}
	resolve := func(v string, free float64) float64 {
		switch v {
		case "left", "top":
			return 0
		case "center":
			return free / 2
		case "right", "bottom":
			return free
		}
		n, ok := css.ParseLength(v, em, free)
		if !ok {
			return 0
		}
		return n
	}
	return resolve(parts[0], freeX), resolve(parts[1], freeY)
}

// clampRadii scales the radii down so that adjacent corners do not
// overlap inside r.
func clampRadii(c css.Corners, r css.RectF) css.Corners {
	if c.IsZero() {
		return c
	}
	scale := 1.0
	check := func(a, b, length float64) {
		if a+b > length && a+b > 0 {
			scale = min(scale, length/(a+b))
		}
	}
	check(c.TopLeft, c.TopRight, r.Width)
	check(c.BottomLeft, c.BottomRight, r.Width)
	check(c.TopLeft, c.BottomLeft, r.Height)
	check(c.TopRight, c.BottomRight, r.Height)
	return css.Corners{
		TopLeft:     c.TopLeft * scale,
		TopRight:    c.TopRight * scale,
		BottomRight: c.BottomRight * scale,
		BottomLeft:  c.BottomLeft * scale,
	}
}

// roundedPath outlines r clockwise from the top left with a quarter arc at
// every rounded corner.
func roundedPath(g graphics.Graphics, r css.RectF, c css.Corners) graphics.Path {
	path := g.NewPath()
	path.Start(r.X+c.TopLeft, r.Y)
	path.LineTo(r.Right()-c.TopRight, r.Y)
	if c.TopRight > 0 {
		path.ArcTo(r.Right(), r.Y+c.TopRight, c.TopRight, css.CornerTopRight)
	}
	path.LineTo(r.Right(), r.Bottom()-c.BottomRight)
	if c.BottomRight > 0 {
		path.ArcTo(r.Right()-c.BottomRight, r.Bottom(), c.BottomRight, css.CornerBottomRight)
	}
	path.LineTo(r.X+c.BottomLeft, r.Bottom())
	if c.BottomLeft > 0 {
		path.ArcTo(r.X, r.Bottom()-c.BottomLeft, c.BottomLeft, css.CornerBottomLeft)
	}
	path.LineTo(r.X, r.Y+c.TopLeft)
	if c.TopLeft > 0 {
		path.ArcTo(r.X+c.TopLeft, r.Y, c.TopLeft, css.CornerTopLeft)
	}
	path.Close()
	return path
}
