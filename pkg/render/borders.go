package render

import (
	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
)

// borderSide is the resolved border of one side.
type borderSide struct {
	width float64
	style string
	color css.Color
}

func (s borderSide) visible() bool {
	return s.width > 0 && s.style != "none" && s.style != "hidden" && !s.color.IsTransparent()
}

func (s borderSide) same(o borderSide) bool {
	return s.width == o.width && s.style == o.style && s.color == o.color
}

// borderSides resolves the four sides of b in CSS order. The left and right
// sides are dropped for inline fragments that do not start or end the box.
func borderSides(b *html.Box, left, right bool) [4]borderSide {
	widths := [4]float64{b.Border.Top, b.Border.Right, b.Border.Bottom, b.Border.Left}
	var sides [4]borderSide
	for i, side := range css.Sides {
		name := "border-" + side.String()
		sides[i] = borderSide{
			width: widths[i],
			style: b.Style(name + "-style"),
			color: b.Color(name+"-color", b.Color("color", css.Black)),
		}
	}
	if !right {
		sides[css.SideRight] = borderSide{}
	}
	if !left {
		sides[css.SideLeft] = borderSide{}
	}
	return sides
}

// paintBorders draws the borders of b around the border box r.
func (p *Painter) paintBorders(g graphics.Graphics, b *html.Box, r css.RectF, left, right bool) {
	sides := borderSides(b, left, right)
	shown := false
	for _, s := range sides {
		shown = shown || s.visible()
	}
	if !shown {
		return
	}

	radii := clampRadii(b.CornerRadii(), r)
	top := sides[css.SideTop]
	uniform := sides[0].same(sides[1]) && sides[0].same(sides[2]) && sides[0].same(sides[3])

	switch {
	case !radii.IsZero():
		// rounded borders stroke one path with the top side's pen
		s := top
		if !s.visible() {
			for _, o := range sides {
				if o.visible() {
					s = o
					break
				}
			}
		}
		half := s.width / 2
		inner := css.RectF{X: r.X + half, Y: r.Y + half, Width: r.Width - s.width, Height: r.Height - s.width}
		shrunk := css.Corners{
			TopLeft:     max(0, radii.TopLeft-half),
			TopRight:    max(0, radii.TopRight-half),
			BottomRight: max(0, radii.BottomRight-half),
			BottomLeft:  max(0, radii.BottomLeft-half),
		}
		g.DrawPath(p.res.GetPen(s.color, s.width, graphics.ParseDashStyle(s.style)), roundedPath(g, inner, shrunk))
	case uniform && top.visible() && (top.style == "solid" || top.style == "dashed" || top.style == "dotted"):
		half := top.width / 2
		inner := css.RectF{X: r.X + half, Y: r.Y + half, Width: r.Width - top.width, Height: r.Height - top.width}
		g.DrawRect(p.res.GetPen(top.color, top.width, graphics.ParseDashStyle(top.style)), inner)
	default:
		for i, side := range css.Sides {
			if sides[i].visible() {
				p.paintBorderSide(g, r, sides, side)
			}
		}
	}
}

// paintBorderSide draws one side as a mitered trapezoid between the outer
// and inner border edges, or as a dashed or dotted line along its middle.
func (p *Painter) paintBorderSide(g graphics.Graphics, r css.RectF, sides [4]borderSide, side css.Side) {
	s := sides[side]
	widths := css.Edges{
		Top:    sides[css.SideTop].width,
		Right:  sides[css.SideRight].width,
		Bottom: sides[css.SideBottom].width,
		Left:   sides[css.SideLeft].width,
	}

	switch s.style {
	case "dashed", "dotted":
		pen := p.res.GetPen(s.color, s.width, graphics.ParseDashStyle(s.style))
		half := s.width / 2
		switch side {
		case css.SideTop:
			g.DrawLine(pen, r.X, r.Y+half, r.Right(), r.Y+half)
		case css.SideBottom:
			g.DrawLine(pen, r.X, r.Bottom()-half, r.Right(), r.Bottom()-half)
		case css.SideLeft:
			g.DrawLine(pen, r.X+half, r.Y, r.X+half, r.Bottom())
		case css.SideRight:
			g.DrawLine(pen, r.Right()-half, r.Y, r.Right()-half, r.Bottom())
		}
	case "double":
		brush := p.res.GetSolidBrush(s.color)
		third := scaleEdges(widths, 1.0/3)
		g.FillPolygon(brush, sidePolygon(r, inset(r, third), side))
		g.FillPolygon(brush, sidePolygon(inset(r, scaleEdges(widths, 2.0/3)), inset(r, widths), side))
	default:
		g.FillPolygon(p.res.GetSolidBrush(sideColor(s, side)), sidePolygon(r, inset(r, widths), side))
	}
}

// sideColor shades inset and outset borders: inset darkens the top and
// left sides and lightens the others, outset does the opposite.
func sideColor(s borderSide, side css.Side) css.Color {
	upper := side == css.SideTop || side == css.SideLeft
	switch s.style {
	case "inset", "groove":
		if upper {
			return s.color.Darker(0.5)
		}
		return s.color.Lighter(0.5)
	case "outset", "ridge":
		if upper {
			return s.color.Lighter(0.5)
		}
		return s.color.Darker(0.5)
	}
	return s.color
}

// sidePolygon returns the four corners of the band between outer and inner
// on one side. Corners are mitered by joining the outer and inner corners.
func sidePolygon(outer, inner css.RectF, side css.Side) []css.PointF {
	switch side {
	case css.SideTop:
		return []css.PointF{
			{X: outer.X, Y: outer.Y}, {X: outer.Right(), Y: outer.Y},
			{X: inner.Right(), Y: inner.Y}, {X: inner.X, Y: inner.Y},
		}
	case css.SideRight:
		return []css.PointF{
			{X: outer.Right(), Y: outer.Y}, {X: outer.Right(), Y: outer.Bottom()},
			{X: inner.Right(), Y: inner.Bottom()}, {X: inner.Right(), Y: inner.Y},
		}
	case css.SideBottom:
		return []css.PointF{
			{X: outer.X, Y: outer.Bottom()}, {X: outer.Right(), Y: outer.Bottom()},
			{X: inner.Right(), Y: inner.Bottom()}, {X: inner.X, Y: inner.Bottom()},
		}
	default:
		return []css.PointF{
			{X: outer.X, Y: outer.Y}, {X: outer.X, Y: outer.Bottom()},
			{X: inner.X, Y: inner.Bottom()}, {X: inner.X, Y: inner.Y},
		}
	}
}

func inset(r css.RectF, e css.Edges) css.RectF {
	return css.RectF{
		X:      r.X + e.Left,
		Y:      r.Y + e.Top,
		Width:  max(0, r.Width-e.Horizontal()),
		Height: max(0, r.Height-e.Vertical()),
	}
}

func scaleEdges(e css.Edges, f float64) css.Edges {
	return css.Edges{Top: e.Top * f, Right: e.Right * f, Bottom: e.Bottom * f, Left: e.Left * f}
}
