package css

import (
	"image/color"
	"math"
)

// PointF is a point in pixel space.
type PointF struct {
	X, Y float64
}

// SizeF is a width/height pair in pixel space.
type SizeF struct {
	Width, Height float64
}

// RectF is an axis-aligned rectangle in pixel space.
type RectF struct {
	X, Y, Width, Height float64
}

func (r RectF) Left() float64   { return r.X }
func (r RectF) Top() float64    { return r.Y }
func (r RectF) Right() float64  { return r.X + r.Width }
func (r RectF) Bottom() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rectangle has no area.
func (r RectF) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r.
func (r RectF) Contains(p PointF) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Union returns the smallest rectangle containing both r and o. An empty
// receiver is ignored.
func (r RectF) Union(o RectF) RectF {
	if r.Width == 0 && r.Height == 0 && r.X == 0 && r.Y == 0 {
		return o
	}
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return RectF{X: x, Y: y, Width: right - x, Height: bottom - y}
}

// Intersects reports whether the two rectangles overlap.
func (r RectF) Intersects(o RectF) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Edges holds a value for each of the four sides of a box.
type Edges struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Horizontal returns Left+Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top+Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// Corners holds the four corner radii of a box.
type Corners struct {
	TopLeft     float64
	TopRight    float64
	BottomRight float64
	BottomLeft  float64
}

// IsZero reports whether no corner is rounded.
func (c Corners) IsZero() bool {
	return c.TopLeft <= 0 && c.TopRight <= 0 && c.BottomRight <= 0 && c.BottomLeft <= 0
}

// Corner names one of the four corners of a rectangle. Paths use it to
// orient arcs.
type Corner int

const (
	CornerTopLeft Corner = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

// Side names one edge of a box.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

var sideNames = [...]string{"top", "right", "bottom", "left"}

func (s Side) String() string { return sideNames[s] }

// Sides lists the four sides in CSS order.
var Sides = []Side{SideTop, SideRight, SideBottom, SideLeft}

// FontStyle is a bit set of font variations.
type FontStyle int

const (
	FontRegular FontStyle = 0
	FontBold    FontStyle = 1 << iota
	FontItalic
	FontUnderline
	FontStrikeout
)

// Has reports whether all bits of f are set.
func (s FontStyle) Has(f FontStyle) bool { return s&f == f }

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// IsTransparent reports whether the color has zero alpha.
func (c Color) IsTransparent() bool { return c.A == 0 }

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Darker scales the color channels toward black by factor in [0,1].
func (c Color) Darker(factor float64) Color {
	f := 1 - factor
	return Color{uint8(float64(c.R) * f), uint8(float64(c.G) * f), uint8(float64(c.B) * f), c.A}
}

// Lighter moves the color channels toward white by factor in [0,1].
func (c Color) Lighter(factor float64) Color {
	mix := func(v uint8) uint8 { return uint8(float64(v) + (255-float64(v))*factor) }
	return Color{mix(c.R), mix(c.G), mix(c.B), c.A}
}
