// Package graphics defines the drawing and resource surface the renderer
// paints on, plus a caching adapter in front of a concrete backend.
package graphics

import (
	"image"
	"io"

	"htmlbox/pkg/css"
)

// DashStyle selects the stroke pattern of a pen.
type DashStyle int

const (
	DashSolid DashStyle = iota
	DashDash
	DashDot
)

// ParseDashStyle maps a border-style keyword to a dash pattern.
func ParseDashStyle(style string) DashStyle {
	switch style {
	case "dashed":
		return DashDash
	case "dotted":
		return DashDot
	}
	return DashSolid
}

// Font is a sized, styled font face.
type Font interface {
	Family() string
	Size() float64
	Style() css.FontStyle
	// Height is the distance between two baselines.
	Height() float64
	Ascent() float64
	Descent() float64
	UnderlineOffset() float64
	// MeasureString returns the advance width of s.
	MeasureString(s string) float64
	SpaceWidth() float64
}

// Brush fills areas.
type Brush interface {
	// Color is the solid color, or the first stop for gradients.
	Color() css.Color
}

// Pen strokes lines.
type Pen interface {
	Color() css.Color
	Width() float64
	Dash() DashStyle
}

// Path is a closed or open outline built from lines and quarter arcs.
type Path interface {
	Start(x, y float64)
	LineTo(x, y float64)
	// ArcTo draws a quarter circle of the given radius from the current
	// point to (x, y); corner tells which corner of a rectangle the arc
	// rounds.
	ArcTo(x, y, size float64, corner css.Corner)
	Close()
}

// Image is a decoded raster image.
type Image interface {
	Width() int
	Height() int
	Image() image.Image
}

// Graphics is a drawing surface.
type Graphics interface {
	Clip() css.RectF
	PushClip(r css.RectF)
	PopClip()
	NewPath() Path
	FillRect(b Brush, r css.RectF)
	FillPath(b Brush, p Path)
	FillPolygon(b Brush, points []css.PointF)
	DrawLine(p Pen, x1, y1, x2, y2 float64)
	DrawRect(p Pen, r css.RectF)
	DrawPath(p Pen, path Path)
	// DrawString draws s with its top-left corner at pt.
	DrawString(s string, f Font, c css.Color, pt css.PointF)
	// DrawImage draws the src part of img scaled into dst. An empty src
	// means the whole image.
	DrawImage(img Image, dst, src css.RectF)
}

// Backend creates platform resources. Implementations need not cache;
// Adapter does.
type Backend interface {
	FontFamilyExists(family string) bool
	CreateFont(family string, size float64, style css.FontStyle) (Font, error)
	NewSolidBrush(c css.Color) Brush
	NewLinearGradientBrush(r css.RectF, angle float64, stops []css.ColorStop) Brush
	NewPen(c css.Color, width float64, dash DashStyle) Pen
	ImageFromStream(r io.Reader) (Image, error)
}

// FontRegistrar is implemented by backends that accept font data at
// runtime.
type FontRegistrar interface {
	RegisterFont(family string, data []byte) error
}
