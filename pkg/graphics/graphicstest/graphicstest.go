// Package graphicstest provides a deterministic graphics backend for tests.
// Every glyph advances by half the font size and every draw call is
// recorded.
package graphicstest

import (
	"fmt"
	"image"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
)

// Backend is a fake graphics.Backend.
type Backend struct {
	mu       sync.Mutex
	families map[string]bool
	// FontsCreated counts CreateFont calls.
	FontsCreated int
}

// NewBackend returns a backend knowing the given families.
func NewBackend(families ...string) *Backend {
	b := &Backend{families: map[string]bool{}}
	for _, f := range families {
		b.families[strings.ToLower(f)] = true
	}
	return b
}

func (b *Backend) FontFamilyExists(family string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.families[strings.ToLower(family)]
}

func (b *Backend) CreateFont(family string, size float64, style css.FontStyle) (graphics.Font, error) {
	if !b.FontFamilyExists(family) {
		return nil, fmt.Errorf("unknown family %q", family)
	}
	b.mu.Lock()
	b.FontsCreated++
	b.mu.Unlock()
	return &Font{family: family, size: size, style: style}, nil
}

func (b *Backend) NewSolidBrush(c css.Color) graphics.Brush { return Brush{c} }

func (b *Backend) NewLinearGradientBrush(r css.RectF, angle float64, stops []css.ColorStop) graphics.Brush {
	return Brush{stops[0].Color}
}

func (b *Backend) NewPen(c css.Color, width float64, dash graphics.DashStyle) graphics.Pen {
	return Pen{c, width, dash}
}

// ImageFromStream reads "WxH" from r and returns a blank image of that
// size.
func (b *Backend) ImageFromStream(r io.Reader) (graphics.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var w, h int
	if _, err := fmt.Sscanf(string(data), "%dx%d", &w, &h); err != nil {
		return nil, fmt.Errorf("bad test image %q: %w", data, err)
	}
	return NewImage(w, h), nil
}

func (b *Backend) RegisterFont(family string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.families[strings.ToLower(family)] = true
	return nil
}

// Font advances every rune by half its size.
type Font struct {
	family string
	size   float64
	style  css.FontStyle
}

func (f *Font) Family() string           { return f.family }
func (f *Font) Size() float64            { return f.size }
func (f *Font) Style() css.FontStyle     { return f.style }
func (f *Font) Height() float64          { return f.size * 1.25 }
func (f *Font) Ascent() float64          { return f.size }
func (f *Font) Descent() float64         { return f.size * 0.25 }
func (f *Font) UnderlineOffset() float64 { return f.size * 1.05 }
func (f *Font) SpaceWidth() float64      { return f.size / 2 }
func (f *Font) MeasureString(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * f.size / 2
}

// Brush is a solid color.
type Brush struct{ C css.Color }

func (b Brush) Color() css.Color { return b.C }

// Pen is a plain value pen.
type Pen struct {
	C css.Color
	W float64
	D graphics.DashStyle
}

func (p Pen) Color() css.Color         { return p.C }
func (p Pen) Width() float64           { return p.W }
func (p Pen) Dash() graphics.DashStyle { return p.D }

// Image is an in-memory image.
type Image struct{ img *image.RGBA }

// NewImage returns a transparent w x h image.
func NewImage(w, h int) *Image {
	return &Image{image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (i *Image) Width() int         { return i.img.Bounds().Dx() }
func (i *Image) Height() int        { return i.img.Bounds().Dy() }
func (i *Image) Image() image.Image { return i.img }

// Path records its segments as text.
type Path struct {
	Ops []string
}

func (p *Path) Start(x, y float64)  { p.Ops = append(p.Ops, fmt.Sprintf("M%g,%g", x, y)) }
func (p *Path) LineTo(x, y float64) { p.Ops = append(p.Ops, fmt.Sprintf("L%g,%g", x, y)) }
func (p *Path) ArcTo(x, y, size float64, corner css.Corner) {
	p.Ops = append(p.Ops, fmt.Sprintf("A%g,%g,%g,%d", x, y, size, corner))
}
func (p *Path) Close() { p.Ops = append(p.Ops, "Z") }

// Op is one recorded drawing call.
type Op struct {
	Kind   string
	Rect   css.RectF
	Color  css.Color
	Text   string
	Points []css.PointF
	Path   []string
	Width  float64
	Dash   graphics.DashStyle
}

// Graphics records drawing calls.
type Graphics struct {
	clips []css.RectF
	Ops   []Op
}

// NewGraphics returns a recording surface clipped to clip.
func NewGraphics(clip css.RectF) *Graphics {
	return &Graphics{clips: []css.RectF{clip}}
}

// Find returns the recorded operations of the given kind.
func (g *Graphics) Find(kind string) []Op {
	var out []Op
	for _, op := range g.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns the strings drawn, in order.
func (g *Graphics) Texts() []string {
	var out []string
	for _, op := range g.Find("text") {
		out = append(out, op.Text)
	}
	return out
}

func (g *Graphics) Clip() css.RectF { return g.clips[len(g.clips)-1] }

func (g *Graphics) PushClip(r css.RectF) { g.clips = append(g.clips, r) }

func (g *Graphics) PopClip() {
	if len(g.clips) > 1 {
		g.clips = g.clips[:len(g.clips)-1]
	}
}

func (g *Graphics) NewPath() graphics.Path { return &Path{} }

func (g *Graphics) FillRect(b graphics.Brush, r css.RectF) {
	g.Ops = append(g.Ops, Op{Kind: "fill-rect", Rect: r, Color: b.Color()})
}

func (g *Graphics) FillPath(b graphics.Brush, p graphics.Path) {
	g.Ops = append(g.Ops, Op{Kind: "fill-path", Color: b.Color(), Path: p.(*Path).Ops})
}

func (g *Graphics) FillPolygon(b graphics.Brush, points []css.PointF) {
	g.Ops = append(g.Ops, Op{Kind: "fill-polygon", Color: b.Color(), Points: append([]css.PointF(nil), points...)})
}

func (g *Graphics) DrawLine(p graphics.Pen, x1, y1, x2, y2 float64) {
	g.Ops = append(g.Ops, Op{Kind: "line", Color: p.Color(), Width: p.Width(), Dash: p.Dash(),
		Points: []css.PointF{{X: x1, Y: y1}, {X: x2, Y: y2}}})
}

func (g *Graphics) DrawRect(p graphics.Pen, r css.RectF) {
	g.Ops = append(g.Ops, Op{Kind: "rect", Rect: r, Color: p.Color(), Width: p.Width(), Dash: p.Dash()})
}

func (g *Graphics) DrawPath(p graphics.Pen, path graphics.Path) {
	g.Ops = append(g.Ops, Op{Kind: "path", Color: p.Color(), Width: p.Width(), Dash: p.Dash(), Path: path.(*Path).Ops})
}

func (g *Graphics) DrawString(s string, f graphics.Font, c css.Color, pt css.PointF) {
	g.Ops = append(g.Ops, Op{Kind: "text", Text: s, Color: c,
		Rect: css.RectF{X: pt.X, Y: pt.Y, Width: f.MeasureString(s), Height: f.Height()}})
}

func (g *Graphics) DrawImage(img graphics.Image, dst, src css.RectF) {
	g.Ops = append(g.Ops, Op{Kind: "image", Rect: dst})
}
