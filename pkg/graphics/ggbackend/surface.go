package ggbackend

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
)

// Surface is a raster graphics.Graphics backed by a gg context.
type Surface struct {
	dc    *gg.Context
	clips []css.RectF
}

// NewSurface creates a width x height surface.
func NewSurface(width, height int) *Surface {
	dc := gg.NewContext(width, height)
	full := css.RectF{Width: float64(width), Height: float64(height)}
	return &Surface{dc: dc, clips: []css.RectF{full}}
}

// Clear fills the whole surface with c.
func (s *Surface) Clear(c css.Color) {
	s.dc.SetColor(c)
	s.dc.Clear()
}

// Image returns the rendered pixels.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// SavePNG writes the surface to a PNG file.
func (s *Surface) SavePNG(path string) error { return s.dc.SavePNG(path) }

// EncodePNG writes the surface as PNG to w.
func (s *Surface) EncodePNG(w io.Writer) error { return s.dc.EncodePNG(w) }

func (s *Surface) Clip() css.RectF { return s.clips[len(s.clips)-1] }

func (s *Surface) PushClip(r css.RectF) {
	cur := s.Clip()
	x := math.Max(cur.X, r.X)
	y := math.Max(cur.Y, r.Y)
	right := math.Min(cur.Right(), r.Right())
	bottom := math.Min(cur.Bottom(), r.Bottom())
	next := css.RectF{X: x, Y: y, Width: math.Max(0, right-x), Height: math.Max(0, bottom-y)}
	s.clips = append(s.clips, next)
	s.applyClip(next)
}

func (s *Surface) PopClip() {
	if len(s.clips) == 1 {
		return
	}
	s.clips = s.clips[:len(s.clips)-1]
	s.applyClip(s.Clip())
}

func (s *Surface) applyClip(r css.RectF) {
	s.dc.ResetClip()
	if len(s.clips) == 1 {
		return
	}
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Clip()
}

func (s *Surface) NewPath() graphics.Path { return &path{} }

func (s *Surface) setBrush(b graphics.Brush) {
	g, ok := b.(*gradientBrush)
	if !ok {
		s.dc.SetColor(b.Color())
		return
	}
	r := g.rect
	rad := g.angle * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(r.Width*dx) + math.Abs(r.Height*dy)) / 2
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	grad := gg.NewLinearGradient(cx-dx*half, cy-dy*half, cx+dx*half, cy+dy*half)
	for _, stop := range g.stops {
		grad.AddColorStop(stop.Offset, stop.Color)
	}
	s.dc.SetFillStyle(grad)
}

func (s *Surface) setPen(p graphics.Pen) {
	s.dc.SetColor(p.Color())
	w := p.Width()
	if w <= 0 {
		w = 1
	}
	s.dc.SetLineWidth(w)
	switch p.Dash() {
	case graphics.DashDash:
		s.dc.SetDash(3*w, 3*w)
	case graphics.DashDot:
		s.dc.SetDash(w, w)
	default:
		s.dc.SetDash()
	}
}

func (s *Surface) FillRect(b graphics.Brush, r css.RectF) {
	s.setBrush(b)
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Fill()
}

func (s *Surface) FillPath(b graphics.Brush, p graphics.Path) {
	s.setBrush(b)
	p.(*path).replay(s.dc)
	s.dc.Fill()
}

func (s *Surface) FillPolygon(b graphics.Brush, points []css.PointF) {
	if len(points) < 3 {
		return
	}
	s.setBrush(b)
	s.dc.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		s.dc.LineTo(pt.X, pt.Y)
	}
	s.dc.ClosePath()
	s.dc.Fill()
}

func (s *Surface) DrawLine(p graphics.Pen, x1, y1, x2, y2 float64) {
	s.setPen(p)
	s.dc.DrawLine(x1, y1, x2, y2)
	s.dc.Stroke()
}

func (s *Surface) DrawRect(p graphics.Pen, r css.RectF) {
	s.setPen(p)
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Stroke()
}

func (s *Surface) DrawPath(p graphics.Pen, pth graphics.Path) {
	s.setPen(p)
	pth.(*path).replay(s.dc)
	s.dc.Stroke()
}

func (s *Surface) DrawString(text string, f graphics.Font, c css.Color, pt css.PointF) {
	gf, ok := f.(*Font)
	if !ok {
		return
	}
	gf.mu.Lock()
	defer gf.mu.Unlock()
	s.dc.SetFontFace(gf.face)
	s.dc.SetColor(c)
	s.dc.DrawString(text, pt.X, pt.Y+gf.Ascent())
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func (s *Surface) DrawImage(img graphics.Image, dst, src css.RectF) {
	im := img.Image()
	if !src.IsEmpty() {
		if sub, ok := im.(subImager); ok {
			b := im.Bounds()
			im = sub.SubImage(image.Rect(
				b.Min.X+int(src.X), b.Min.Y+int(src.Y),
				b.Min.X+int(src.Right()), b.Min.Y+int(src.Bottom())))
		}
	}
	b := im.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || dst.IsEmpty() {
		return
	}
	s.dc.Push()
	s.dc.Translate(dst.X, dst.Y)
	s.dc.Scale(dst.Width/float64(b.Dx()), dst.Height/float64(b.Dy()))
	s.dc.DrawImage(im, -b.Min.X, -b.Min.Y)
	s.dc.Pop()
}

type pathOp struct {
	kind   byte
	x, y   float64
	cx, cy float64
	r      float64
	a1, a2 float64
}

// path records segments and replays them on a gg context.
type path struct {
	ops          []pathOp
	lastX, lastY float64
}

func (p *path) Start(x, y float64) {
	p.ops = append(p.ops, pathOp{kind: 'M', x: x, y: y})
	p.lastX, p.lastY = x, y
}

func (p *path) LineTo(x, y float64) {
	p.ops = append(p.ops, pathOp{kind: 'L', x: x, y: y})
	p.lastX, p.lastY = x, y
}

// ArcTo places the arc inside the 2*size square spanned by the current
// point and (x, y), offset toward the corner being rounded.
func (p *path) ArcTo(x, y, size float64, corner css.Corner) {
	left := math.Min(x, p.lastX)
	if corner == css.CornerTopRight || corner == css.CornerBottomRight {
		left -= size
	}
	top := math.Min(y, p.lastY)
	if corner == css.CornerBottomLeft || corner == css.CornerBottomRight {
		top -= size
	}
	var start float64
	switch corner {
	case css.CornerTopLeft:
		start = 180
	case css.CornerTopRight:
		start = 270
	case css.CornerBottomRight:
		start = 0
	case css.CornerBottomLeft:
		start = 90
	}
	p.ops = append(p.ops, pathOp{
		kind: 'A', x: x, y: y,
		cx: left + size, cy: top + size, r: size,
		a1: gg.Radians(start), a2: gg.Radians(start + 90),
	})
	p.lastX, p.lastY = x, y
}

func (p *path) Close() {
	p.ops = append(p.ops, pathOp{kind: 'Z'})
}

func (p *path) replay(dc *gg.Context) {
	dc.NewSubPath()
	for _, op := range p.ops {
		switch op.kind {
		case 'M':
			dc.MoveTo(op.x, op.y)
		case 'L':
			dc.LineTo(op.x, op.y)
		case 'A':
			if op.r <= 0 {
				dc.LineTo(op.x, op.y)
			} else {
				dc.DrawArc(op.cx, op.cy, op.r, op.a1, op.a2)
			}
		case 'Z':
			dc.ClosePath()
		}
	}
}
