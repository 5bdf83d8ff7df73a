package render

import (
	"strings"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
	"htmlbox/pkg/layout"
)

var (
	placeholderFill = css.Color{R: 230, G: 230, B: 230, A: 255}
	placeholderLine = css.Color{R: 128, G: 128, B: 128, A: 255}
)

func (p *Painter) fontOf(b *html.Box) graphics.Font {
	return p.res.GetFont(b.Style("font-family"), b.FontSize(), b.FontStyle())
}

// paintWords draws the words of the text box b at their layout rectangles.
func (p *Painter) paintWords(g graphics.Graphics, b *html.Box) {
	font := p.fontOf(b)
	color := b.Color("color", css.Black)
	clip := g.Clip()
	for _, w := range b.Words {
		if w.IsLineBreak || w.Rect.IsEmpty() || !w.Rect.Intersects(clip) {
			continue
		}
		c := color
		if p.Selection != nil && p.Selection.Words[w] {
			g.FillRect(p.res.GetSolidBrush(p.Selection.Background), w.Rect)
			c = p.Selection.Color
		}
		if w.IsSpace {
			continue
		}
		g.DrawString(w.Text, font, c, css.PointF{X: w.Rect.X, Y: w.Rect.Y})
	}
}

// paintDecorations draws underline, overline and line-through once per line
// fragment of the text box b.
func (p *Painter) paintDecorations(g graphics.Graphics, b *html.Box) {
	style := b.FontStyle()
	over := strings.Contains(b.Style("text-decoration"), "overline")
	if !style.Has(css.FontUnderline) && !style.Has(css.FontStrikeout) && !over {
		return
	}
	font := p.fontOf(b)
	thickness := max(1, font.Size()/12)
	pen := p.res.GetPen(b.Color("color", css.Black), thickness, graphics.DashSolid)
	for _, r := range b.Fragments {
		if r.Width <= 0 {
			continue
		}
		if style.Has(css.FontUnderline) {
			y := r.Y + font.UnderlineOffset()
			g.DrawLine(pen, r.X, y, r.Right(), y)
		}
		if style.Has(css.FontStrikeout) {
			y := r.Y + r.Height/2
			g.DrawLine(pen, r.X, y, r.Right(), y)
		}
		if over {
			g.DrawLine(pen, r.X, r.Y, r.Right(), r.Y)
		}
	}
}

// paintImage draws the image of b into its content box, or a crossed
// placeholder when loading failed.
func (p *Painter) paintImage(g graphics.Graphics, b *html.Box) {
	dst := b.ClientRect()
	if dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	switch {
	case b.Image != nil:
		g.DrawImage(b.Image, dst, b.ImageRect)
	case b.ImageError:
		g.FillRect(p.res.GetSolidBrush(placeholderFill), dst)
		pen := p.res.GetPen(placeholderLine, 2, graphics.DashSolid)
		g.DrawLine(pen, dst.X, dst.Y, dst.Right(), dst.Bottom())
		g.DrawLine(pen, dst.Right(), dst.Y, dst.X, dst.Bottom())
	}
}

// paintMarker draws the list marker of b next to its first line: in the
// margin for outside markers, at the start of the line for inside ones.
func (p *Painter) paintMarker(g graphics.Graphics, b *html.Box) {
	font := p.fontOf(b)
	client := b.ClientRect()
	top := client.Y
	if lb := firstLine(b); lb != nil {
		top = lb.Baseline - font.Ascent()
	}
	width := font.MeasureString(b.Marker)
	x := client.X - width - layout.MarkerGap*b.FontSize()
	if b.Style("list-style-position") == "inside" {
		x = client.X + b.Length("text-indent", client.Width)
	}
	g.DrawString(b.Marker, font, b.Color("color", css.Black), css.PointF{X: x, Y: top})
}

// firstLine returns the first line box inside b.
func firstLine(b *html.Box) *html.LineBox {
	var found *html.LineBox
	b.Walk(func(x *html.Box) bool {
		if found == nil && len(x.LineBoxes) > 0 && x.Display() != css.DisplayNone {
			found = x.LineBoxes[0]
		}
		return found == nil
	})
	return found
}
