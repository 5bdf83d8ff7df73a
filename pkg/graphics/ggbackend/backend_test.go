package ggbackend

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
)

func TestBuiltinFamilies(t *testing.T) {
	b := New()
	assert.True(t, b.FontFamilyExists("Go"))
	assert.True(t, b.FontFamilyExists("go mono"))
	assert.True(t, b.FontFamilyExists("monospace"))
	assert.False(t, b.FontFamilyExists("Arial"))

	_, err := b.CreateFont("Arial", 12, css.FontRegular)
	assert.Error(t, err)
}

func TestFontMetrics(t *testing.T) {
	b := New()
	f, err := b.CreateFont("Go", 20, css.FontRegular)
	require.NoError(t, err)
	assert.Greater(t, f.Ascent(), 0.0)
	assert.Greater(t, f.Height(), f.Ascent())
	assert.Greater(t, f.SpaceWidth(), 0.0)

	short := f.MeasureString("i")
	long := f.MeasureString("iiii")
	assert.InDelta(t, 4*short, long, 0.5)

	bold, err := b.CreateFont("Go", 20, css.FontBold)
	require.NoError(t, err)
	assert.Equal(t, css.FontBold, bold.Style())

	mono, err := b.CreateFont("monospace", 20, css.FontRegular)
	require.NoError(t, err)
	assert.Equal(t, FamilyGoMono, mono.Family())
	assert.InDelta(t, mono.MeasureString("i"), mono.MeasureString("W"), 0.01)
}

func TestImageFromStream(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := New().ImageFromStream(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width())
	assert.Equal(t, 2, img.Height())

	_, err = New().ImageFromStream(bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestSurfaceFillAndClip(t *testing.T) {
	b := New()
	s := NewSurface(20, 20)
	s.Clear(css.White)

	red := css.Color{R: 255, A: 255}
	s.PushClip(css.RectF{X: 0, Y: 0, Width: 10, Height: 20})
	s.FillRect(b.NewSolidBrush(red), css.RectF{X: 0, Y: 0, Width: 20, Height: 20})
	s.PopClip()

	img := s.Image()
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, color.RGBAModel.Convert(img.At(5, 5)))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, color.RGBAModel.Convert(img.At(15, 5)))
}

func TestSurfaceRoundedPath(t *testing.T) {
	b := New()
	s := NewSurface(40, 40)
	s.Clear(css.White)

	p := s.NewPath()
	p.Start(0, 10)
	p.ArcTo(10, 0, 10, css.CornerTopLeft)
	p.LineTo(30, 0)
	p.ArcTo(40, 10, 10, css.CornerTopRight)
	p.LineTo(40, 30)
	p.ArcTo(30, 40, 10, css.CornerBottomRight)
	p.LineTo(10, 40)
	p.ArcTo(0, 30, 10, css.CornerBottomLeft)
	p.Close()
	s.FillPath(b.NewSolidBrush(css.Black), p)

	img := s.Image()
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, color.RGBAModel.Convert(img.At(20, 20)))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, color.RGBAModel.Convert(img.At(0, 0)))
}

func TestSurfaceGradient(t *testing.T) {
	b := New()
	s := NewSurface(100, 10)
	stops := []css.ColorStop{{Color: css.Black, Offset: 0}, {Color: css.White, Offset: 1}}
	s.FillRect(b.NewLinearGradientBrush(css.RectF{Width: 100, Height: 10}, 90, stops), css.RectF{Width: 100, Height: 10})

	left := color.GrayModel.Convert(s.Image().At(2, 5)).(color.Gray).Y
	right := color.GrayModel.Convert(s.Image().At(97, 5)).(color.Gray).Y
	assert.Less(t, left, right)
}

func TestPenDash(t *testing.T) {
	p := New().NewPen(css.Black, 2, graphics.DashDash)
	assert.Equal(t, graphics.DashDash, p.Dash())
	s := NewSurface(10, 10)
	s.DrawLine(p, 0, 5, 10, 5)
}
