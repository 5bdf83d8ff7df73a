// Package ggbackend implements the graphics backend on top of
// github.com/fogleman/gg, with the Go font family built in.
package ggbackend

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
)

// Built-in family names.
const (
	FamilyGo     = "Go"
	FamilyGoMono = "Go Mono"
)

// FontFiles names the TrueType files of one family. Missing styles fall back
// to Regular.
type FontFiles struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
}

// family holds the parsed faces indexed by bold<<1 | italic.
type family struct {
	name  string
	faces [4]*truetype.Font
}

func (f *family) face(style css.FontStyle) *truetype.Font {
	i := 0
	if style.Has(css.FontBold) {
		i |= 2
	}
	if style.Has(css.FontItalic) {
		i |= 1
	}
	if f.faces[i] != nil {
		return f.faces[i]
	}
	if i == 3 && f.faces[2] != nil {
		return f.faces[2]
	}
	return f.faces[0]
}

// Backend creates gg-backed resources.
type Backend struct {
	mu       sync.RWMutex
	families map[string]*family
}

// New returns a backend with the Go fonts registered as "Go" and "Go Mono".
// "monospace" maps to Go Mono.
func New() *Backend {
	b := &Backend{families: map[string]*family{}}
	b.mustAddBuiltin(FamilyGo, goregular.TTF, goitalic.TTF, gobold.TTF, gobolditalic.TTF)
	b.mustAddBuiltin(FamilyGoMono, gomono.TTF, gomonoitalic.TTF, gomonobold.TTF, gomonobolditalic.TTF)
	b.families["monospace"] = b.families[strings.ToLower(FamilyGoMono)]
	return b
}

func (b *Backend) mustAddBuiltin(name string, regular, italic, bold, boldItalic []byte) {
	fam := &family{name: name}
	for i, data := range [][]byte{regular, italic, bold, boldItalic} {
		f, err := truetype.Parse(data)
		if err != nil {
			panic(fmt.Sprintf("parsing built-in font %s: %v", name, err))
		}
		fam.faces[i] = f
	}
	b.families[strings.ToLower(name)] = fam
}

// RegisterFont adds TrueType data as the regular face of family.
func (b *Backend) RegisterFont(name string, data []byte) error {
	f, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing font: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := strings.ToLower(name)
	fam, ok := b.families[key]
	if !ok {
		fam = &family{name: name}
		b.families[key] = fam
	}
	fam.faces[0] = f
	return nil
}

// LoadFontFiles registers a family from font files on disk.
func (b *Backend) LoadFontFiles(name string, files FontFiles) error {
	fam := &family{name: name}
	for i, path := range []string{files.Regular, files.Italic, files.Bold, files.BoldItalic} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading font file: %w", err)
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return fmt.Errorf("parsing font file %s: %w", path, err)
		}
		fam.faces[i] = f
	}
	if fam.faces[0] == nil {
		return fmt.Errorf("font family %q has no regular face", name)
	}
	b.mu.Lock()
	b.families[strings.ToLower(name)] = fam
	b.mu.Unlock()
	return nil
}

func (b *Backend) FontFamilyExists(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.families[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func (b *Backend) CreateFont(name string, size float64, style css.FontStyle) (graphics.Font, error) {
	b.mu.RLock()
	fam, ok := b.families[strings.ToLower(strings.TrimSpace(name))]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("font family %q not found", name)
	}
	if size <= 0 {
		size = css.DefaultFontSize
	}
	face := truetype.NewFace(fam.face(style), &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	return newFont(fam.name, size, style, face), nil
}

func (b *Backend) NewSolidBrush(c css.Color) graphics.Brush {
	return solidBrush{c}
}

func (b *Backend) NewLinearGradientBrush(r css.RectF, angle float64, stops []css.ColorStop) graphics.Brush {
	return &gradientBrush{rect: r, angle: angle, stops: stops}
}

func (b *Backend) NewPen(c css.Color, width float64, dash graphics.DashStyle) graphics.Pen {
	return pen{color: c, width: width, dash: dash}
}

// ImageFromStream decodes PNG, JPEG, GIF, BMP or WebP data.
func (b *Backend) ImageFromStream(r io.Reader) (graphics.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return &Image{img: img}, nil
}

// Font is a truetype face of a fixed size.
type Font struct {
	family string
	size   float64
	style  css.FontStyle

	mu      sync.Mutex
	face    font.Face
	metrics font.Metrics
	space   float64
}

func newFont(family string, size float64, style css.FontStyle, face font.Face) *Font {
	f := &Font{family: family, size: size, style: style, face: face, metrics: face.Metrics()}
	f.space = f.MeasureString(" ")
	return f
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func (f *Font) Family() string       { return f.family }
func (f *Font) Size() float64        { return f.size }
func (f *Font) Style() css.FontStyle { return f.style }
func (f *Font) Ascent() float64      { return toFloat(f.metrics.Ascent) }
func (f *Font) Descent() float64     { return toFloat(f.metrics.Descent) }
func (f *Font) SpaceWidth() float64  { return f.space }

// Height is the larger of the face's reported height and its ascent plus
// descent; truetype faces report the em size as height.
func (f *Font) Height() float64 {
	return math.Max(toFloat(f.metrics.Height), f.Ascent()+f.Descent())
}

func (f *Font) UnderlineOffset() float64 {
	return f.Ascent() + f.Descent()/2
}

func (f *Font) MeasureString(s string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return toFloat(font.MeasureString(f.face, s))
}

type solidBrush struct{ c css.Color }

func (b solidBrush) Color() css.Color { return b.c }

type gradientBrush struct {
	rect  css.RectF
	angle float64
	stops []css.ColorStop
}

func (b *gradientBrush) Color() css.Color {
	if len(b.stops) == 0 {
		return css.Transparent
	}
	return b.stops[0].Color
}

type pen struct {
	color css.Color
	width float64
	dash  graphics.DashStyle
}

func (p pen) Color() css.Color         { return p.color }
func (p pen) Width() float64           { return p.width }
func (p pen) Dash() graphics.DashStyle { return p.dash }

// Image wraps a decoded image.
type Image struct {
	img image.Image
}

// NewImage wraps img.
func NewImage(img image.Image) *Image { return &Image{img: img} }

func (i *Image) Width() int         { return i.img.Bounds().Dx() }
func (i *Image) Height() int        { return i.img.Bounds().Dy() }
func (i *Image) Image() image.Image { return i.img }
