package graphics

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
)

type fontKey struct {
	family string
	size   float64
	style  css.FontStyle
}

type penKey struct {
	color css.Color
	width float64
	dash  DashStyle
}

// Adapter wraps a Backend and caches fonts, brushes and pens by the
// parameters that define them. One adapter may be shared by several
// documents; each keeps its own caches otherwise.
type Adapter struct {
	backend       Backend
	logger        *zap.Logger
	defaultFamily string

	mu       sync.Mutex
	fonts    map[fontKey]Font
	brushes  map[css.Color]Brush
	pens     map[penKey]Pen
	families map[string]string
	mappings map[string]string
}

// NewAdapter creates an adapter over backend. defaultFamily is used when a
// requested family cannot be created.
func NewAdapter(backend Backend, defaultFamily string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		backend:       backend,
		logger:        logger.Named("graphics"),
		defaultFamily: defaultFamily,
		fonts:         map[fontKey]Font{},
		brushes:       map[css.Color]Brush{},
		pens:          map[penKey]Pen{},
		families:      map[string]string{},
		mappings:      map[string]string{},
	}
	for _, generic := range []string{"serif", "sans-serif", "cursive", "fantasy", "system-ui"} {
		a.mappings[generic] = defaultFamily
	}
	return a
}

// Backend returns the wrapped backend.
func (a *Adapter) Backend() Backend {
	return a.backend
}

// DefaultFontFamily returns the fallback family.
func (a *Adapter) DefaultFontFamily() string {
	return a.defaultFamily
}

// AddFontFamily makes a family known under name even if the backend does
// not report it.
func (a *Adapter) AddFontFamily(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.families[strings.ToLower(name)] = name
}

// AddFontFamilyMapping resolves requests for from to the family to.
func (a *Adapter) AddFontFamilyMapping(from, to string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mappings[strings.ToLower(from)] = to
}

// RegisterFont hands TrueType data to the backend and makes the family
// available.
func (a *Adapter) RegisterFont(family string, data []byte) error {
	reg, ok := a.backend.(FontRegistrar)
	if !ok {
		return fmt.Errorf("backend %T cannot register fonts", a.backend)
	}
	if err := reg.RegisterFont(family, data); err != nil {
		return fmt.Errorf("registering font %q: %w", family, err)
	}
	a.AddFontFamily(family)
	return nil
}

// resolveFamily follows mappings and returns the family to request from the
// backend.
func (a *Adapter) resolveFamily(family string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(family))
	if mapped, ok := a.mappings[key]; ok {
		return mapped, true
	}
	if known, ok := a.families[key]; ok {
		return known, true
	}
	return family, false
}

// FontExists reports whether family is usable, either registered, mapped or
// provided by the backend.
func (a *Adapter) FontExists(family string) bool {
	resolved, known := a.resolveFamily(family)
	return known || a.backend.FontFamilyExists(resolved)
}

// GetFont returns a cached font, creating it on first use. Unknown
// families fall back to the default family.
func (a *Adapter) GetFont(family string, size float64, style css.FontStyle) Font {
	key := fontKey{strings.ToLower(family), size, style}
	a.mu.Lock()
	f, ok := a.fonts[key]
	a.mu.Unlock()
	if ok {
		return f
	}

	resolved, _ := a.resolveFamily(family)
	f, err := a.backend.CreateFont(resolved, size, style)
	if err != nil {
		a.logger.Debug("font fallback", zap.String("family", family), zap.Error(err))
		f, err = a.backend.CreateFont(a.defaultFamily, size, style)
		if err != nil {
			panic(fmt.Sprintf("default font family %q unavailable: %v", a.defaultFamily, err))
		}
	}

	a.mu.Lock()
	a.fonts[key] = f
	a.mu.Unlock()
	return f
}

// GetSolidBrush returns a cached brush for c.
func (a *Adapter) GetSolidBrush(c css.Color) Brush {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.brushes[c]
	if !ok {
		b = a.backend.NewSolidBrush(c)
		a.brushes[c] = b
	}
	return b
}

// GetLinearGradientBrush creates a gradient brush for r. Gradients depend on
// the rectangle and are not cached.
func (a *Adapter) GetLinearGradientBrush(r css.RectF, angle float64, stops []css.ColorStop) Brush {
	return a.backend.NewLinearGradientBrush(r, angle, stops)
}

// GetPen returns a cached pen.
func (a *Adapter) GetPen(c css.Color, width float64, dash DashStyle) Pen {
	key := penKey{c, width, dash}
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.pens[key]
	if !ok {
		p = a.backend.NewPen(c, width, dash)
		a.pens[key] = p
	}
	return p
}

// ImageFromStream decodes an image. It is safe to call from any goroutine.
func (a *Adapter) ImageFromStream(r io.Reader) (Image, error) {
	img, err := a.backend.ImageFromStream(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
