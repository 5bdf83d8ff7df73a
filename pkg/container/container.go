// Package container is the renderer session a host embeds: it owns the
// graphics adapter, the stylesheets, the document tree, pending image loads
// and hover and selection state.
package container

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"htmlbox/pkg/cascade"
	"htmlbox/pkg/correct"
	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics"
	"htmlbox/pkg/html"
	"htmlbox/pkg/images"
	"htmlbox/pkg/layout"
	"htmlbox/pkg/render"
	"htmlbox/pkg/resource"
)

// StylesheetHandler sees every linked stylesheet before it is fetched.
type StylesheetHandler func(e *events.StylesheetLoadEvent)

// Options configures a Container.
type Options struct {
	// Media selects the @media rules applied after "all".
	Media string
	// MasterCSS is appended to the built-in default stylesheet.
	MasterCSS string

	Reporter          events.Reporter
	ImageHandler      images.Handler
	StylesheetHandler StylesheetHandler

	// Fetcher loads stylesheets and images; nil fetches relative to the
	// working directory.
	Fetcher *resource.Fetcher
	// MaxConcurrentImages bounds parallel image downloads.
	MaxConcurrentImages int

	Logger *zap.Logger
}

// Container renders one document at a time.
type Container struct {
	adapter   *graphics.Adapter
	parser    *css.Parser
	master    *css.StylesheetData
	cascade   *cascade.Engine
	corrector *correct.Corrector
	layout    *layout.Engine
	painter   *render.Painter

	fetcher           *resource.Fetcher
	downloader        *images.Downloader
	loader            *images.Loader
	stylesheetHandler StylesheetHandler
	reporter          events.Reporter
	logger            *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	root    *html.Box
	data    *css.StylesheetData
	width   float64
	height  float64
	pending []pendingImage
	refresh chan struct{}

	hovers  map[*html.Box][]*css.Block
	hovered []*hoverState

	selColor, selBackground css.Color
	hasSelectionColors      bool
	selection               map[*html.Word]bool

	disposed atomic.Bool
}

// New creates a session drawing with adapter.
func New(adapter *graphics.Adapter, opts Options) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		f, err := resource.NewFetcher(resource.Options{}, logger)
		if err != nil {
			return nil, fmt.Errorf("creating fetcher: %w", err)
		}
		fetcher = f
	}

	c := &Container{
		adapter:           adapter,
		fetcher:           fetcher,
		stylesheetHandler: opts.StylesheetHandler,
		reporter:          opts.Reporter,
		logger:            logger.Named("container"),
		refresh:           make(chan struct{}, 1),
	}
	if c.reporter == nil {
		c.reporter = events.Discard
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.parser = css.NewParser(adapter)
	c.master = c.parser.Parse(css.DefaultStyleSheet + "\n" + opts.MasterCSS)
	c.cascade = cascade.New(c.parser, c, opts.Media, logger)
	c.corrector = correct.New(c, logger)
	c.layout = layout.NewEngine(adapter, c, logger)
	c.painter = render.NewPainter(adapter, c, logger)
	c.downloader = images.NewDownloader(fetcher, adapter, opts.MaxConcurrentImages, logger)
	c.loader = images.NewLoader(opts.ImageHandler, c.downloader)
	return c, nil
}

// ReportError logs the error and forwards it to the host's reporter.
func (c *Container) ReportError(t events.ErrorType, message string, err error) {
	c.logger.Warn(message, zap.Stringer("type", t), zap.Error(err))
	c.reporter.ReportError(t, message, err)
}

// SetHTML parses markup and replaces the current document. Image loads
// start immediately; their results are assigned by ApplyPending.
func (c *Container) SetHTML(markup string) {
	if c.disposed.Load() {
		return
	}
	c.pending = nil
	c.hovers = make(map[*html.Box][]*css.Block)
	c.hovered = nil
	c.selection = nil
	c.hasSelectionColors = false

	root := html.Parse(markup)
	c.data = c.cascade.Apply(root, c.master)
	c.corrector.Correct(root)
	c.root = root
	c.width, c.height = 0, 0
	c.requestImages(root)
}

// Root returns the document tree, nil before SetHTML.
func (c *Container) Root() *html.Box { return c.root }

// Fetcher returns the fetcher that loads the document's resources.
func (c *Container) Fetcher() *resource.Fetcher { return c.fetcher }

// Adapter returns the graphics adapter.
func (c *Container) Adapter() *graphics.Adapter { return c.adapter }

// Stylesheet returns the stylesheet data of the current document.
func (c *Container) Stylesheet() *css.StylesheetData { return c.data }

// Layout assigns finished images and lays the document out for width. It
// returns the document height.
func (c *Container) Layout(width float64) float64 {
	if c.root == nil || c.disposed.Load() {
		return 0
	}
	c.ApplyPending()
	c.width = width
	c.height = c.layout.Layout(c.root, width)
	return c.height
}

// Height returns the height computed by the last Layout.
func (c *Container) Height() float64 { return c.height }

// Paint draws the part of the document inside clip.
func (c *Container) Paint(g graphics.Graphics, clip css.RectF) {
	if c.root == nil || c.disposed.Load() {
		return
	}
	c.painter.Selection = nil
	if len(c.selection) > 0 {
		color, background := c.SelectionColors()
		c.painter.Selection = &render.Selection{Words: c.selection, Color: color, Background: background}
	}
	c.painter.Paint(g, c.root, clip)
}

// GetHTML regenerates markup from the current tree.
func (c *Container) GetHTML() string {
	if c.root == nil {
		return ""
	}
	return html.Serialize(c.root)
}

// Refresh delivers a value whenever finished image loads wait for
// ApplyPending and a relayout. Signals coalesce.
func (c *Container) Refresh() <-chan struct{} { return c.refresh }

func (c *Container) signal() {
	if c.disposed.Load() {
		return
	}
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// Dispose stops outstanding loads. The container ignores every later call
// and completion.
func (c *Container) Dispose() {
	if c.disposed.Swap(true) {
		return
	}
	c.cancel()
	c.downloader.Close()
	c.logger.Debug("disposed")
}

// LoadStylesheet implements cascade.Host. The stylesheet handler may
// supply the text, parsed data or another source; otherwise the source is
// fetched.
func (c *Container) LoadStylesheet(href string, attrs map[string]string) (string, *css.StylesheetData) {
	ev := events.NewStylesheetLoadEvent(href, attrs)
	if c.stylesheetHandler != nil {
		c.stylesheetHandler(ev)
	}
	if d := ev.StyleSheetData(); d != nil {
		return "", d
	}
	if text := ev.StyleSheet(); text != "" {
		return text, nil
	}
	if strings.TrimSpace(ev.Src) == "" {
		return "", nil
	}
	text, err := c.fetcher.FetchText(c.ctx, ev.Src)
	if err != nil {
		c.ReportError(events.CssParsing, "Failed to load stylesheet "+ev.Src, err)
		return "", nil
	}
	return text, nil
}

// AddHoverBox implements cascade.Host.
func (c *Container) AddHoverBox(box *html.Box, block *css.Block) {
	c.hovers[box] = append(c.hovers[box], block)
}

// SetSelectionColors implements cascade.Host.
func (c *Container) SetSelectionColors(color, background string) {
	c.selColor, c.selBackground = defaultSelectionColor, defaultSelectionBackground
	if v, ok := css.ParseColor(color); ok {
		c.selColor = v
	}
	if v, ok := css.ParseColor(background); ok {
		c.selBackground = v
	}
	c.hasSelectionColors = true
}

var (
	defaultSelectionColor      = css.Color{R: 255, G: 255, B: 255, A: 255}
	defaultSelectionBackground = css.Color{R: 51, G: 153, B: 255, A: 255}
)

// SelectionColors returns the ::selection colors of the document, or the
// defaults when it has none.
func (c *Container) SelectionColors() (color, background css.Color) {
	if !c.hasSelectionColors {
		return defaultSelectionColor, defaultSelectionBackground
	}
	return c.selColor, c.selBackground
}

// SelectAll selects every word of the document.
func (c *Container) SelectAll() {
	if c.root == nil {
		return
	}
	c.selection = make(map[*html.Word]bool)
	c.root.Walk(func(b *html.Box) bool {
		for _, w := range b.Words {
			if !w.IsLineBreak {
				c.selection[w] = true
			}
		}
		return true
	})
}

// ClearSelection removes the selection.
func (c *Container) ClearSelection() { c.selection = nil }

// SelectedText returns the selected words in document order.
func (c *Container) SelectedText() string {
	if c.root == nil || len(c.selection) == 0 {
		return ""
	}
	var sb strings.Builder
	spaceAfter := false
	c.root.Walk(func(b *html.Box) bool {
		for _, w := range b.Words {
			if !c.selection[w] {
				continue
			}
			if w.IsSpace {
				sb.WriteByte(' ')
				spaceAfter = false
				continue
			}
			if sb.Len() > 0 && (spaceAfter || w.HasSpaceBefore) {
				sb.WriteByte(' ')
			}
			sb.WriteString(w.Text)
			spaceAfter = w.HasSpaceAfter
		}
		return true
	})
	return sb.String()
}
