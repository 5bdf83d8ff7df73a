package main

import (
	"context"
	"image"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	fynecontainer "fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"htmlbox/pkg/config"
	"htmlbox/pkg/container"
	"htmlbox/pkg/events"
	"htmlbox/pkg/resource"
)

// page is the widget showing the rendered document. It forwards pointer
// movement and taps in document coordinates.
type page struct {
	widget.BaseWidget
	img   *canvas.Image
	moved func(x, y float64)
	tap   func(x, y float64)
}

func newPage(moved, tap func(x, y float64)) *page {
	p := &page{
		img:   canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
		moved: moved,
		tap:   tap,
	}
	p.img.FillMode = canvas.ImageFillStretch
	p.ExtendBaseWidget(p)
	return p
}

func (p *page) CreateRenderer() fyne.WidgetRenderer { return widget.NewSimpleRenderer(p.img) }

func (p *page) MouseIn(*desktop.MouseEvent) {}
func (p *page) MouseOut()                   {}
func (p *page) MouseMoved(e *desktop.MouseEvent) {
	p.moved(float64(e.Position.X), float64(e.Position.Y))
}

func (p *page) Tapped(e *fyne.PointEvent) {
	p.tap(float64(e.Position.X), float64(e.Position.Y))
}

func (p *page) show(img image.Image) {
	b := img.Bounds()
	p.img.Image = img
	p.img.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	p.img.Refresh()
	p.Refresh()
}

// browser owns the window and the session of the current document. Every
// access to the session happens on the fyne main goroutine.
type browser struct {
	cfg    *config.Config
	logger *zap.Logger

	app    fyne.App
	window fyne.Window
	entry  *widget.Entry
	status *widget.Label
	page   *page
	scroll *fynecontainer.Scroll

	session *container.Container
	stop    chan struct{}
}

func newBrowser(cfg *config.Config, logger *zap.Logger) *browser {
	b := &browser{cfg: cfg, logger: logger.Named("viewer"), app: app.New()}
	b.window = b.app.NewWindow("htmlview")
	b.window.Resize(fyne.NewSize(float32(cfg.Render.Width), 700))

	b.status = widget.NewLabel("Enter a path or URL")
	b.entry = widget.NewEntry()
	b.entry.SetPlaceHolder("https://example.com or ./page.html")
	b.entry.OnSubmitted = b.open
	b.page = newPage(b.mouseMoved, b.tapped)
	b.scroll = fynecontainer.NewScroll(b.page)

	b.window.SetContent(fynecontainer.NewBorder(b.entry, b.status, nil, nil, b.scroll))
	b.window.SetOnClosed(b.close)
	b.window.Canvas().Focus(b.entry)
	return b
}

func (b *browser) run() { b.window.ShowAndRun() }

// open loads input off the main goroutine and installs the new session.
func (b *browser) open(input string) {
	b.entry.SetText(input)
	b.status.SetText("Loading " + input + "...")
	go func() {
		session, err := b.load(input)
		fyne.Do(func() {
			if err != nil {
				b.status.SetText("Error: " + err.Error())
				return
			}
			b.install(session, input)
		})
	}()
}

func (b *browser) load(input string) (*container.Container, error) {
	base := input
	if !resource.IsNetworkURL(input) {
		if abs, err := filepath.Abs(input); err == nil {
			input, base = abs, filepath.Dir(abs)
		}
	}
	reporter := events.ReporterFunc(func(t events.ErrorType, msg string, err error) {
		fyne.Do(func() { b.status.SetText(msg) })
	})
	session, err := container.NewFromConfig(b.cfg, base, reporter, b.logger)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.Fetch.Timeout)
	defer cancel()
	doc, err := session.Fetcher().LoadDocument(ctx, input)
	if err != nil {
		session.Dispose()
		return nil, err
	}
	// not yet shared with the main goroutine
	session.SetHTML(doc)
	return session, nil
}

func (b *browser) install(session *container.Container, input string) {
	b.close()
	b.session = session
	b.stop = make(chan struct{})
	go b.watch(session, b.stop)

	b.window.SetTitle("htmlview - " + input)
	b.status.SetText(input)
	b.scroll.ScrollToTop()
	b.repaint()
}

// watch relays image arrivals of session to the main goroutine.
func (b *browser) watch(session *container.Container, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-session.Refresh():
			fyne.Do(func() {
				if b.session == session && session.ApplyPending() {
					b.repaint()
				}
			})
		}
	}
}

func (b *browser) repaint() {
	if b.session == nil {
		return
	}
	width := int(b.scroll.Size().Width)
	if width <= 0 {
		width = b.cfg.Render.Width
	}
	surface := b.session.RenderImage(width, b.cfg.Render.Height, b.cfg.BackgroundColor())
	b.page.show(surface.Image())
}

func (b *browser) mouseMoved(x, y float64) {
	if b.session != nil && b.session.HandleMouseMove(x, y) {
		b.repaint()
	}
}

func (b *browser) tapped(x, y float64) {
	if b.session == nil {
		return
	}
	if href, ok := b.session.LinkAt(x, y); ok {
		b.open(b.session.Fetcher().Resolve(href))
	}
}

func (b *browser) close() {
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	if b.session != nil {
		b.session.Dispose()
		b.session = nil
	}
}
