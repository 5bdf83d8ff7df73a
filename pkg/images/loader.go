// Package images loads pictures for <img> elements and backgrounds: the
// host gets first refusal through an ImageLoadEvent, then the downloader
// fetches and decodes the source.
package images

import (
	"errors"
	"strings"

	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/graphics"
)

var (
	errEmptySrc    = errors.New("empty image source")
	errHostFailure = errors.New("image load handler supplied no image")
	errNoDownload  = errors.New("no image downloader")
)

// Handler sees every image load before the downloader. It may answer
// through the event's callbacks, redirect it with CallbackPath, or claim it
// with SetHandled and answer later from any goroutine.
type Handler func(e *events.ImageLoadEvent)

// Loader runs the image load protocol.
type Loader struct {
	handler    Handler
	downloader *Downloader
}

// NewLoader creates a loader. Either argument may be nil.
func NewLoader(handler Handler, downloader *Downloader) *Loader {
	return &Loader{handler: handler, downloader: downloader}
}

// Request starts loading src.
func (l *Loader) Request(src string, attrs map[string]string) *Pending {
	src = strings.TrimSpace(src)
	if src == "" {
		return Resolved(src, Result{Err: errEmptySrc})
	}

	p := newPending(src)
	ev := events.NewImageLoadEvent(src, attrs, func(img graphics.Image, rect css.RectF, path string) {
		switch {
		case path != "":
			l.download(p, path)
		case img == nil:
			p.complete(Result{Err: errHostFailure})
		default:
			p.complete(Result{Image: img, Rect: rect})
		}
	})
	if l.handler != nil {
		l.handler(ev)
	}
	if !ev.Handled() {
		l.download(p, src)
	}
	return p
}

func (l *Loader) download(p *Pending, src string) {
	if l.downloader == nil {
		p.complete(Result{Err: errNoDownload})
		return
	}
	l.downloader.Load(src).OnDone(p.complete)
}
