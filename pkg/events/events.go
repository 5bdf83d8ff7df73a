// Package events defines the callback contracts between the rendering core
// and its host: error reports, image loads and stylesheet loads.
package events

import (
	"fmt"
	"sync"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
)

// ErrorType classifies a reported error.
type ErrorType int

const (
	General ErrorType = iota
	HtmlParsing
	CssParsing
	Image
	ContextMenu
	Layout
	Paint
)

var errorTypeNames = map[ErrorType]string{
	General:     "general",
	HtmlParsing: "html-parsing",
	CssParsing:  "css-parsing",
	Image:       "image",
	ContextMenu: "context-menu",
	Layout:      "layout",
	Paint:       "paint",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// Reporter receives non-fatal errors.
type Reporter interface {
	ReportError(t ErrorType, message string, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(t ErrorType, message string, err error)

func (f ReporterFunc) ReportError(t ErrorType, message string, err error) { f(t, message, err) }

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(ErrorType, string, error) {})

// ErrorEvent is one collected report.
type ErrorEvent struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e ErrorEvent) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Collector keeps every report. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events []ErrorEvent
}

func (c *Collector) ReportError(t ErrorType, message string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ErrorEvent{Type: t, Message: message, Err: err})
}

// Events returns a copy of the collected reports.
func (c *Collector) Events() []ErrorEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ErrorEvent(nil), c.events...)
}

// ImageLoadEvent lets a host supply an image for an <img> or a background
// before the default loader runs. Calling any of the callbacks marks the
// event handled.
type ImageLoadEvent struct {
	Src        string
	Attributes map[string]string

	mu       sync.Mutex
	handled  bool
	complete func(img graphics.Image, rect css.RectF, path string)
}

// NewImageLoadEvent creates an event whose callbacks end in complete. Only
// the first callback is delivered.
func NewImageLoadEvent(src string, attrs map[string]string, complete func(img graphics.Image, rect css.RectF, path string)) *ImageLoadEvent {
	return &ImageLoadEvent{Src: src, Attributes: attrs, complete: complete}
}

// Handled reports whether a callback was invoked or the event was claimed.
func (e *ImageLoadEvent) Handled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handled
}

// SetHandled claims the event for a later asynchronous callback.
func (e *ImageLoadEvent) SetHandled() {
	e.mu.Lock()
	e.handled = true
	e.mu.Unlock()
}

func (e *ImageLoadEvent) deliver(img graphics.Image, rect css.RectF, path string) {
	e.mu.Lock()
	complete := e.complete
	e.complete = nil
	e.handled = true
	e.mu.Unlock()
	if complete != nil {
		complete(img, rect, path)
	}
}

// Callback supplies a loaded image. A nil image reports failure.
func (e *ImageLoadEvent) Callback(img graphics.Image) {
	e.deliver(img, css.RectF{}, "")
}

// CallbackRect supplies an image of which only rect is drawn.
func (e *ImageLoadEvent) CallbackRect(img graphics.Image, rect css.RectF) {
	e.deliver(img, rect, "")
}

// CallbackPath replaces the source; the default loader fetches it.
func (e *ImageLoadEvent) CallbackPath(src string) {
	e.deliver(nil, css.RectF{}, src)
}

// StylesheetLoadEvent lets a host supply the content of a
// <link rel="stylesheet">.
type StylesheetLoadEvent struct {
	Src        string
	Attributes map[string]string

	styleSheet     string
	styleSheetData *css.StylesheetData
	srcChanged     bool
}

// NewStylesheetLoadEvent creates an event for src.
func NewStylesheetLoadEvent(src string, attrs map[string]string) *StylesheetLoadEvent {
	return &StylesheetLoadEvent{Src: src, Attributes: attrs}
}

// SetStyleSheet supplies stylesheet text.
func (e *StylesheetLoadEvent) SetStyleSheet(text string) { e.styleSheet = text }

// SetStyleSheetData supplies an already parsed stylesheet; it takes
// precedence over text.
func (e *StylesheetLoadEvent) SetStyleSheetData(d *css.StylesheetData) { e.styleSheetData = d }

// SetSrc redirects the load to another source.
func (e *StylesheetLoadEvent) SetSrc(src string) {
	e.Src = src
	e.srcChanged = true
}

// StyleSheet returns the supplied text.
func (e *StylesheetLoadEvent) StyleSheet() string { return e.styleSheet }

// StyleSheetData returns the supplied parsed data.
func (e *StylesheetLoadEvent) StyleSheetData() *css.StylesheetData { return e.styleSheetData }

// SrcChanged reports whether SetSrc was called.
func (e *StylesheetLoadEvent) SrcChanged() bool { return e.srcChanged }
