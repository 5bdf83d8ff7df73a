// Package cascade resolves the computed style of every box: it collects the
// document's stylesheets and applies the matching rules top-down.
package cascade

import (
	"strings"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// Host is the part of the renderer session the cascade talks to.
type Host interface {
	// LoadStylesheet returns the text or parsed data of a linked
	// stylesheet. Both empty means nothing could be loaded.
	LoadStylesheet(href string, attrs map[string]string) (string, *css.StylesheetData)
	// AddHoverBox registers a :hover rule matching box.
	AddHoverBox(box *html.Box, block *css.Block)
	// SetSelectionColors receives the ::selection colors.
	SetSelectionColors(color, background string)
}

// Engine applies stylesheets to box trees.
type Engine struct {
	parser *css.Parser
	host   Host
	media  string
	logger *zap.Logger
}

// New creates an engine. media selects the @media bucket applied after
// "all"; empty means screen.
func New(parser *css.Parser, host Host, media string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if media == "" {
		media = "screen"
	}
	return &Engine{parser: parser, host: host, media: strings.ToLower(media), logger: logger.Named("cascade")}
}

// Apply collects the stylesheets embedded in or linked from the tree on top
// of base and computes the style of every box. base is never modified; the
// returned data is base itself when the document adds no stylesheets.
func (e *Engine) Apply(root *html.Box, base *css.StylesheetData) *css.StylesheetData {
	if base == nil {
		base = css.NewStylesheetData()
	}
	d := &docData{data: base}
	e.parseStyles(root, d)
	e.applyStyles(root, d.data)
	e.applySelection(d.data)
	return d.data
}

// docData holds the stylesheet of one document, cloned on the first write.
type docData struct {
	data   *css.StylesheetData
	cloned bool
}

func (d *docData) writable() *css.StylesheetData {
	if !d.cloned {
		d.data = d.data.Clone()
		d.cloned = true
	}
	return d.data
}

func (e *Engine) parseStyles(b *html.Box, d *docData) {
	switch b.TagName() {
	case "link":
		rel, _ := b.Attr("rel")
		href, _ := b.Attr("href")
		if strings.EqualFold(strings.TrimSpace(rel), "stylesheet") && e.host != nil {
			text, data := e.host.LoadStylesheet(href, b.Tag.Attrs.Map())
			switch {
			case text != "":
				e.parser.ParseInto(d.writable(), text)
			case data != nil:
				d.writable().Combine(data)
			}
			e.logger.Debug("linked stylesheet", zap.String("href", href), zap.Bool("loaded", text != "" || data != nil))
		}
	case "style":
		if len(b.Children) > 0 {
			data := d.writable()
			for _, c := range b.Children {
				e.parser.ParseInto(data, c.Text)
			}
		}
	}
	for _, c := range b.Children {
		e.parseStyles(c, d)
	}
}

func (e *Engine) mediaBuckets() []string {
	if e.media == css.MediaAll {
		return []string{css.MediaAll}
	}
	return []string{css.MediaAll, e.media}
}

func (e *Engine) applyStyles(b *html.Box, data *css.StylesheetData) {
	if b.Parent != nil {
		b.InheritStyle(b.Parent, false)
	}
	if b.Tag != nil {
		tag := b.Tag.Name
		for _, media := range e.mediaBuckets() {
			e.applyKey(b, data, media, "*")
			e.applyKey(b, data, media, tag)
			for _, class := range b.Classes() {
				e.applyKey(b, data, media, "."+class)
				e.applyKey(b, data, media, tag+"."+class)
			}
			if id := strings.ToLower(b.ID()); id != "" {
				e.applyKey(b, data, media, "#"+id)
				e.applyKey(b, data, media, tag+"#"+id)
			}
		}
		e.translateAttributes(b)
		if style, ok := b.Attr("style"); ok {
			e.applyProperties(b, e.parser.ParseBlock(tag, style).Properties)
		}
	}
	b.ResolveFontSize()
	pushDecoration(b, false)

	for _, c := range b.Children {
		e.applyStyles(c, data)
	}
}

// pushDecoration moves text-decoration from b to its children, since
// decorations are drawn per text run. With deep set it continues down to
// the text boxes.
func pushDecoration(b *html.Box, deep bool) {
	if b.HasText() {
		return
	}
	deco, ok := b.StyleValue("text-decoration")
	if !ok {
		return
	}
	b.DeleteStyle("text-decoration")
	if deco == "none" || deco == "" {
		return
	}
	for _, c := range b.Children {
		c.SetStyle("text-decoration", deco)
		if deep {
			pushDecoration(c, true)
		}
	}
}

func (e *Engine) applyKey(b *html.Box, data *css.StylesheetData, media, key string) {
	for _, block := range data.Blocks(media, key) {
		if e.assignable(b, block) {
			e.applyProperties(b, block.Properties)
		}
	}
}

// assignable reports whether block applies to b statically. Matching hover
// blocks are handed to the host instead.
func (e *Engine) assignable(b *html.Box, block *css.Block) bool {
	if len(block.Ancestors) > 0 {
		if !MatchAncestors(b, block.Ancestors) {
			return false
		}
	} else if b.TagName() == "a" && block.Key == "a" && !b.Tag.HasAttr("href") {
		return false
	}
	if block.Hover {
		if e.host != nil {
			e.host.AddHoverBox(b, block)
		}
		return false
	}
	return true
}

// ApplyBlock writes the properties of block to b with inherit resolution
// and the display whitelist. It is used for hover rules at runtime.
func (e *Engine) ApplyBlock(b *html.Box, block *css.Block) {
	e.applyProperties(b, block.Properties)
	b.ResolveFontSize()
	pushDecoration(b, true)
	b.Invalidate()
}

func (e *Engine) applyProperties(b *html.Box, props css.Properties) {
	for _, name := range props.Names() {
		value := props[name]
		if value == css.Inherit {
			if b.Parent == nil {
				continue
			}
			value = b.Parent.Style(name)
		}
		if name == "display" && !displayAllowed(b.TagName(), value) {
			continue
		}
		b.SetStyle(name, value)
	}
}

var fixedDisplay = map[string]string{
	"table":    css.DisplayTable,
	"tr":       css.DisplayTableRow,
	"tbody":    css.DisplayTableRowGroup,
	"thead":    css.DisplayTableHeaderGroup,
	"tfoot":    css.DisplayTableFooterGroup,
	"col":      css.DisplayTableColumn,
	"colgroup": css.DisplayTableColumnGroup,
	"td":       css.DisplayTableCell,
	"th":       css.DisplayTableCell,
	"caption":  css.DisplayTableCaption,
}

// displayAllowed restricts table elements to their own display value.
func displayAllowed(tag, value string) bool {
	if want, ok := fixedDisplay[tag]; ok {
		return value == want
	}
	return true
}

func (e *Engine) applySelection(data *css.StylesheetData) {
	if e.host == nil {
		return
	}
	blocks := data.Blocks(css.MediaAll, css.SelectionKey)
	if len(blocks) == 0 {
		return
	}
	var color, background string
	for _, block := range blocks {
		if v, ok := block.Properties["color"]; ok {
			color = v
		}
		if v, ok := block.Properties["background-color"]; ok {
			background = v
		}
	}
	if color != "" || background != "" {
		e.host.SetSelectionColors(color, background)
	}
}
