// Package html holds the box tree the renderer works on and the permissive
// parser that builds it from markup.
package html

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"htmlbox/pkg/css"
	"htmlbox/pkg/graphics"
)

// Kind tells what a box was created from.
type Kind int

const (
	KindElement Kind = iota
	KindText
	KindAnonymous
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindAnonymous:
		return "anonymous"
	case KindImage:
		return "image"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// derived holds values computed from the style bag. It is dropped on every
// style write.
type derived struct {
	display  string
	fontSize float64
	borders  css.Edges
	radii    css.Corners
}

// Box is a node of the render tree: an element, a run of text or an
// anonymous block introduced by correction.
type Box struct {
	Kind     Kind
	Tag      *Tag
	Parent   *Box
	Children []*Box

	// Text is the raw source text of a text box.
	Text string

	style   css.Properties
	derived *derived

	// Words is filled by correction for text boxes and holds the layout
	// rectangles after layout.
	Words []*Word
	// LineBoxes are the lines of a block container.
	LineBoxes []*LineBox
	// Fragments lists the per-line rectangles of an inline box.
	Fragments []css.RectF

	Location     css.PointF
	Size         css.SizeF
	ActualBottom float64
	ActualRight  float64
	Margin       css.Edges
	Padding      css.Edges
	Border       css.Edges

	// Fragmented is set on every part of an inline box split around a
	// block. Only the first fragment paints the left border and only the
	// last one the right border.
	Fragmented      bool
	IsFirstFragment bool
	IsLastFragment  bool

	Image      graphics.Image
	ImageRect  css.RectF
	ImageError bool

	// BackgroundImage is the loaded background-image, if any.
	BackgroundImage graphics.Image

	// Marker is the list marker text computed during layout.
	Marker string
}

// NewBox creates an element box and appends it to parent if not nil.
func NewBox(parent *Box, tag *Tag) *Box {
	b := &Box{Kind: KindElement, Tag: tag, style: css.Properties{}}
	switch {
	case tag == nil:
		b.Kind = KindAnonymous
	case tag.Name == "img":
		b.Kind = KindImage
	}
	if parent != nil {
		parent.AppendChild(b)
	}
	return b
}

// NewTextBox creates a text box under parent.
func NewTextBox(parent *Box, text string) *Box {
	b := &Box{Kind: KindText, Text: text, style: css.Properties{}}
	if parent != nil {
		parent.AppendChild(b)
	}
	return b
}

// NewRoot creates the anonymous block every parsed document hangs from.
func NewRoot() *Box {
	b := NewBox(nil, nil)
	b.SetStyle("display", css.DisplayBlock)
	return b
}

// NewAnonymousBlock creates an anonymous block box inheriting parent's
// inherited properties and inserts it at index, or appends it when index is
// negative.
func NewAnonymousBlock(parent *Box, index int) *Box {
	b := NewBox(nil, nil)
	if parent != nil {
		b.InheritStyle(parent, false)
		if index < 0 {
			parent.AppendChild(b)
		} else {
			parent.InsertChild(index, b)
		}
	}
	b.SetStyle("display", css.DisplayBlock)
	return b
}

// ShallowClone copies the box without tree links, words or geometry. The
// style bag is copied.
func (b *Box) ShallowClone() *Box {
	c := &Box{
		Kind:  b.Kind,
		Tag:   b.Tag,
		Text:  b.Text,
		style: b.style.Clone(),
		Image: b.Image,

		BackgroundImage: b.BackgroundImage,
	}
	return c
}

// HasText reports whether the box is a text box.
func (b *Box) HasText() bool { return b.Kind == KindText }

// IsImage reports whether the box is an <img>.
func (b *Box) IsImage() bool { return b.Kind == KindImage }

// TagName returns the lowercase tag name or "" for text and anonymous boxes.
func (b *Box) TagName() string {
	if b.Tag == nil {
		return ""
	}
	return b.Tag.Name
}

// Attr returns an attribute of the box's tag.
func (b *Box) Attr(name string) (string, bool) {
	return b.Tag.Attr(name)
}

// ID returns the id attribute.
func (b *Box) ID() string {
	v, _ := b.Attr("id")
	return strings.TrimSpace(v)
}

// Classes returns the lowercased class names.
func (b *Box) Classes() []string {
	v, ok := b.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(strings.ToLower(v))
}

// IsBrElement reports whether the box is a <br>.
func (b *Box) IsBrElement() bool { return b.TagName() == "br" }

// IsWhiteSpace reports whether the box is a text box of whitespace only.
func (b *Box) IsWhiteSpace() bool {
	if b.Kind != KindText {
		return false
	}
	for _, r := range b.Text {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Style returns the computed value of a property, or its initial value.
func (b *Box) Style(name string) string {
	if v, ok := b.style[name]; ok {
		return v
	}
	return css.InitialValue(name)
}

// StyleValue returns an explicitly set value.
func (b *Box) StyleValue(name string) (string, bool) {
	v, ok := b.style[name]
	return v, ok
}

// SetStyle writes a computed property.
func (b *Box) SetStyle(name, value string) {
	b.style[name] = value
	b.derived = nil
}

// DeleteStyle removes a computed property.
func (b *Box) DeleteStyle(name string) {
	delete(b.style, name)
	b.derived = nil
}

// Styles returns a copy of the explicitly set properties.
func (b *Box) Styles() css.Properties {
	return b.style.Clone()
}

// Invalidate drops the cached derived values of the box and its
// descendants.
func (b *Box) Invalidate() {
	b.Walk(func(x *Box) bool {
		x.derived = nil
		return true
	})
}

// ReplaceStyles swaps the whole style bag for a copy of p.
func (b *Box) ReplaceStyles(p css.Properties) {
	b.style = p.Clone()
	b.derived = nil
}

// InheritStyle copies properties from parent: the inherited ones, or all of
// them when everything is set.
func (b *Box) InheritStyle(parent *Box, everything bool) {
	if parent == nil {
		return
	}
	if everything {
		for k, v := range parent.style {
			b.style[k] = v
		}
	} else {
		for _, name := range css.InheritedNames() {
			if v, ok := parent.style[name]; ok {
				b.style[name] = v
			}
		}
	}
	b.derived = nil
}

func (b *Box) computed() *derived {
	if b.derived != nil {
		return b.derived
	}
	d := &derived{}
	if b.Kind == KindText {
		d.display = css.DisplayInline
	} else {
		d.display = b.Style("display")
	}

	parentSize := css.DefaultFontSize
	if b.Parent != nil {
		parentSize = b.Parent.FontSize()
	}
	d.fontSize = parentSize
	if v, ok := b.style["font-size"]; ok {
		d.fontSize = css.ParseFontSize(v, parentSize)
	}

	widths := [4]float64{}
	for i, side := range css.Sides {
		style := b.Style("border-" + side.String() + "-style")
		if style == "none" || style == "hidden" || style == "" {
			continue
		}
		widths[i] = css.ParseBorderWidth(b.Style("border-"+side.String()+"-width"), d.fontSize)
	}
	d.borders = css.Edges{Top: widths[0], Right: widths[1], Bottom: widths[2], Left: widths[3]}

	radius := func(name string) float64 {
		v, ok := css.ParseLength(b.Style(name), d.fontSize, 0)
		if !ok || v < 0 {
			return 0
		}
		return v
	}
	d.radii = css.Corners{
		TopLeft:     radius("border-top-left-radius"),
		TopRight:    radius("border-top-right-radius"),
		BottomRight: radius("border-bottom-right-radius"),
		BottomLeft:  radius("border-bottom-left-radius"),
	}
	b.derived = d
	return d
}

// Display returns the computed display value. Text boxes are inline.
func (b *Box) Display() string { return b.computed().display }

// IsInline reports whether the box takes part in inline formatting.
func (b *Box) IsInline() bool {
	d := b.Display()
	return (d == css.DisplayInline || d == css.DisplayInlineBlock) && !b.IsBrElement()
}

// IsBlock reports whether the box is block level: not inline and displayed.
func (b *Box) IsBlock() bool {
	d := b.Display()
	return d != css.DisplayInline && d != css.DisplayInlineBlock && d != css.DisplayNone
}

// FontSize returns the resolved font size in pixels.
func (b *Box) FontSize() float64 { return b.computed().fontSize }

// ResolveFontSize replaces a relative font-size with its pixel value so
// children inheriting it do not compound em and percentage sizes.
func (b *Box) ResolveFontSize() {
	if _, ok := b.style["font-size"]; !ok {
		return
	}
	b.SetStyle("font-size", strconv.FormatFloat(b.FontSize(), 'f', -1, 64)+"px")
}

// BorderWidths returns the used border widths; sides with style none are 0.
func (b *Box) BorderWidths() css.Edges { return b.computed().borders }

// CornerRadii returns the border radii in pixels.
func (b *Box) CornerRadii() css.Corners { return b.computed().radii }

// Length resolves a length property against the box font size and
// percentBase. Invalid and auto values resolve to 0.
func (b *Box) Length(name string, percentBase float64) float64 {
	v, ok := css.ParseLength(b.Style(name), b.FontSize(), percentBase)
	if !ok {
		return 0
	}
	return v
}

// Color resolves a color property, falling back to def.
func (b *Box) Color(name string, def css.Color) css.Color {
	if c, ok := css.ParseColor(b.Style(name)); ok {
		return c
	}
	return def
}

// FontStyle combines font-weight, font-style and text-decoration.
func (b *Box) FontStyle() css.FontStyle {
	s := css.FontRegular
	if css.ParseFontWeight(b.Style("font-weight")) {
		s |= css.FontBold
	}
	if fs := b.Style("font-style"); fs == "italic" || fs == "oblique" {
		s |= css.FontItalic
	}
	deco := b.Style("text-decoration")
	if strings.Contains(deco, "underline") {
		s |= css.FontUnderline
	}
	if strings.Contains(deco, "line-through") {
		s |= css.FontStrikeout
	}
	return s
}

// Bounds returns the border box.
func (b *Box) Bounds() css.RectF {
	return css.RectF{X: b.Location.X, Y: b.Location.Y, Width: b.Size.Width, Height: b.Size.Height}
}

// ClientRect returns the content box.
func (b *Box) ClientRect() css.RectF {
	r := b.Bounds()
	r.X += b.Border.Left + b.Padding.Left
	r.Y += b.Border.Top + b.Padding.Top
	r.Width -= b.Border.Horizontal() + b.Padding.Horizontal()
	r.Height -= b.Border.Vertical() + b.Padding.Vertical()
	return r
}

// AppendChild detaches c from its parent and adds it as the last child.
func (b *Box) AppendChild(c *Box) {
	c.detach()
	c.Parent = b
	b.Children = append(b.Children, c)
	c.derived = nil
}

// InsertChild detaches c and inserts it at index i.
func (b *Box) InsertChild(i int, c *Box) {
	c.detach()
	if i < 0 {
		i = 0
	}
	if i > len(b.Children) {
		i = len(b.Children)
	}
	b.Children = append(b.Children, nil)
	copy(b.Children[i+1:], b.Children[i:])
	b.Children[i] = c
	c.Parent = b
	c.derived = nil
}

// RemoveChild removes c and returns its former index, or -1.
func (b *Box) RemoveChild(c *Box) int {
	for i, child := range b.Children {
		if child == c {
			b.Children = append(b.Children[:i], b.Children[i+1:]...)
			c.Parent = nil
			return i
		}
	}
	return -1
}

// SetParent moves the box to the end of parent's children.
func (b *Box) SetParent(parent *Box) {
	if parent == nil {
		b.detach()
		return
	}
	parent.AppendChild(b)
}

func (b *Box) detach() {
	if b.Parent != nil {
		b.Parent.RemoveChild(b)
	}
}

// IndexInParent returns the position among the parent's children, or -1.
func (b *Box) IndexInParent() int {
	if b.Parent == nil {
		return -1
	}
	for i, c := range b.Parent.Children {
		if c == b {
			return i
		}
	}
	return -1
}

// Walk visits the box and its descendants depth first until fn returns
// false for a box, whose subtree is then skipped.
func (b *Box) Walk(fn func(*Box) bool) {
	if !fn(b) {
		return
	}
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// ContainingBlock returns the nearest ancestor that is block level.
func (b *Box) ContainingBlock() *Box {
	for p := b.Parent; p != nil; p = p.Parent {
		if p.IsBlock() {
			return p
		}
	}
	return b.Parent
}

// FindAncestor returns the nearest ancestor with the given tag name.
func (b *Box) FindAncestor(tag string) *Box {
	for p := b.Parent; p != nil; p = p.Parent {
		if p.TagName() == tag {
			return p
		}
	}
	return nil
}

func (b *Box) String() string {
	switch b.Kind {
	case KindText:
		return fmt.Sprintf("%q", b.Text)
	case KindAnonymous:
		return "anonymous " + b.Display()
	}
	return "<" + b.TagName() + "> " + b.Display()
}
