package html

import (
	"fmt"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"

	"htmlbox/pkg/css"
)

// Serialize regenerates markup for the tree under root. Anonymous boxes are
// transparent and text is written as it appeared in the source.
func Serialize(root *Box) string {
	var sb strings.Builder
	writeBox(&sb, root, false)
	return sb.String()
}

// SerializeWithStyles is like Serialize but writes every element's computed
// style as its style attribute.
func SerializeWithStyles(root *Box) string {
	var sb strings.Builder
	writeBox(&sb, root, true)
	return sb.String()
}

func writeBox(sb *strings.Builder, b *Box, styles bool) {
	switch {
	case b.Kind == KindText:
		sb.WriteString(b.Text)
		return
	case b.Tag == nil:
		for _, c := range b.Children {
			writeBox(sb, c, styles)
		}
		return
	}

	sb.WriteByte('<')
	sb.WriteString(b.Tag.Name)
	for _, attr := range b.Tag.Attrs.All() {
		if styles && attr.Name == "style" {
			continue
		}
		writeAttr(sb, attr.Name, attr.Value)
	}
	if styles && len(b.style) > 0 {
		writeAttr(sb, "style", b.style.String())
	}

	if b.Tag.Void {
		if IsVoidTag(b.Tag.Name) {
			sb.WriteByte('>')
		} else {
			sb.WriteString(" />")
		}
		return
	}
	sb.WriteByte('>')
	for _, c := range b.Children {
		writeBox(sb, c, styles)
	}
	sb.WriteString("</")
	sb.WriteString(b.Tag.Name)
	sb.WriteByte('>')
}

func writeAttr(sb *strings.Builder, name, value string) {
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(nethtml.EscapeString(value))
	sb.WriteByte('"')
}

// DumpTree writes an indented outline of the tree, one box per line, with
// the box geometry when layout has run.
func DumpTree(w io.Writer, root *Box) error {
	var err error
	var dump func(b *Box, depth int)
	dump = func(b *Box, depth int) {
		if err != nil {
			return
		}
		line := strings.Repeat("  ", depth) + b.String()
		if !b.Bounds().IsEmpty() {
			r := b.Bounds()
			line += fmt.Sprintf(" [%g,%g %gx%g]", r.X, r.Y, r.Width, r.Height)
		}
		if _, err = fmt.Fprintln(w, line); err != nil {
			return
		}
		for _, c := range b.Children {
			dump(c, depth+1)
		}
	}
	dump(root, 0)
	return err
}

// Node is a plain snapshot of a box for encoding and comparison.
type Node struct {
	Kind     string            `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Display  string            `json:"display,omitempty"`
	Text     string            `json:"text,omitempty"`
	Words    []string          `json:"words,omitempty"`
	Rect     *css.RectF        `json:"rect,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Snapshot copies the tree under root into Nodes.
func Snapshot(root *Box) *Node {
	n := &Node{Kind: root.Kind.String(), Tag: root.TagName(), Text: root.Text}
	if root.Tag != nil && root.Tag.Attrs.Len() > 0 {
		n.Attrs = root.Tag.Attrs.Map()
	}
	if root.Kind != KindText {
		n.Display = root.Display()
	}
	for _, w := range root.Words {
		n.Words = append(n.Words, w.Text)
	}
	if r := root.Bounds(); !r.IsEmpty() {
		n.Rect = &r
	}
	for _, c := range root.Children {
		n.Children = append(n.Children, Snapshot(c))
	}
	return n
}
