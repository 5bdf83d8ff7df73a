package container

import (
	"slices"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// hoverState keeps the styles every box under a hovered box had before
// the :hover rules were applied.
type hoverState struct {
	box   *html.Box
	saved map[*html.Box]css.Properties
}

// HandleMouseMove applies the :hover rules of the boxes under (x, y) and
// reverts those of boxes the pointer left. It reports whether styles
// changed, in which case the host should lay out again.
//
// The hovered boxes always form one ancestor chain, kept outermost first;
// they are reverted innermost first so every box gets back the styles it
// had before.
func (c *Container) HandleMouseMove(x, y float64) bool {
	if c.root == nil || c.disposed.Load() || len(c.hovers) == 0 {
		return false
	}
	var chain []*html.Box
	for b := c.BoxAt(x, y); b != nil; b = b.Parent {
		if _, ok := c.hovers[b]; ok {
			chain = append(chain, b)
		}
	}
	slices.Reverse(chain)

	keep := 0
	for keep < len(chain) && keep < len(c.hovered) && c.hovered[keep].box == chain[keep] {
		keep++
	}
	changed := keep < len(c.hovered) || keep < len(chain)
	for i := len(c.hovered) - 1; i >= keep; i-- {
		c.hovered[i].revert()
		c.hovered[i] = nil
	}
	c.hovered = c.hovered[:keep]
	for _, b := range chain[keep:] {
		c.hovered = append(c.hovered, c.applyHover(b))
	}
	return changed
}

// applyHover writes the hover blocks of b and passes the inherited
// properties they changed down the subtree. Text and anonymous boxes take
// all inherited properties of their parent; element boxes only take those
// they had inherited, that is where their value matched the old value of
// the parent.
func (c *Container) applyHover(b *html.Box) *hoverState {
	st := &hoverState{box: b, saved: map[*html.Box]css.Properties{}}
	b.Walk(func(x *html.Box) bool {
		st.saved[x] = x.Styles()
		return true
	})
	for _, block := range c.hovers[b] {
		c.cascade.ApplyBlock(b, block)
	}

	names := css.InheritedNames()
	var inherit func(parent *html.Box)
	inherit = func(parent *html.Box) {
		old := st.saved[parent]
		for _, child := range parent.Children {
			if child.Tag == nil {
				child.InheritStyle(parent, false)
			} else {
				own := st.saved[child]
				for _, name := range names {
					value, ok := parent.StyleValue(name)
					if ok && value != old[name] && own[name] == old[name] {
						child.SetStyle(name, value)
					}
				}
			}
			inherit(child)
		}
	}
	inherit(b)
	b.Invalidate()
	return st
}

func (st *hoverState) revert() {
	for x, props := range st.saved {
		x.ReplaceStyles(props)
	}
	st.box.Invalidate()
}

// BoxAt returns the innermost box painted at (x, y).
func (c *Container) BoxAt(x, y float64) *html.Box {
	if c.root == nil {
		return nil
	}
	pt := css.PointF{X: x, Y: y}
	var hit *html.Box
	c.root.Walk(func(b *html.Box) bool {
		if b.Display() == css.DisplayNone {
			return false
		}
		if hits(b, pt) {
			hit = b
		}
		return true
	})
	return hit
}

func hits(b *html.Box, pt css.PointF) bool {
	if b.HasText() {
		for _, w := range b.Words {
			if w.Rect.Contains(pt) {
				return true
			}
		}
		return false
	}
	if len(b.Fragments) > 0 {
		for _, r := range b.Fragments {
			if r.Contains(pt) {
				return true
			}
		}
		return false
	}
	return b.Bounds().Contains(pt)
}

// LinkAt returns the href of the link under (x, y).
func (c *Container) LinkAt(x, y float64) (string, bool) {
	b := c.BoxAt(x, y)
	for ; b != nil; b = b.Parent {
		if b.TagName() == "a" {
			if href, ok := b.Attr("href"); ok {
				return href, true
			}
		}
	}
	return "", false
}
