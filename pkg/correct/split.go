package correct

import "htmlbox/pkg/html"

// correctBlockInsideInline handles block containers whose inline children
// hide block boxes deeper down, as in <span>a<div>b</div>c</span>. The
// inline boxes on the path to a block are split around it: the first
// fragment is the original box, later fragments are copies carrying the
// same style. The container ends up with the fragments and the hoisted
// blocks as direct children; the second inline parent pass wraps the
// fragments into anonymous blocks.
func (c *Corrector) correctBlockInsideInline(b *html.Box) {
	c.enter(StageBlockInInline, b)
	if inlinesOnly(b) && !b.IsInline() && !childrenInlineDeep(b) {
		kids := append([]*html.Box(nil), b.Children...)
		b.Children = nil
		for _, kid := range kids {
			if inlinesOnlyDeep(kid) {
				b.AppendChild(kid)
				continue
			}
			for _, piece := range c.splitInline(kid) {
				b.AppendChild(piece)
			}
		}
	}
	if !inlinesOnly(b) {
		for _, child := range b.Children {
			c.guard(StageBlockInInline, child, func() { c.correctBlockInsideInline(child) })
		}
	}
}

func childrenInlineDeep(b *html.Box) bool {
	for _, child := range b.Children {
		if !inlinesOnlyDeep(child) {
			return false
		}
	}
	return true
}

// splitInline splits the inline box b around its block descendants and
// returns the resulting sequence of inline fragments and blocks.
func (c *Corrector) splitInline(b *html.Box) []*html.Box {
	c.enter(StageBlockInInline, b)
	kids := append([]*html.Box(nil), b.Children...)
	b.Children = nil

	var out, fragments []*html.Box
	var current *html.Box
	fragment := func() *html.Box {
		if current == nil {
			if len(fragments) == 0 {
				current = b
			} else {
				current = b.ShallowClone()
			}
			fragments = append(fragments, current)
			out = append(out, current)
		}
		return current
	}

	for _, kid := range kids {
		switch {
		case !kid.IsInline():
			current = nil
			out = append(out, kid)
		case inlinesOnlyDeep(kid):
			fragment().AppendChild(kid)
		default:
			for _, piece := range c.splitInline(kid) {
				if piece.IsInline() {
					fragment().AppendChild(piece)
				} else {
					current = nil
					out = append(out, piece)
				}
			}
		}
	}

	for i, f := range fragments {
		f.Fragmented = true
		f.IsFirstFragment = i == 0
		f.IsLastFragment = i == len(fragments)-1
	}
	// pieces are re-parented by the caller
	for _, piece := range out {
		piece.Parent = nil
	}
	return out
}
