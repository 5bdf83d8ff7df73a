// Package correct repairs a styled box tree for layout: it prunes
// insignificant whitespace, splits text into words, turns <br> into blocks
// and makes sure no box mixes block and inline children.
package correct

import (
	"fmt"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
	"htmlbox/pkg/events"
	"htmlbox/pkg/html"
)

// Stage names, used in error reports.
const (
	StageText          = "text correction"
	StageImages        = "image correction"
	StageLineBreaks    = "line break correction"
	StageInlineParents = "inline parent correction"
	StageBlockInInline = "block inside inline correction"
)

// Corrector runs the correction pipeline.
type Corrector struct {
	reporter events.Reporter
	logger   *zap.Logger

	// journal holds the state of every box a running stage entered, in
	// entry order. A failing guard rolls back the entries recorded since it
	// started.
	journal []boxState

	// hook runs before a box is handled in every stage; tests use it to
	// inject failures.
	hook func(stage string, b *html.Box)
}

// New creates a corrector reporting failures to reporter.
func New(reporter events.Reporter, logger *zap.Logger) *Corrector {
	if reporter == nil {
		reporter = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Corrector{reporter: reporter, logger: logger.Named("correct")}
}

// Tree corrects root with a default corrector.
func Tree(root *html.Box, reporter events.Reporter) {
	New(reporter, nil).Correct(root)
}

// Correct runs every stage over the tree. A failing subtree is restored to
// its state before the failing stage and reported; the other subtrees are
// still corrected.
func (c *Corrector) Correct(root *html.Box) {
	c.guard(StageText, root, func() { c.correctText(root) })
	c.guard(StageImages, root, func() { c.correctImages(root) })
	followingBlock := true
	c.guard(StageLineBreaks, root, func() { c.correctLineBreaks(root, &followingBlock) })
	c.guard(StageInlineParents, root, func() { c.correctInlineParents(root) })
	c.guard(StageBlockInInline, root, func() { c.correctBlockInsideInline(root) })
	c.guard(StageInlineParents, root, func() { c.correctInlineParents(root) })
}

// enter records b and its children before a stage changes them. Stages only
// modify the box they entered and its direct children.
func (c *Corrector) enter(stage string, b *html.Box) {
	c.record(b)
	for _, child := range b.Children {
		c.record(child)
	}
	if c.hook != nil {
		c.hook(stage, b)
	}
}

func (c *Corrector) record(x *html.Box) {
	st := boxState{
		box:      x,
		parent:   x.Parent,
		children: append([]*html.Box(nil), x.Children...),
		words:    x.Words,
		frag:     [3]bool{x.Fragmented, x.IsFirstFragment, x.IsLastFragment},
	}
	st.display, st.hasDisplay = x.StyleValue("display")
	st.height, st.hasHeight = x.StyleValue("height")
	c.journal = append(c.journal, st)
}

// guard runs fn and, if it panics, undoes what fn changed and reports the
// failure.
func (c *Corrector) guard(stage string, b *html.Box, fn func()) {
	mark := len(c.journal)
	defer func() {
		if r := recover(); r != nil {
			c.rollback(mark)
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			c.logger.Warn("correction failed", zap.String("stage", stage), zap.Stringer("box", b), zap.Error(err))
			c.reporter.ReportError(events.HtmlParsing, "Failed in "+stage, err)
		}
		if mark == 0 {
			clear(c.journal)
			c.journal = c.journal[:0]
		}
	}()
	fn()
}

// rollback restores the recorded boxes newest first, so a box recorded
// several times ends in its oldest state.
func (c *Corrector) rollback(mark int) {
	for i := len(c.journal) - 1; i >= mark; i-- {
		c.journal[i].restore()
	}
	clear(c.journal[mark:])
	c.journal = c.journal[:mark]
}

type boxState struct {
	box        *html.Box
	parent     *html.Box
	children   []*html.Box
	words      []*html.Word
	display    string
	height     string
	hasDisplay bool
	hasHeight  bool
	frag       [3]bool
}

func (st *boxState) restore() {
	x := st.box
	x.Parent = st.parent
	x.Children = st.children
	x.Words = st.words
	x.Fragmented, x.IsFirstFragment, x.IsLastFragment = st.frag[0], st.frag[1], st.frag[2]
	if st.hasDisplay {
		x.SetStyle("display", st.display)
	} else {
		x.DeleteStyle("display")
	}
	if st.hasHeight {
		x.SetStyle("height", st.height)
	} else {
		x.DeleteStyle("height")
	}
}

// correctImages wraps block images into an anonymous block and makes the
// image itself inline.
func (c *Corrector) correctImages(b *html.Box) {
	c.enter(StageImages, b)
	for i := len(b.Children) - 1; i >= 0; i-- {
		child := b.Children[i]
		if child.IsImage() && child.Display() == css.DisplayBlock {
			block := html.NewAnonymousBlock(b, i)
			block.AppendChild(child)
			child.SetStyle("display", css.DisplayInline)
			continue
		}
		c.guard(StageImages, child, func() { c.correctImages(child) })
	}
}

// correctLineBreaks turns every <br> into a block. A <br> that follows a
// block or another <br> with no words in between keeps an empty line's
// height; otherwise it only ends the current line.
func (c *Corrector) correctLineBreaks(b *html.Box, followingBlock *bool) {
	c.enter(StageLineBreaks, b)
	*followingBlock = *followingBlock || isBlockDisplay(b)
	for _, child := range b.Children {
		c.guard(StageLineBreaks, child, func() { c.correctLineBreaks(child, followingBlock) })
		*followingBlock = len(child.Words) == 0 && (*followingBlock || isBlockDisplay(child))
	}

	lastBr := -1
	for {
		var br *html.Box
		for i := 0; i < len(b.Children) && br == nil; i++ {
			child := b.Children[i]
			switch {
			case i > lastBr && child.IsBrElement():
				br = child
				lastBr = i
			case len(child.Words) > 0:
				*followingBlock = false
			case isBlockDisplay(child):
				*followingBlock = true
			}
		}
		if br == nil {
			return
		}
		br.SetStyle("display", css.DisplayBlock)
		if *followingBlock {
			br.SetStyle("height", "0.95em")
		} else {
			br.SetStyle("height", "0")
		}
	}
}

func isBlockDisplay(b *html.Box) bool {
	return b.Display() == css.DisplayBlock
}

// correctInlineParents wraps every run of inline children of a box with
// mixed children into an anonymous block.
func (c *Corrector) correctInlineParents(b *html.Box) {
	c.enter(StageInlineParents, b)
	if hasMixedChildren(b) {
		for i := 0; i < len(b.Children); i++ {
			if !b.Children[i].IsInline() {
				continue
			}
			block := html.NewAnonymousBlock(b, i)
			i++
			for i < len(b.Children) && b.Children[i].IsInline() {
				block.AppendChild(b.Children[i])
			}
		}
	}
	if !inlinesOnly(b) {
		for _, child := range b.Children {
			c.guard(StageInlineParents, child, func() { c.correctInlineParents(child) })
		}
	}
}

// hasMixedChildren reports whether b has both inline and block children.
func hasMixedChildren(b *html.Box) bool {
	var inline, block bool
	for _, child := range b.Children {
		if child.IsInline() {
			inline = true
		} else {
			block = true
		}
		if inline && block {
			return true
		}
	}
	return false
}

// inlinesOnly reports whether all direct children of b are inline.
func inlinesOnly(b *html.Box) bool {
	for _, child := range b.Children {
		if !child.IsInline() {
			return false
		}
	}
	return true
}

// inlinesOnlyDeep reports whether b and every descendant are inline.
func inlinesOnlyDeep(b *html.Box) bool {
	if !b.IsInline() {
		return false
	}
	for _, child := range b.Children {
		if !inlinesOnlyDeep(child) {
			return false
		}
	}
	return true
}
