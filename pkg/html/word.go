package html

import "htmlbox/pkg/css"

// Word is the unit of inline layout: a run of text, a preserved space or a
// forced line break.
type Word struct {
	Text  string
	Owner *Box

	IsSpace     bool
	IsLineBreak bool

	HasSpaceBefore bool
	HasSpaceAfter  bool

	// Rect is set by layout.
	Rect css.RectF
}

// NewWord creates a text word owned by owner.
func NewWord(owner *Box, text string, spaceBefore, spaceAfter bool) *Word {
	return &Word{Text: text, Owner: owner, HasSpaceBefore: spaceBefore, HasSpaceAfter: spaceAfter}
}

// LineBox is one line of an inline formatting context.
type LineBox struct {
	Owner *Box
	Words []*Word
	// Atoms are images and inline blocks placed on the line.
	Atoms []*Box
	Rect  css.RectF
	// Rects maps every inline box on the line to the area it covers there.
	Rects    map[*Box]css.RectF
	Baseline float64
}

// NewLineBox creates an empty line owned by a block container and registers
// it there.
func NewLineBox(owner *Box) *LineBox {
	l := &LineBox{Owner: owner, Rects: map[*Box]css.RectF{}}
	owner.LineBoxes = append(owner.LineBoxes, l)
	return l
}

// Extend grows the rectangle of box on this line to cover r.
func (l *LineBox) Extend(box *Box, r css.RectF) {
	if cur, ok := l.Rects[box]; ok {
		l.Rects[box] = cur.Union(r)
		return
	}
	l.Rects[box] = r
}

// IsEmpty reports whether nothing was placed on the line.
func (l *LineBox) IsEmpty() bool {
	return len(l.Words) == 0 && len(l.Atoms) == 0
}
