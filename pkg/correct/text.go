package correct

import (
	"strings"
	"unicode"
	"unicode/utf8"

	nethtml "golang.org/x/net/html"

	"htmlbox/pkg/html"
)

// correctText removes whitespace-only text boxes that carry no meaning and
// splits the remaining text boxes into words.
func (c *Corrector) correctText(b *html.Box) {
	c.enter(StageText, b)
	if tag := b.TagName(); tag == "style" || tag == "script" {
		return
	}
	for i := len(b.Children) - 1; i >= 0; i-- {
		child := b.Children[i]
		if !child.HasText() {
			c.guard(StageText, child, func() { c.correctText(child) })
			continue
		}
		if keepTextBox(b, i) {
			SegmentWords(child)
		} else {
			b.RemoveChild(child)
		}
	}
}

// keepTextBox decides whether the text child at index i of b survives.
func keepTextBox(b *html.Box, i int) bool {
	child := b.Children[i]
	n := len(b.Children)
	switch {
	case !child.IsWhiteSpace():
		return true
	case isPreserved(child.Style("white-space")):
		return true
	case n == 1:
		return true
	case i > 0 && i < n-1 && b.Children[i-1].IsInline() && b.Children[i+1].IsInline():
		return true
	case i == 0 && n > 1 && b.Children[1].IsInline() && b.IsInline():
		return true
	case i == n-1 && n > 1 && b.Children[i-1].IsInline() && b.IsInline():
		return true
	}
	return false
}

func isPreserved(whiteSpace string) bool {
	return whiteSpace == "pre" || whiteSpace == "pre-wrap"
}

func keepsLineBreaks(whiteSpace string) bool {
	return isPreserved(whiteSpace) || whiteSpace == "pre-line"
}

// SegmentWords decodes entities in the box text and splits it into words.
// Whitespace runs collapse into the HasSpaceBefore/HasSpaceAfter flags
// unless white-space preserves them, in which case they become space words.
// A whitespace-only box that is not preserved becomes a single space word.
func SegmentWords(b *html.Box) {
	text := nethtml.UnescapeString(b.Text)
	ws := b.Style("white-space")
	preserve := isPreserved(ws)
	breaks := keepsLineBreaks(ws)
	breakAll := b.Style("word-break") == "break-all"
	transform := b.Style("text-transform")

	b.Words = nil
	if !preserve && isCollapsible(text, breaks) {
		b.Words = []*html.Word{{Text: " ", Owner: b, IsSpace: true}}
		return
	}
	if preserve {
		text = strings.ReplaceAll(text, "\t", "    ")
	}

	var words []*html.Word
	pendingSpace := false
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '\r' && breaks:
			i += size
		case r == '\n' && breaks:
			words = append(words, &html.Word{Owner: b, IsLineBreak: true})
			pendingSpace = false
			i += size
		case isSpace(r):
			start := i
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if !isSpace(r) || (breaks && (r == '\n' || r == '\r')) {
					break
				}
				i += size
			}
			if preserve {
				words = append(words, &html.Word{Text: text[start:i], Owner: b, IsSpace: true})
				continue
			}
			pendingSpace = true
			if len(words) > 0 && !words[len(words)-1].IsLineBreak {
				words[len(words)-1].HasSpaceAfter = true
			}
		default:
			start := i
			for i < len(text) {
				r, size := utf8.DecodeRuneInString(text[i:])
				if isSpace(r) || (breaks && (r == '\n' || r == '\r')) {
					break
				}
				i += size
			}
			for j, part := range splitWord(applyTransform(text[start:i], transform), breakAll) {
				w := &html.Word{Text: part, Owner: b}
				if j == 0 {
					w.HasSpaceBefore = pendingSpace
				}
				words = append(words, w)
			}
			pendingSpace = false
		}
	}
	b.Words = words
}

// isSpace matches the collapsible white space characters. No-break spaces
// are part of words.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func isCollapsible(text string, keepBreaks bool) bool {
	for _, r := range text {
		if !isSpace(r) || (keepBreaks && r == '\n') {
			return false
		}
	}
	return true
}

// splitWord breaks a run of non-space text at its break opportunities:
// after hyphens, around CJK ideographs and, for break-all, between all
// characters.
func splitWord(s string, breakAll bool) []string {
	var parts []string
	start := 0
	prevCJK := false
	for i, r := range s {
		cjk := isCJK(r)
		if i > start && (breakAll || cjk || prevCJK) {
			parts = append(parts, s[start:i])
			start = i
		}
		prevCJK = cjk
		if r == '-' {
			end := i + utf8.RuneLen(r)
			if end < len(s) {
				parts = append(parts, s[start:end])
				start = end
			}
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

func applyTransform(s, transform string) string {
	switch transform {
	case "uppercase":
		return strings.ToUpper(s)
	case "lowercase":
		return strings.ToLower(s)
	case "capitalize":
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return s
		}
		return string(unicode.ToTitle(r)) + s[size:]
	}
	return s
}
