package layout

import (
	"strconv"
	"strings"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// List item numbering and marker text.

// listItemNumber returns the ordinal of the list item b: the start
// attribute of its list, advanced by one per preceding list item, with a
// value attribute restarting the count.
func listItemNumber(b *html.Box) int {
	n := 1
	parent := b.Parent
	for parent != nil && parent.Tag == nil {
		parent = parent.Parent
	}
	if parent != nil {
		if v, ok := parseIntAttr(parent, "start"); ok {
			n = v
		}
	}
	if b.Parent == nil {
		return n
	}
	first := true
	for _, sibling := range b.Parent.Children {
		if sibling.Display() != css.DisplayListItem {
			if sibling == b {
				break
			}
			continue
		}
		if !first {
			n++
		}
		first = false
		if v, ok := parseIntAttr(sibling, "value"); ok {
			n = v
		}
		if sibling == b {
			break
		}
	}
	return n
}

func parseIntAttr(b *html.Box, name string) (int, bool) {
	v, ok := b.Attr(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// markerText formats the marker of list item number n for a
// list-style-type. Unknown types fall back to a disc.
func markerText(listStyleType string, n int) string {
	switch listStyleType {
	case "none":
		return ""
	case "disc":
		return "•"
	case "circle":
		return "○"
	case "square":
		return "■"
	case "decimal":
		return strconv.Itoa(n) + "."
	case "decimal-leading-zero":
		if n >= 0 && n < 10 {
			return "0" + strconv.Itoa(n) + "."
		}
		return strconv.Itoa(n) + "."
	case "lower-alpha", "lower-latin":
		return alphaNumeral(n) + "."
	case "upper-alpha", "upper-latin":
		return strings.ToUpper(alphaNumeral(n)) + "."
	case "lower-roman":
		return romanNumeral(n) + "."
	case "upper-roman":
		return strings.ToUpper(romanNumeral(n)) + "."
	}
	return "•"
}

// alphaNumeral converts 1, 2, ... 26, 27 to a, b, ... z, aa.
func alphaNumeral(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('a' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

var romanTable = []struct {
	value int
	digit string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func romanNumeral(n int) string {
	if n <= 0 || n >= 4000 {
		return strconv.Itoa(n)
	}
	var sb strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			sb.WriteString(r.digit)
			n -= r.value
		}
	}
	return sb.String()
}

// prepareMarker computes the marker text of the list item b.
func (e *Engine) prepareMarker(b *html.Box) {
	b.Marker = markerText(b.Style("list-style-type"), listItemNumber(b))
}

// markerInside reports whether the marker of b takes room on its first
// line.
func markerInside(b *html.Box) bool {
	return b.Display() == css.DisplayListItem && b.Marker != "" && b.Style("list-style-position") == "inside"
}

// MarkerGap is the distance between an outside marker and the content, in
// ems.
const MarkerGap = 0.5
