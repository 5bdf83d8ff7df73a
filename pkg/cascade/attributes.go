package cascade

import (
	"strconv"
	"strings"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
)

// translateAttributes maps legacy presentational attributes to CSS
// properties. The mapping is per attribute and, for a few of them, per tag.
func (e *Engine) translateAttributes(b *html.Box) {
	props := css.Properties{}
	values := e.parser.Values()
	set := func(name, value string) { values.ParseProperty(props, name, value) }
	tag := b.Tag.Name

	for _, attr := range b.Tag.Attrs.All() {
		value := strings.TrimSpace(attr.Value)
		lower := strings.ToLower(value)
		switch attr.Name {
		case "align":
			switch lower {
			case "left", "center", "right", "justify":
				set("text-align", lower)
			default:
				set("vertical-align", lower)
			}
		case "background":
			set("background-image", "url("+value+")")
		case "bgcolor":
			set("background-color", lower)
		case "border":
			if tag == "table" && (value == "" || value == "0") {
				break
			}
			width := "1px"
			if value != "" {
				width = translateLength(value)
			}
			set("border-width", width)
			set("border-style", "solid")
		case "bordercolor":
			set("border-color", lower)
		case "cellspacing":
			set("border-spacing", translateLength(value))
		case "color":
			set("color", lower)
		case "dir":
			set("direction", lower)
		case "face":
			set("font-family", value)
		case "height":
			set("height", translateLength(value))
		case "hspace":
			set("margin-left", translateLength(value))
			set("margin-right", translateLength(value))
		case "nowrap":
			set("white-space", "nowrap")
		case "size":
			switch tag {
			case "hr":
				set("height", translateLength(value))
			case "font":
				if size, ok := fontSizeAttr(value); ok {
					set("font-size", size)
				}
			}
		case "valign":
			set("vertical-align", lower)
		case "vspace":
			set("margin-top", translateLength(value))
			set("margin-bottom", translateLength(value))
		case "width":
			set("width", translateLength(value))
		}
	}

	if tag == "td" || tag == "th" {
		if table := b.FindAncestor("table"); table != nil {
			if border, ok := table.Attr("border"); ok && strings.TrimSpace(border) != "0" && strings.TrimSpace(border) != "" {
				set("border-width", "1px")
				set("border-style", "solid")
			}
			if padding, ok := table.Attr("cellpadding"); ok && strings.TrimSpace(padding) != "" {
				set("padding", translateLength(strings.TrimSpace(padding)))
			}
		}
	}
	e.applyProperties(b, props)
}

// translateLength adds the px unit to bare attribute numbers.
func translateLength(value string) string {
	if css.HasLengthUnit(value) || strings.HasSuffix(value, "%") {
		return value
	}
	if _, ok := css.ParseNumber(value); ok {
		return value + "px"
	}
	return value
}

var fontSizes = []string{"x-small", "small", "medium", "large", "x-large", "xx-large", "xxx-large"}

// fontSizeAttr maps <font size> values 1-7 and +n/-n relative to 3.
func fontSizeAttr(value string) (string, bool) {
	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(strings.TrimPrefix(value, "+"))
	if err != nil {
		return "", false
	}
	if strings.HasPrefix(value, "+") || strings.HasPrefix(value, "-") {
		n += 3
	}
	if n < 1 {
		n = 1
	}
	if n > 7 {
		n = 7
	}
	return fontSizes[n-1], true
}
