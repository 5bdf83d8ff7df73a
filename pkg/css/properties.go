package css

import (
	"sort"
	"strings"
)

// Inherit is the keyword that resolves a property to the parent's computed
// value.
const Inherit = "inherit"

// Properties maps longhand CSS property names to value strings.
type Properties map[string]string

// Get returns the stored value for name.
func (p Properties) Get(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Set stores value under name.
func (p Properties) Set(name, value string) {
	p[name] = value
}

// Clone returns an independent copy.
func (p Properties) Clone() Properties {
	c := make(Properties, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Names returns the property names in sorted order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equals reports whether both maps hold the same pairs.
func (p Properties) Equals(o Properties) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		if ov, ok := o[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the map as a declaration list, sorted by name.
func (p Properties) String() string {
	var b strings.Builder
	for i, name := range p.Names() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(p[name])
		b.WriteByte(';')
	}
	return b.String()
}

// Display values.
const (
	DisplayInline           = "inline"
	DisplayInlineBlock      = "inline-block"
	DisplayBlock            = "block"
	DisplayListItem         = "list-item"
	DisplayTable            = "table"
	DisplayTableRow         = "table-row"
	DisplayTableRowGroup    = "table-row-group"
	DisplayTableHeaderGroup = "table-header-group"
	DisplayTableFooterGroup = "table-footer-group"
	DisplayTableColumn      = "table-column"
	DisplayTableColumnGroup = "table-column-group"
	DisplayTableCell        = "table-cell"
	DisplayTableCaption     = "table-caption"
	DisplayNone             = "none"
)

var displayValues = map[string]bool{
	DisplayInline: true, DisplayInlineBlock: true, DisplayBlock: true,
	DisplayListItem: true, DisplayTable: true, DisplayTableRow: true,
	DisplayTableRowGroup: true, DisplayTableHeaderGroup: true,
	DisplayTableFooterGroup: true, DisplayTableColumn: true,
	DisplayTableColumnGroup: true, DisplayTableCell: true,
	DisplayTableCaption: true, DisplayNone: true,
}

// IsDisplayValue reports whether value belongs to the supported display
// enumeration.
func IsDisplayValue(value string) bool {
	return displayValues[value]
}

// Border styles.
var borderStyles = map[string]bool{
	"none": true, "hidden": true, "solid": true, "dotted": true, "dashed": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// IsBorderStyle reports whether value is a border-style keyword.
func IsBorderStyle(value string) bool {
	return borderStyles[strings.ToLower(value)]
}

// inherited lists the properties a box takes from its parent before any rule
// applies.
var inherited = map[string]bool{
	"color":               true,
	"font-family":         true,
	"font-size":           true,
	"font-style":          true,
	"font-variant":        true,
	"font-weight":         true,
	"line-height":         true,
	"letter-spacing":      true,
	"word-spacing":        true,
	"text-align":          true,
	"text-indent":         true,
	"text-transform":      true,
	"white-space":         true,
	"word-break":          true,
	"list-style-type":     true,
	"list-style-position": true,
	"list-style-image":    true,
	"visibility":          true,
	"direction":           true,
	"border-collapse":     true,
	"border-spacing":      true,
	"empty-cells":         true,
	"cursor":              true,
	"caption-side":        true,
}

// IsInherited reports whether the property inherits by default.
func IsInherited(name string) bool {
	return inherited[name]
}

// InheritedNames returns the inherited property names in sorted order.
func InheritedNames() []string {
	names := make([]string, 0, len(inherited))
	for k := range inherited {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var initialValues = map[string]string{
	"display":             DisplayInline,
	"color":               "black",
	"background-color":    "transparent",
	"background-image":    "none",
	"background-repeat":   "repeat",
	"background-position": "0% 0%",
	"font-family":         "serif",
	"font-size":           "medium",
	"font-style":          "normal",
	"font-variant":        "normal",
	"font-weight":         "normal",
	"line-height":         "normal",
	"text-align":          "left",
	"text-decoration":     "none",
	"text-indent":         "0",
	"text-transform":      "none",
	"vertical-align":      "baseline",
	"white-space":         "normal",
	"word-break":          "normal",
	"word-spacing":        "normal",
	"letter-spacing":      "normal",
	"visibility":          "visible",
	"direction":           "ltr",
	"width":               "auto",
	"height":              "auto",
	"min-width":           "0",
	"min-height":          "0",
	"max-width":           "none",
	"max-height":          "none",
	"position":            "static",
	"float":               "none",
	"overflow":            "visible",
	"list-style-type":     "disc",
	"list-style-position": "outside",
	"list-style-image":    "none",
	"border-collapse":     "separate",
	"border-spacing":      "0",
	"empty-cells":         "show",
	"caption-side":        "top",
	"cursor":              "auto",
	"content":             "normal",
	"page-break-inside":   "auto",
}

func init() {
	for _, side := range Sides {
		s := side.String()
		initialValues["margin-"+s] = "0"
		initialValues["padding-"+s] = "0"
		initialValues["border-"+s+"-width"] = "medium"
		initialValues["border-"+s+"-style"] = "none"
		initialValues["border-"+s+"-color"] = "black"
	}
	for _, corner := range []string{"top-left", "top-right", "bottom-right", "bottom-left"} {
		initialValues["border-"+corner+"-radius"] = "0"
	}
}

// InitialValue returns the CSS initial value for a longhand property, or ""
// when the property is unknown.
func InitialValue(name string) string {
	return initialValues[name]
}
