package css

import (
	"strconv"
	"strings"
)

// FontQuery reports whether a font family can be used for rendering.
type FontQuery interface {
	FontExists(family string) bool
}

// ValueParser normalizes raw declaration values into longhand properties.
type ValueParser struct {
	fonts FontQuery
}

// NewValueParser creates a parser that resolves font-family lists through
// fonts. A nil query accepts the first listed family.
func NewValueParser(fonts FontQuery) *ValueParser {
	return &ValueParser{fonts: fonts}
}

var edgeShorthands = map[string]string{
	"margin":       "margin-%s",
	"padding":      "padding-%s",
	"border-width": "border-%s-width",
	"border-style": "border-%s-style",
	"border-color": "border-%s-color",
}

var keywordProperties = map[string]bool{
	"display": true, "position": true, "float": true, "clear": true,
	"text-align": true, "vertical-align": true, "white-space": true,
	"word-break": true, "visibility": true, "overflow": true,
	"text-transform": true, "font-style": true, "font-variant": true,
	"font-weight": true, "text-decoration": true, "direction": true,
	"list-style-type": true, "list-style-position": true,
	"border-collapse": true, "empty-cells": true, "background-repeat": true,
	"page-break-inside": true, "caption-side": true,
}

// ParseProperty validates value for the property name and writes the
// resulting longhand properties into props. Invalid values are dropped.
func (p *ValueParser) ParseProperty(props Properties, name, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = stripImportant(strings.TrimSpace(value))
	if name == "" || value == "" {
		return
	}
	if strings.EqualFold(value, Inherit) {
		for _, longhand := range longhandsOf(name) {
			props[longhand] = Inherit
		}
		return
	}

	if pattern, ok := edgeShorthands[name]; ok {
		p.parseEdges(props, name, pattern, value)
		return
	}

	switch name {
	case "width", "height", "min-width", "min-height":
		if isLengthOrAuto(value) {
			props[name] = strings.ToLower(value)
		}
	case "max-width", "max-height":
		if isLengthOrAuto(value) || strings.EqualFold(value, "none") {
			props[name] = strings.ToLower(value)
		}
	case "line-height":
		if IsValidLength(value) || strings.EqualFold(value, "normal") {
			props[name] = strings.ToLower(value)
		}
	case "margin-top", "margin-right", "margin-bottom", "margin-left",
		"padding-top", "padding-right", "padding-bottom", "padding-left",
		"text-indent", "top", "left", "right", "bottom":
		if isLengthOrAuto(value) {
			props[name] = strings.ToLower(value)
		}
	case "font-size":
		if IsValidLength(value) || IsFontSizeKeyword(value) {
			props[name] = strings.ToLower(value)
		}
	case "color", "background-color", "outline-color",
		"border-top-color", "border-right-color", "border-bottom-color", "border-left-color":
		if IsColorValid(value) {
			props[name] = value
		}
	case "border-top-width", "border-right-width", "border-bottom-width", "border-left-width":
		if IsBorderWidth(value) {
			props[name] = strings.ToLower(value)
		}
	case "border-top-style", "border-right-style", "border-bottom-style", "border-left-style":
		if IsBorderStyle(value) {
			props[name] = strings.ToLower(value)
		}
	case "border":
		for _, side := range Sides {
			p.parseBorderSide(props, side, value)
		}
	case "border-top":
		p.parseBorderSide(props, SideTop, value)
	case "border-right":
		p.parseBorderSide(props, SideRight, value)
	case "border-bottom":
		p.parseBorderSide(props, SideBottom, value)
	case "border-left":
		p.parseBorderSide(props, SideLeft, value)
	case "border-radius":
		p.parseBorderRadius(props, value)
	case "font":
		p.parseFont(props, value)
	case "font-family":
		props[name] = p.ResolveFontFamily(value)
	case "background-image":
		p.parseBackgroundImage(props, value)
	case "content":
		if u, ok := ExtractURL(value); ok {
			props[name] = u
		} else {
			props[name] = value
		}
	case "background":
		p.parseBackground(props, value)
	case "list-style":
		p.parseListStyle(props, value)
	case "list-style-image":
		if u, ok := ExtractURL(value); ok {
			props[name] = u
		} else {
			props[name] = strings.ToLower(value)
		}
	default:
		if keywordProperties[name] {
			props[name] = strings.ToLower(value)
		} else {
			props[name] = value
		}
	}
}

// longhandsOf lists the properties a shorthand expands to, or the name
// itself for a longhand.
func longhandsOf(name string) []string {
	if pattern, ok := edgeShorthands[name]; ok {
		out := make([]string, 0, 4)
		for _, side := range Sides {
			out = append(out, strings.Replace(pattern, "%s", side.String(), 1))
		}
		return out
	}
	switch name {
	case "border":
		var out []string
		for _, side := range Sides {
			s := side.String()
			out = append(out, "border-"+s+"-width", "border-"+s+"-style", "border-"+s+"-color")
		}
		return out
	case "border-top", "border-right", "border-bottom", "border-left":
		return []string{name + "-width", name + "-style", name + "-color"}
	case "border-radius":
		return []string{"border-top-left-radius", "border-top-right-radius",
			"border-bottom-right-radius", "border-bottom-left-radius"}
	case "font":
		return []string{"font-style", "font-variant", "font-weight", "font-size", "line-height", "font-family"}
	case "background":
		return []string{"background-color", "background-image", "background-repeat", "background-position"}
	case "list-style":
		return []string{"list-style-type", "list-style-position", "list-style-image"}
	}
	return []string{name}
}

func stripImportant(value string) string {
	lower := strings.ToLower(value)
	if i := strings.Index(lower, "!important"); i >= 0 {
		return strings.TrimSpace(value[:i])
	}
	return value
}

func isLengthOrAuto(value string) bool {
	return strings.EqualFold(value, "auto") || IsValidLength(value)
}

// SplitValues splits a property value on whitespace, keeping parenthesized
// groups and quoted strings intact.
func SplitValues(value string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	var quote rune
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range value {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// splitTopLevel splits on sep outside parentheses and quotes.
func splitTopLevel(value string, sep rune) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	var quote rune
	for _, r := range value {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == sep && depth == 0:
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	return append(out, cur.String())
}

// expandEdges applies the 1-4 value rotation: one value sets every side, two
// set vertical and horizontal, three set top, horizontal and bottom, four
// set top, right, bottom and left.
func expandEdges(tokens []string) ([4]string, bool) {
	switch len(tokens) {
	case 1:
		return [4]string{tokens[0], tokens[0], tokens[0], tokens[0]}, true
	case 2:
		return [4]string{tokens[0], tokens[1], tokens[0], tokens[1]}, true
	case 3:
		return [4]string{tokens[0], tokens[1], tokens[2], tokens[1]}, true
	case 4:
		return [4]string{tokens[0], tokens[1], tokens[2], tokens[3]}, true
	}
	return [4]string{}, false
}

func (p *ValueParser) parseEdges(props Properties, name, pattern, value string) {
	tokens := SplitValues(value)
	var valid func(string) bool
	switch name {
	case "border-width":
		valid = IsBorderWidth
	case "border-style":
		valid = IsBorderStyle
	case "border-color":
		valid = IsColorValid
	default:
		valid = isLengthOrAuto
	}
	for _, t := range tokens {
		if !valid(t) {
			return
		}
	}
	edges, ok := expandEdges(tokens)
	if !ok {
		return
	}
	for i, side := range Sides {
		v := edges[i]
		if name != "border-color" {
			v = strings.ToLower(v)
		}
		props[strings.Replace(pattern, "%s", side.String(), 1)] = v
	}
}

func (p *ValueParser) parseBorderRadius(props Properties, value string) {
	// Elliptical radii keep only the horizontal part.
	if i := strings.IndexByte(value, '/'); i >= 0 {
		value = value[:i]
	}
	tokens := SplitValues(value)
	for _, t := range tokens {
		if !IsValidLength(t) {
			return
		}
	}
	r, ok := expandEdges(tokens)
	if !ok {
		return
	}
	// expandEdges yields top, right, bottom, left; for corners that maps to
	// top-left, top-right, bottom-right, bottom-left.
	props["border-top-left-radius"] = strings.ToLower(r[0])
	props["border-top-right-radius"] = strings.ToLower(r[1])
	props["border-bottom-right-radius"] = strings.ToLower(r[2])
	props["border-bottom-left-radius"] = strings.ToLower(r[3])
}

// parseBorderSide classifies each token as width, style or color. The first
// token of each kind wins and anything unrecognized is skipped.
func (p *ValueParser) parseBorderSide(props Properties, side Side, value string) {
	width, style, color := ParseBorderShorthand(value)
	prefix := "border-" + side.String()
	if width != "" {
		props[prefix+"-width"] = width
	}
	if style != "" {
		props[prefix+"-style"] = style
	}
	if color != "" {
		props[prefix+"-color"] = color
	}
}

// ParseBorderShorthand splits a border shorthand value into its width, style
// and color parts. Missing parts are empty.
func ParseBorderShorthand(value string) (width, style, color string) {
	for _, t := range SplitValues(value) {
		switch {
		case width == "" && IsBorderWidth(t):
			width = strings.ToLower(t)
		case style == "" && IsBorderStyle(t):
			style = strings.ToLower(t)
		case color == "" && IsColorValid(t):
			color = t
		}
	}
	return width, style, color
}

var fontWeights = map[string]bool{
	"bold": true, "bolder": true, "lighter": true,
	"100": true, "200": true, "300": true, "400": true, "500": true,
	"600": true, "700": true, "800": true, "900": true,
}

// parseFont expands the font shorthand. Style, variant and weight are taken
// from tokens left of the size, the family from everything right of it.
func (p *ValueParser) parseFont(props Properties, value string) {
	tokens := SplitValues(value)
	sizeIdx := -1
	for i, t := range tokens {
		head := t
		if j := strings.IndexByte(t, '/'); j > 0 {
			head = t[:j]
		}
		if IsFontSizeKeyword(head) || HasLengthUnit(head) {
			sizeIdx = i
			break
		}
	}
	if sizeIdx < 0 {
		return
	}

	fontStyle, variant, weight := "normal", "normal", "normal"
	for _, t := range tokens[:sizeIdx] {
		lt := strings.ToLower(t)
		switch {
		case lt == "italic" || lt == "oblique":
			fontStyle = lt
		case lt == "small-caps":
			variant = lt
		case fontWeights[lt]:
			weight = lt
		}
	}

	size := tokens[sizeIdx]
	lineHeight := "normal"
	rest := tokens[sizeIdx+1:]
	if j := strings.IndexByte(size, '/'); j > 0 {
		lineHeight = size[j+1:]
		size = size[:j]
	}
	if lineHeight == "" && len(rest) > 0 {
		lineHeight, rest = rest[0], rest[1:]
	} else if len(rest) > 0 && strings.HasPrefix(rest[0], "/") {
		lh := strings.TrimPrefix(rest[0], "/")
		rest = rest[1:]
		if lh == "" && len(rest) > 0 {
			lh, rest = rest[0], rest[1:]
		}
		lineHeight = lh
	}

	props["font-style"] = fontStyle
	props["font-variant"] = variant
	props["font-weight"] = weight
	props["font-size"] = strings.ToLower(size)
	if IsValidLength(lineHeight) || strings.EqualFold(lineHeight, "normal") {
		props["line-height"] = strings.ToLower(lineHeight)
	}
	if len(rest) > 0 {
		props["font-family"] = p.ResolveFontFamily(strings.Join(rest, " "))
	}
}

// ResolveFontFamily returns the first family of the comma separated list
// that the font query accepts, or "inherit" when none does.
func (p *ValueParser) ResolveFontFamily(value string) string {
	for _, family := range strings.Split(value, ",") {
		family = strings.Trim(strings.TrimSpace(family), `"'`)
		family = strings.TrimSpace(family)
		if family == "" {
			continue
		}
		if p.fonts == nil || p.fonts.FontExists(family) {
			return family
		}
	}
	return Inherit
}

// ExtractURL returns the contents of a url(...) wrapper with quotes and
// whitespace trimmed.
func ExtractURL(value string) (string, bool) {
	lower := strings.ToLower(value)
	start := strings.Index(lower, "url(")
	if start < 0 {
		return "", false
	}
	start += len("url(")
	end := strings.LastIndexByte(value, ')')
	if end < start {
		end = len(value)
	}
	u := strings.TrimSpace(value[start:end])
	u = strings.Trim(u, `"'`)
	return strings.TrimSpace(u), true
}

func (p *ValueParser) parseBackgroundImage(props Properties, value string) {
	if strings.Contains(strings.ToLower(value), "linear-gradient(") {
		props["background-gradient"] = value
		return
	}
	if u, ok := ExtractURL(value); ok {
		props["background-image"] = u
		return
	}
	props["background-image"] = value
}

var repeatKeywords = map[string]bool{
	"repeat": true, "no-repeat": true, "repeat-x": true, "repeat-y": true,
}

var positionKeywords = map[string]bool{
	"left": true, "right": true, "top": true, "bottom": true, "center": true,
}

func (p *ValueParser) parseBackground(props Properties, value string) {
	var position []string
	for _, t := range SplitValues(value) {
		lt := strings.ToLower(t)
		switch {
		case strings.HasPrefix(lt, "linear-gradient("):
			props["background-gradient"] = t
		case strings.HasPrefix(lt, "url("):
			u, _ := ExtractURL(t)
			props["background-image"] = u
		case lt == "none":
			props["background-image"] = "none"
		case repeatKeywords[lt]:
			props["background-repeat"] = lt
		case positionKeywords[lt] || IsValidLength(lt):
			position = append(position, lt)
		case lt == "scroll" || lt == "fixed":
			props["background-attachment"] = lt
		case IsColorValid(t):
			props["background-color"] = t
		}
	}
	if len(position) > 0 {
		props["background-position"] = strings.Join(position, " ")
	}
}

var listStyleTypes = map[string]bool{
	"disc": true, "circle": true, "square": true, "decimal": true,
	"decimal-leading-zero": true, "lower-roman": true, "upper-roman": true,
	"lower-alpha": true, "upper-alpha": true, "lower-latin": true,
	"upper-latin": true, "lower-greek": true, "armenian": true,
	"georgian": true, "none": true,
}

// IsListStyleType reports whether value is a supported list marker type.
func IsListStyleType(value string) bool {
	return listStyleTypes[strings.ToLower(value)]
}

func (p *ValueParser) parseListStyle(props Properties, value string) {
	for _, t := range SplitValues(value) {
		lt := strings.ToLower(t)
		switch {
		case strings.HasPrefix(lt, "url("):
			u, _ := ExtractURL(t)
			props["list-style-image"] = u
		case lt == "inside" || lt == "outside":
			props["list-style-position"] = lt
		case listStyleTypes[lt]:
			props["list-style-type"] = lt
		}
	}
}

// ParseFontWeight maps a font-weight value to whether it renders bold.
func ParseFontWeight(value string) bool {
	switch strings.ToLower(value) {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(value)
	return err == nil && n >= 600
}
