package css

import (
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor resolves a CSS color value: a palette name, #rgb, #rgba,
// #rrggbb, #rrggbbaa, rgb() or rgba(). The boolean is false for anything
// else.
func ParseColor(value string) (Color, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Color{}, false
	}
	switch {
	case value == "transparent":
		return Transparent, true
	case strings.HasPrefix(value, "#"):
		return parseHexColor(value[1:])
	case strings.HasPrefix(value, "rgba(") || strings.HasPrefix(value, "rgb("):
		return parseRGBFunction(value)
	}
	if c, ok := colornames.Map[value]; ok {
		return Color{c.R, c.G, c.B, c.A}, true
	}
	return Color{}, false
}

// IsColorValid reports whether ParseColor accepts value.
func IsColorValid(value string) bool {
	_, ok := ParseColor(value)
	return ok
}

func parseHexColor(hex string) (Color, bool) {
	expand := func(s string) string {
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			b.WriteByte(s[i])
			b.WriteByte(s[i])
		}
		return b.String()
	}
	switch len(hex) {
	case 3, 4:
		hex = expand(hex)
	case 6, 8:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(hex) == 6 {
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

func parseRGBFunction(value string) (Color, bool) {
	open := strings.IndexByte(value, '(')
	if open < 0 || !strings.HasSuffix(value, ")") {
		return Color{}, false
	}
	args := strings.FieldsFunc(value[open+1:len(value)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/'
	})
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var channels [3]uint8
	for i := 0; i < 3; i++ {
		c, ok := parseChannel(args[i])
		if !ok {
			return Color{}, false
		}
		channels[i] = c
	}
	alpha := uint8(255)
	if len(args) == 4 {
		a, ok := parseAlpha(args[3])
		if !ok {
			return Color{}, false
		}
		alpha = a
	}
	return Color{channels[0], channels[1], channels[2], alpha}, true
}

func parseChannel(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		f, ok := ParseNumber(strings.TrimSuffix(s, "%"))
		if !ok {
			return 0, false
		}
		return clampByte(f * 255 / 100), true
	}
	f, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	return clampByte(f), true
}

func parseAlpha(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		f, ok := ParseNumber(strings.TrimSuffix(s, "%"))
		if !ok {
			return 0, false
		}
		return clampByte(f * 255 / 100), true
	}
	f, ok := ParseNumber(s)
	if !ok {
		return 0, false
	}
	return clampByte(f * 255), true
}

func clampByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	}
	return uint8(f + 0.5)
}
