package css

import (
	"strconv"
	"strings"
)

// DefaultFontSize is the computed size of the `medium` font-size keyword in
// pixels.
const DefaultFontSize = 16.0

var lengthUnits = []string{"px", "pt", "em", "ex", "in", "cm", "mm", "pc", "%"}

// splitLength separates the numeric part of a length from its unit. A bare
// number yields an empty unit.
func splitLength(value string) (float64, string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, "", false
	}
	unit := ""
	for _, u := range lengthUnits {
		if strings.HasSuffix(value, u) {
			unit = u
			break
		}
	}
	num, ok := ParseNumber(strings.TrimSpace(value[:len(value)-len(unit)]))
	if !ok {
		return 0, "", false
	}
	return num, unit, true
}

// ParseNumber parses a CSS number: an optional sign, decimal digits with an
// optional fraction and an optional exponent. Unlike strconv it rejects
// nan, inf, hex floats and underscores, and values out of float64 range.
func ParseNumber(s string) (float64, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for ; i < len(s) && isDigit(s[i]); i++ {
		}
		if i == start {
			return 0, false
		}
	}
	if i != len(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// IsValidLength reports whether value is a number optionally followed by one
// of the supported CSS units.
func IsValidLength(value string) bool {
	_, _, ok := splitLength(value)
	return ok
}

// HasLengthUnit reports whether value is a number followed by a unit. Border
// shorthand classification relies on it so that bare integers are not taken
// for widths.
func HasLengthUnit(value string) bool {
	_, unit, ok := splitLength(value)
	return ok && (unit != "" || strings.TrimSpace(value) == "0")
}

// ParseLength converts a CSS length to pixels. emSize is the font size used
// for em/ex units and percentBase the reference for percentages.
func ParseLength(value string, emSize, percentBase float64) (float64, bool) {
	num, unit, ok := splitLength(value)
	if !ok {
		return 0, false
	}
	switch unit {
	case "", "px":
		return num, true
	case "pt":
		return num * 96 / 72, true
	case "pc":
		return num * 16, true
	case "in":
		return num * 96, true
	case "cm":
		return num * 96 / 2.54, true
	case "mm":
		return num * 96 / 25.4, true
	case "em":
		return num * emSize, true
	case "ex":
		return num * emSize / 2, true
	case "%":
		return num * percentBase / 100, true
	}
	return 0, false
}

// IsPercentage reports whether value is a percentage length.
func IsPercentage(value string) bool {
	_, unit, ok := splitLength(value)
	return ok && unit == "%"
}

var fontSizeKeywords = map[string]float64{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    DefaultFontSize,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

// IsFontSizeKeyword reports whether value is an absolute or relative
// font-size keyword.
func IsFontSizeKeyword(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	_, ok := fontSizeKeywords[value]
	return ok || value == "smaller" || value == "larger"
}

// ParseFontSize resolves a font-size value against the parent's size.
func ParseFontSize(value string, parentSize float64) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if v, ok := fontSizeKeywords[value]; ok {
		return v
	}
	switch value {
	case "smaller":
		return parentSize / 1.2
	case "larger":
		return parentSize * 1.2
	}
	if v, ok := ParseLength(value, parentSize, parentSize); ok && v > 0 {
		return v
	}
	return parentSize
}

// ParseBorderWidth resolves a border width keyword or length.
func ParseBorderWidth(value string, emSize float64) float64 {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "thin":
		return 1
	case "medium", "":
		return 2
	case "thick":
		return 4
	}
	v, ok := ParseLength(value, emSize, 0)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// IsBorderWidth reports whether value is usable as a border width.
func IsBorderWidth(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "thin", "medium", "thick":
		return true
	}
	return HasLengthUnit(value)
}
