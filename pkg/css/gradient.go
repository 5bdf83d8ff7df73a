package css

import (
	"math"
	"strings"
)

// ColorStop is one color of a gradient. Offset is a fraction of the gradient
// line, or negative when the stop carried no position.
type ColorStop struct {
	Color  Color
	Offset float64
	pixels bool
}

// Gradient is a parsed linear-gradient() value.
type Gradient struct {
	// Angle in degrees, CSS convention: 0 points up, 90 to the right.
	Angle float64
	Stops []ColorStop
}

var gradientSides = map[string]float64{
	"to top":          0,
	"to right":        90,
	"to bottom":       180,
	"to left":         270,
	"to top right":    45,
	"to right top":    45,
	"to bottom right": 135,
	"to right bottom": 135,
	"to bottom left":  225,
	"to left bottom":  225,
	"to top left":     315,
	"to left top":     315,
}

// ParseLinearGradient parses values such as
// "linear-gradient(to right, blue 0, red 50%, green)".
func ParseLinearGradient(value string) (*Gradient, bool) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	start := strings.Index(lower, "linear-gradient(")
	if start < 0 || !strings.HasSuffix(value, ")") {
		return nil, false
	}
	body := value[start+len("linear-gradient(") : len(value)-1]
	parts := splitTopLevel(body, ',')

	g := &Gradient{Angle: 180}
	first := strings.ToLower(strings.TrimSpace(parts[0]))
	if a, ok := gradientSides[strings.Join(strings.Fields(first), " ")]; ok {
		g.Angle = a
		parts = parts[1:]
	} else if strings.HasSuffix(first, "deg") {
		a, ok := ParseNumber(strings.TrimSuffix(first, "deg"))
		if !ok {
			return nil, false
		}
		g.Angle = a
		parts = parts[1:]
	}

	for _, part := range parts {
		stop, ok := parseColorStop(strings.TrimSpace(part))
		if !ok {
			return nil, false
		}
		g.Stops = append(g.Stops, stop)
	}
	if len(g.Stops) < 2 {
		return nil, false
	}
	return g, true
}

func parseColorStop(s string) (ColorStop, bool) {
	tokens := SplitValues(s)
	if len(tokens) == 0 {
		return ColorStop{}, false
	}
	c, ok := ParseColor(tokens[0])
	if !ok {
		return ColorStop{}, false
	}
	stop := ColorStop{Color: c, Offset: -1}
	if len(tokens) > 1 {
		pos := tokens[1]
		if IsPercentage(pos) {
			v, _ := ParseLength(pos, DefaultFontSize, 1)
			stop.Offset = v
		} else if v, ok := ParseLength(pos, DefaultFontSize, 0); ok {
			stop.Offset = v
			stop.pixels = true
		}
	}
	return stop, true
}

// Length returns the length of the gradient line across a width x height box.
func (g *Gradient) Length(width, height float64) float64 {
	rad := g.Angle * math.Pi / 180
	return math.Abs(width*math.Sin(rad)) + math.Abs(height*math.Cos(rad))
}

// Resolve returns the stops with every offset expressed as a fraction of the
// gradient line for the given box size. Missing offsets are spread evenly
// between their positioned neighbours.
func (g *Gradient) Resolve(width, height float64) []ColorStop {
	stops := make([]ColorStop, len(g.Stops))
	copy(stops, g.Stops)
	length := g.Length(width, height)
	for i := range stops {
		if stops[i].pixels {
			if length > 0 {
				stops[i].Offset /= length
			} else {
				stops[i].Offset = 0
			}
			stops[i].pixels = false
		}
	}
	if stops[0].Offset < 0 {
		stops[0].Offset = 0
	}
	if last := len(stops) - 1; stops[last].Offset < 0 {
		stops[last].Offset = 1
	}
	for i := 1; i < len(stops)-1; i++ {
		if stops[i].Offset >= 0 {
			continue
		}
		next := i + 1
		for stops[next].Offset < 0 {
			next++
		}
		prev := stops[i-1].Offset
		step := (stops[next].Offset - prev) / float64(next-i+1)
		for j := i; j < next; j++ {
			stops[j].Offset = prev + step*float64(j-i+1)
		}
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Offset < stops[i-1].Offset {
			stops[i].Offset = stops[i-1].Offset
		}
	}
	return stops
}
