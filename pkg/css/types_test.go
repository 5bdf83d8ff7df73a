package css

import (
	"math"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"red", Color{255, 0, 0, 255}, true},
		{"Navy", Color{0, 0, 128, 255}, true},
		{"transparent", Transparent, true},
		{"#f00", Color{255, 0, 0, 255}, true},
		{"#00ff00", Color{0, 255, 0, 255}, true},
		{"#0000ff80", Color{0, 0, 255, 128}, true},
		{"rgb(1, 2, 3)", Color{1, 2, 3, 255}, true},
		{"rgb(100%, 0%, 0%)", Color{255, 0, 0, 255}, true},
		{"rgba(0,0,0,0)", Color{0, 0, 0, 0}, true},
		{"rgb(1, 2)", Color{}, false},
		{"#12", Color{}, false},
		{"notacolor", Color{}, false},
		{"", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in          string
		em, percent float64
		want        float64
		ok          bool
	}{
		{"10px", 16, 0, 10, true},
		{"10", 16, 0, 10, true},
		{"12pt", 16, 0, 16, true},
		{"1in", 16, 0, 96, true},
		{"2.54cm", 16, 0, 96, true},
		{"25.4mm", 16, 0, 96, true},
		{"1pc", 16, 0, 16, true},
		{"2em", 10, 0, 20, true},
		{"2ex", 10, 0, 10, true},
		{"50%", 16, 200, 100, true},
		{"-4px", 16, 0, -4, true},
		{"auto", 16, 0, 0, false},
		{"px", 16, 0, 0, false},
		{"inf", 16, 0, 0, false},
		{"-Infinity", 16, 0, 0, false},
		{"nanpx", 16, 0, 0, false},
		{"0x1p4px", 16, 0, 0, false},
		{"1_0px", 16, 0, 0, false},
		{"1e999px", 16, 0, 0, false},
		{"1e1px", 16, 0, 10, true},
		{".5em", 16, 0, 8, true},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.in, tt.em, tt.percent)
		if ok != tt.ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseLength(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseNumber(t *testing.T) {
	valid := map[string]float64{"0": 0, "+1.5": 1.5, "-.25": -0.25, "3.": 3, "2e2": 200, "1E-1": 0.1}
	for in, want := range valid {
		got, ok := ParseNumber(in)
		if !ok || math.Abs(got-want) > 1e-12 {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "+", ".", "e5", "1e", "1e+", "nan", "NaN", "inf", "+Inf", "infinity", "0x10", "0x1p-2", "1_000", "1.2.3", " 1", "1 "} {
		if got, ok := ParseNumber(in); ok {
			t.Errorf("ParseNumber(%q) = %v, want rejection", in, got)
		}
	}
}

func TestHasLengthUnit(t *testing.T) {
	for in, want := range map[string]bool{"1px": true, "0": true, "3": false, "2em": true, "solid": false} {
		if got := HasLengthUnit(in); got != want {
			t.Errorf("HasLengthUnit(%q) = %v", in, got)
		}
	}
}

func TestParseFontSize(t *testing.T) {
	if got := ParseFontSize("medium", 10); got != DefaultFontSize {
		t.Errorf("medium = %v", got)
	}
	if got := ParseFontSize("2em", 10); got != 20 {
		t.Errorf("2em = %v", got)
	}
	if got := ParseFontSize("larger", 10); math.Abs(got-12) > 1e-9 {
		t.Errorf("larger = %v", got)
	}
	if got := ParseFontSize("bogus", 11); got != 11 {
		t.Errorf("bogus = %v", got)
	}
}

func TestParseBorderWidth(t *testing.T) {
	for in, want := range map[string]float64{"thin": 1, "medium": 2, "thick": 4, "3px": 3, "": 2, "x": 0} {
		if got := ParseBorderWidth(in, 16); got != want {
			t.Errorf("ParseBorderWidth(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRectUnion(t *testing.T) {
	r := RectF{X: 10, Y: 10, Width: 10, Height: 10}.Union(RectF{X: 0, Y: 15, Width: 5, Height: 20})
	if r != (RectF{X: 0, Y: 10, Width: 20, Height: 25}) {
		t.Errorf("union = %+v", r)
	}
	if !r.Contains(PointF{X: 1, Y: 11}) || r.Contains(PointF{X: 20, Y: 11}) {
		t.Errorf("contains wrong for %+v", r)
	}
}

func TestLinearGradient(t *testing.T) {
	g, ok := ParseLinearGradient("linear-gradient(to right, red, rgb(0, 128, 0), blue)")
	if !ok {
		t.Fatal("gradient not parsed")
	}
	if g.Angle != 90 || len(g.Stops) != 3 {
		t.Fatalf("got angle %v with %d stops", g.Angle, len(g.Stops))
	}
	stops := g.Resolve(100, 50)
	for i, want := range []float64{0, 0.5, 1} {
		if math.Abs(stops[i].Offset-want) > 1e-9 {
			t.Errorf("stop %d offset = %v, want %v", i, stops[i].Offset, want)
		}
	}
	if g.Stops[1].Offset != -1 {
		t.Error("Resolve must not modify the parsed stops")
	}

	g, ok = ParseLinearGradient("linear-gradient(90deg, red 0, blue 50px)")
	if !ok {
		t.Fatal("gradient not parsed")
	}
	stops = g.Resolve(100, 40)
	if math.Abs(stops[1].Offset-0.5) > 1e-6 {
		t.Errorf("pixel stop offset = %v", stops[1].Offset)
	}

	if _, ok := ParseLinearGradient("linear-gradient(red)"); ok {
		t.Error("single stop accepted")
	}
	if _, ok := ParseLinearGradient("radial-gradient(red, blue)"); ok {
		t.Error("radial gradient accepted")
	}
}
