package display

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/detroit-open-data/ccw-yoy/internal/yoy"
)

// Endpoints of the sequential fill scale, light yellow to dark red.
var (
	rampLow  = colorful.Color{R: 1.0, G: 1.0, B: 0.8}
	rampHigh = colorful.Color{R: 0.5, G: 0.0, B: 0.15}
)

// NoData fills areas with no post-pandemic incidents.
const NoData = "#d9d9d9"

// Ramp maps values in [Min, Max] onto the fill scale.
type Ramp struct {
	Min, Max float64
}

// RampFor builds the scale for a set of values. The upper bound is the fixed
// vmax for the field and type when there is one, otherwise the largest value.
func RampFor(values yoy.Values, field yoy.Field, typ yoy.AnalysisType) Ramp {
	if vmax, ok := Vmax(field, typ); ok {
		return Ramp{Min: 0, Max: vmax}
	}
	hi := 0.0
	for _, v := range values {
		if v > hi {
			hi = v
		}
	}
	if hi <= 0 {
		hi = 1
	}
	return Ramp{Min: 0, Max: hi}
}

// Fill returns the hex fill colour for v. Values outside the range are clamped.
func (r Ramp) Fill(v float64) string {
	t := 0.0
	if span := r.Max - r.Min; span > 0 {
		t = (v - r.Min) / span
	}
	if math.IsNaN(t) {
		t = 0
	}
	t = math.Max(0, math.Min(1, t))
	return rampLow.BlendLab(rampHigh, t).Clamped().Hex()
}

// Hex converts a label colour name to its hex code.
func Hex(name string) string {
	if name == Light {
		return "#ffffff"
	}
	return "#000000"
}
