package render

import (
	"math"

	"SketchBoard/internal/state"
)

type segment struct{ a, b state.Vertex }

// dashSegments cuts a polyline into the visible pieces of an on/off dash
// pattern. The pattern carries on across vertices. An empty or all-zero
// pattern yields the polyline's own segments.
func dashSegments(vs []state.Vertex, dash []float64) []segment {
	var out []segment
	total := 0.0
	for _, d := range dash {
		total += math.Max(d, 0)
	}
	if total == 0 {
		for i := 1; i < len(vs); i++ {
			out = append(out, segment{vs[i-1], vs[i]})
		}
		return out
	}
	if len(dash)%2 == 1 {
		dash = append(append([]float64(nil), dash...), dash...)
	}

	idx, left, on := 0, dash[0], true
	for i := 1; i < len(vs); i++ {
		a, b := vs[i-1], vs[i]
		length := math.Sqrt(a.DistanceSquared(b))
		pos := 0.0
		for pos < length {
			step := math.Min(left, length-pos)
			if on && step > 0 {
				out = append(out, segment{lerp(a, b, pos/length), lerp(a, b, (pos+step)/length)})
			}
			pos += step
			left -= step
			if left <= 0 {
				idx = (idx + 1) % len(dash)
				left, on = math.Max(dash[idx], 0), !on
			}
		}
	}
	return out
}

func lerp(a, b state.Vertex, t float64) state.Vertex {
	return a.Add(b.Sub(a).Mul(t))
}
