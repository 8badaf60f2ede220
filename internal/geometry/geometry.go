// Package geometry holds the pure plane routines used for hit-testing, erasing,
// canvas re-entry clipping and stroke simplification.
//
// Every function is stateless and safe to call from any goroutine.
package geometry

import "math"

// Point is an immutable (x, y) pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point   { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point   { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Eq(q Point) bool     { return p.X == q.X && p.Y == q.Y }
func (p Point) Floor() Point        { return Point{math.Floor(p.X), math.Floor(p.Y)} }
func (p Point) DistanceSquared(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// ScaleAround scales p by (sx, sy) keeping fixed in place.
func (p Point) ScaleAround(sx, sy float64, fixed Point) Point {
	return Point{
		X: fixed.X + (p.X-fixed.X)*sx,
		Y: fixed.Y + (p.Y-fixed.Y)*sy,
	}
}

// SegmentsIntersect reports whether segment a1-a2 crosses segment b1-b2.
// Both interpolation parameters must lie in [0,1]; parallel segments never intersect.
func SegmentsIntersect(a1, a2, b1, b2 Point) bool {
	_, ok := segmentIntersection(a1, a2, b1, b2)
	return ok
}

func segmentIntersection(a1, a2, b1, b2 Point) (Point, bool) {
	d := (b2.Y-b1.Y)*(a2.X-a1.X) - (b2.X-b1.X)*(a2.Y-a1.Y)
	if d == 0 {
		return Point{}, false
	}
	ua := ((b2.X-b1.X)*(a1.Y-b1.Y) - (b2.Y-b1.Y)*(a1.X-b1.X)) / d
	ub := ((a2.X-a1.X)*(a1.Y-b1.Y) - (a2.Y-a1.Y)*(a1.X-b1.X)) / d
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return Point{}, false
	}
	return Point{
		X: a1.X + ua*(a2.X-a1.X),
		Y: a1.Y + ua*(a2.Y-a1.Y),
	}, true
}

// DistanceSquaredToSegment returns the squared distance from p to segment v-w.
// A degenerate segment (v == w) yields the squared distance to v.
func DistanceSquaredToSegment(p, v, w Point) float64 {
	l2 := v.DistanceSquared(w)
	if l2 == 0 {
		return p.DistanceSquared(v)
	}
	t := ((p.X-v.X)*(w.X-v.X) + (p.Y-v.Y)*(w.Y-v.Y)) / l2
	t = math.Max(0, math.Min(1, t))
	return p.DistanceSquared(Point{
		X: v.X + t*(w.X-v.X),
		Y: v.Y + t*(w.Y-v.Y),
	})
}

// SegmentRectIntersection tests segment a-b against the edges of r in the
// order top, bottom, left, right and returns the first hit.
func SegmentRectIntersection(a, b Point, r Rect) (Point, bool) {
	tl, tr, bl, br := r.TopLeft(), r.TopRight(), r.BottomLeft(), r.BottomRight()
	edges := [4][2]Point{
		{tl, tr},
		{bl, br},
		{tl, bl},
		{tr, br},
	}
	for _, e := range edges {
		if p, ok := segmentIntersection(a, b, e[0], e[1]); ok {
			return p, true
		}
	}
	return Point{}, false
}

// Collinear reports whether p2 lies exactly on segment p1-p3.
// No tolerance is applied.
func Collinear(p1, p2, p3 Point) bool {
	return DistanceSquaredToSegment(p2, p1, p3) == 0
}
