package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0)))
	assert.False(t, SegmentsIntersect(Pt(0, 0), Pt(10, 0), Pt(0, 5), Pt(10, 5)), "parallel")
	assert.False(t, SegmentsIntersect(Pt(0, 0), Pt(1, 1), Pt(5, 0), Pt(6, -3)), "outside [0,1]")
	assert.True(t, SegmentsIntersect(Pt(0, 0), Pt(10, 0), Pt(10, -5), Pt(10, 5)), "touching endpoint")
}

func TestDistanceSquaredToSegment(t *testing.T) {
	assert.Equal(t, 25.0, DistanceSquaredToSegment(Pt(5, 5), Pt(0, 0), Pt(10, 0)))
	// projection clamped to the w end
	assert.Equal(t, 25.0, DistanceSquaredToSegment(Pt(13, 4), Pt(0, 0), Pt(10, 0)))
	// degenerate segment
	assert.Equal(t, 2.0, DistanceSquaredToSegment(Pt(1, 1), Pt(0, 0), Pt(0, 0)))
}

func TestSegmentRectIntersectionEdgeOrder(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	// crosses top and left; top is tested first
	p, ok := SegmentRectIntersection(Pt(-10, -10), Pt(50, 50), r)
	assert.True(t, ok)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)

	p, ok = SegmentRectIntersection(Pt(50, 150), Pt(50, 50), r)
	assert.True(t, ok)
	assert.Equal(t, Pt(50, 100), p)

	p, ok = SegmentRectIntersection(Pt(150, 20), Pt(50, 20), r)
	assert.True(t, ok)
	assert.Equal(t, Pt(100, 20), p)

	_, ok = SegmentRectIntersection(Pt(10, 10), Pt(20, 20), r)
	assert.False(t, ok, "segment fully inside never crosses an edge")
}

func TestCollinear(t *testing.T) {
	assert.True(t, Collinear(Pt(0, 0), Pt(5, 5), Pt(10, 10)))
	assert.False(t, Collinear(Pt(0, 0), Pt(5, 6), Pt(10, 10)))
	// p2 beyond p3 is not on the segment
	assert.False(t, Collinear(Pt(0, 0), Pt(20, 20), Pt(10, 10)))
	assert.True(t, Collinear(Pt(3, 3), Pt(3, 3), Pt(3, 3)))
}

func TestRectHelpers(t *testing.T) {
	r := RectFromPoints(Pt(10, 20), Pt(0, 0))
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 10, Height: 20}, r)
	assert.True(t, r.Contains(Pt(10, 20)))
	assert.False(t, r.Contains(Pt(11, 20)))
	assert.True(t, r.ContainsRect(Rect{X: 1, Y: 1, Width: 2, Height: 2}))

	u := r.Union(Rect{X: -5, Y: 5, Width: 1, Height: 1})
	assert.Equal(t, Rect{X: -5, Y: 0, Width: 15, Height: 20}, u)

	s := Rect{X: 5, Y: 5}.EnsureSpan(4)
	assert.Equal(t, Rect{X: 3, Y: 3, Width: 4, Height: 4}, s)
}

func TestScaleAround(t *testing.T) {
	p := Pt(10, 10).ScaleAround(2, 0.5, Pt(0, 20))
	assert.Equal(t, Pt(20, 15), p)
}
