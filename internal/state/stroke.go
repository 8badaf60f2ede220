package state

import (
	"math"

	"SketchBoard/internal/geometry"
)

// Stroke is a freehand polyline.
type Stroke struct {
	Base
	Vertices []Vertex
}

// NewStroke starts an unconfirmed stroke at p.
func NewStroke(style Style, p Vertex) *Stroke {
	return &Stroke{Base: newBase(style), Vertices: []Vertex{p}}
}

func (s *Stroke) Kind() Kind { return KindStroke }

// Append adds v to the end of the stroke.
func (s *Stroke) Append(v ...Vertex) {
	s.Vertices = append(s.Vertices, v...)
	s.touch()
}

// ReplaceLast overwrites the final vertex.
func (s *Stroke) ReplaceLast(v Vertex) {
	if len(s.Vertices) == 0 {
		s.Vertices = append(s.Vertices, v)
		return
	}
	s.Vertices[len(s.Vertices)-1] = v
	s.touch()
}

// Last returns the final vertex and false for an empty stroke.
func (s *Stroke) Last() (Vertex, bool) {
	if len(s.Vertices) == 0 {
		return Vertex{}, false
	}
	return s.Vertices[len(s.Vertices)-1], true
}

func (s *Stroke) Position() Vertex {
	if len(s.Vertices) == 0 {
		return Vertex{}
	}
	return s.Vertices[0]
}

// SetPosition translates the stroke so that its first vertex lands on p.
func (s *Stroke) SetPosition(p Vertex) {
	d := p.Sub(s.Position())
	s.Move(d.X, d.Y)
}

func (s *Stroke) Bounds() geometry.Rect {
	if len(s.Vertices) == 0 {
		return geometry.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range s.Vertices {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	r := geometry.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	return r.Expand(s.Style.Width / 2)
}

func (s *Stroke) reach(radius float64) float64 {
	r := radius + s.Style.Width/2
	return r * r
}

func (s *Stroke) HitPoint(p Vertex, radius float64) bool {
	limit := s.reach(radius)
	switch len(s.Vertices) {
	case 0:
		return false
	case 1:
		return p.DistanceSquared(s.Vertices[0]) <= limit
	}
	for i := 1; i < len(s.Vertices); i++ {
		if geometry.DistanceSquaredToSegment(p, s.Vertices[i-1], s.Vertices[i]) <= limit {
			return true
		}
	}
	return false
}

// HitRect reports whether any vertex lies in r or any segment crosses its edges.
func (s *Stroke) HitRect(r geometry.Rect) bool {
	for _, v := range s.Vertices {
		if r.Contains(v) {
			return true
		}
	}
	for i := 1; i < len(s.Vertices); i++ {
		if _, ok := geometry.SegmentRectIntersection(s.Vertices[i-1], s.Vertices[i], r); ok {
			return true
		}
	}
	return false
}

// Crosses reports whether segment a-b crosses the stroke.
func (s *Stroke) Crosses(a, b Vertex) bool {
	if len(s.Vertices) == 1 {
		return geometry.DistanceSquaredToSegment(s.Vertices[0], a, b) <= s.reach(0)
	}
	for i := 1; i < len(s.Vertices); i++ {
		if geometry.SegmentsIntersect(a, b, s.Vertices[i-1], s.Vertices[i]) {
			return true
		}
	}
	return false
}

func (s *Stroke) Move(dx, dy float64) {
	d := Vertex{X: dx, Y: dy}
	for i, v := range s.Vertices {
		s.Vertices[i] = v.Add(d)
	}
	s.touch()
}

func (s *Stroke) Scale(sx, sy float64, fixed Vertex) {
	for i, v := range s.Vertices {
		s.Vertices[i] = v.ScaleAround(sx, sy, fixed)
	}
	s.touch()
}

func (s *Stroke) Floor() {
	for i, v := range s.Vertices {
		s.Vertices[i] = v.Floor()
	}
}

func (s *Stroke) Clone() Element {
	c := &Stroke{Base: s.Base, Vertices: append([]Vertex(nil), s.Vertices...)}
	c.Style = s.Style.clone()
	c.key = NewKey()
	c.id = NoID
	return c
}

func (s *Stroke) CopyFrom(src Element) error {
	o, ok := src.(*Stroke)
	if !ok {
		return mismatch(s, src)
	}
	s.copyHeader(&o.Base)
	s.Vertices = append(s.Vertices[:0], o.Vertices...)
	return nil
}
