package state

import (
	"math"

	"SketchBoard/internal/geometry"
)

// ShapeType is the geometric form of a Shape.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeEllipse   ShapeType = "ellipse"
	ShapeTriangle  ShapeType = "triangle"
)

// Shape is anchored at (X, Y). Width and Height are never negative; the
// mirror flags record that the shape extends left of or above the anchor.
type Shape struct {
	Base
	Type    ShapeType
	X, Y    float64
	Width   float64
	Height  float64
	Fill    string
	MirrorX bool
	MirrorY bool
}

// NewShape starts an unconfirmed, zero sized shape at p.
func NewShape(style Style, typ ShapeType, fill string, p Vertex) *Shape {
	return &Shape{Base: newBase(style), Type: typ, Fill: fill, X: p.X, Y: p.Y}
}

func (s *Shape) Kind() Kind { return KindShape }

// Span sets the size from the anchor to the opposite corner c.
func (s *Shape) Span(c Vertex) {
	dx, dy := c.X-s.X, c.Y-s.Y
	s.Width, s.Height = math.Abs(dx), math.Abs(dy)
	if s.Type == ShapeCircle {
		d := math.Max(s.Width, s.Height)
		s.Width, s.Height = d, d
	}
	s.MirrorX, s.MirrorY = dx < 0, dy < 0
	s.touch()
}

// Box is the normalized rectangle the shape occupies.
func (s *Shape) Box() geometry.Rect {
	r := geometry.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
	if s.MirrorX {
		r.X -= s.Width
	}
	if s.MirrorY {
		r.Y -= s.Height
	}
	return r
}

func (s *Shape) setBox(r geometry.Rect) {
	s.Width, s.Height = r.Width, r.Height
	s.X, s.Y = r.X, r.Y
	if s.MirrorX {
		s.X += r.Width
	}
	if s.MirrorY {
		s.Y += r.Height
	}
}

func (s *Shape) Position() Vertex { return Vertex{X: s.X, Y: s.Y} }

func (s *Shape) SetPosition(p Vertex) {
	s.X, s.Y = p.X, p.Y
	s.touch()
}

func (s *Shape) Bounds() geometry.Rect { return s.Box() }

func (s *Shape) HitPoint(p Vertex, radius float64) bool {
	return s.Box().Expand(radius).Contains(p)
}

func (s *Shape) HitRect(r geometry.Rect) bool { return r.Overlaps(s.Box()) }

func (s *Shape) Move(dx, dy float64) {
	s.X += dx
	s.Y += dy
	s.touch()
}

func (s *Shape) Scale(sx, sy float64, fixed Vertex) {
	b := s.Box()
	s.setBox(geometry.RectFromPoints(
		b.Min().ScaleAround(sx, sy, fixed),
		b.Max().ScaleAround(sx, sy, fixed),
	))
	s.touch()
}

func (s *Shape) Floor() {
	s.X, s.Y = math.Floor(s.X), math.Floor(s.Y)
	s.Width, s.Height = math.Floor(s.Width), math.Floor(s.Height)
}

func (s *Shape) Clone() Element {
	c := *s
	c.Style = s.Style.clone()
	c.key = NewKey()
	c.id = NoID
	return &c
}

func (s *Shape) CopyFrom(src Element) error {
	o, ok := src.(*Shape)
	if !ok {
		return mismatch(s, src)
	}
	s.copyHeader(&o.Base)
	s.Type, s.X, s.Y, s.Width, s.Height = o.Type, o.X, o.Y, o.Width, o.Height
	s.Fill, s.MirrorX, s.MirrorY = o.Fill, o.MirrorX, o.MirrorY
	return nil
}
