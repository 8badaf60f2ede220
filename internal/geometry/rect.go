package geometry

import "math"

// Rect is an axis-aligned rectangle. Width and Height are never negative
// when built through RectFromPoints.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the normalized rectangle spanned by two corners.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

func (r Rect) Min() Point         { return Point{r.X, r.Y} }
func (r Rect) Max() Point         { return Point{r.X + r.Width, r.Y + r.Height} }
func (r Rect) TopLeft() Point     { return Point{r.X, r.Y} }
func (r Rect) TopRight() Point    { return Point{r.X + r.Width, r.Y} }
func (r Rect) BottomLeft() Point  { return Point{r.X, r.Y + r.Height} }
func (r Rect) BottomRight() Point { return Point{r.X + r.Width, r.Y + r.Height} }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

// IsZero reports whether r has no area.
func (r Rect) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return r.Contains(o.Min()) && r.Contains(o.Max())
}

// Overlaps reports whether r and o share any point.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.X+r.Width < o.X || o.X+o.Width < r.X ||
		r.Y+r.Height < o.Y || o.Y+o.Height < r.Y)
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// EnsureSpan widens r symmetrically so that both sides are at least min long.
func (r Rect) EnsureSpan(min float64) Rect {
	if r.Width < min {
		r.X -= (min - r.Width) / 2
		r.Width = min
	}
	if r.Height < min {
		r.Y -= (min - r.Height) / 2
		r.Height = min
	}
	return r
}

// Square returns the rectangle of side size centred on p.
func Square(p Point, size float64) Rect {
	return Rect{X: p.X - size/2, Y: p.Y - size/2, Width: size, Height: size}
}
