package state

import (
	"math"
	"unicode/utf8"

	"SketchBoard/internal/geometry"
)

// Text is a single line label anchored at its top-left corner.
type Text struct {
	Base
	X, Y       float64
	Content    string
	FontFamily string
	FontSize   float64

	measured geometry.Point
}

// NewText starts an unconfirmed, empty label at p.
func NewText(style Style, family string, size float64, p Vertex) *Text {
	return &Text{Base: newBase(style), X: p.X, Y: p.Y, FontFamily: family, FontSize: size}
}

func (t *Text) Kind() Kind { return KindText }

// SetContent replaces the label text and drops the stale measurement.
func (t *Text) SetContent(s string) {
	t.Content = s
	t.measured = geometry.Point{}
	t.touch()
}

// SetMeasured stores the rendered size reported by the scene.
func (t *Text) SetMeasured(w, h float64) { t.measured = geometry.Point{X: w, Y: h} }

// Size returns the rendered size, or an estimate from the font size when the
// label has not been measured yet.
func (t *Text) Size() (w, h float64) {
	if t.measured.X > 0 || t.measured.Y > 0 {
		return t.measured.X, t.measured.Y
	}
	n := utf8.RuneCountInString(t.Content)
	return float64(n) * t.FontSize * 0.6, t.FontSize * 1.2
}

func (t *Text) Position() Vertex { return Vertex{X: t.X, Y: t.Y} }

func (t *Text) SetPosition(p Vertex) {
	t.X, t.Y = p.X, p.Y
	t.touch()
}

func (t *Text) Bounds() geometry.Rect {
	w, h := t.Size()
	return geometry.Rect{X: t.X, Y: t.Y, Width: w, Height: h}
}

func (t *Text) HitPoint(p Vertex, radius float64) bool {
	return t.Bounds().Expand(radius).Contains(p)
}

func (t *Text) HitRect(r geometry.Rect) bool { return r.Overlaps(t.Bounds()) }

func (t *Text) Move(dx, dy float64) {
	t.X += dx
	t.Y += dy
	t.touch()
}

// Scale moves the anchor and scales the font by the vertical factor, or the
// horizontal one when only that axis changes.
func (t *Text) Scale(sx, sy float64, fixed Vertex) {
	p := t.Position().ScaleAround(sx, sy, fixed)
	t.X, t.Y = p.X, p.Y
	f := sy
	if f == 1 {
		f = sx
	}
	t.FontSize = math.Max(1, t.FontSize*f)
	t.measured = geometry.Point{X: t.measured.X * sx, Y: t.measured.Y * sy}
	t.touch()
}

func (t *Text) Floor() {
	t.X, t.Y = math.Floor(t.X), math.Floor(t.Y)
	t.FontSize = math.Max(1, math.Floor(t.FontSize))
}

func (t *Text) Clone() Element {
	c := *t
	c.Style = t.Style.clone()
	c.key = NewKey()
	c.id = NoID
	return &c
}

func (t *Text) CopyFrom(src Element) error {
	o, ok := src.(*Text)
	if !ok {
		return mismatch(t, src)
	}
	t.copyHeader(&o.Base)
	t.X, t.Y, t.FontFamily, t.FontSize = o.X, o.Y, o.FontFamily, o.FontSize
	if t.Content != o.Content {
		t.Content = o.Content
		t.measured = geometry.Point{}
	}
	return nil
}
