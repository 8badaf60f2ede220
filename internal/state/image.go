package state

import (
	"math"

	"SketchBoard/internal/geometry"
)

// Image places a picture referenced by Source. The height follows the
// picture's aspect ratio and is filled in by the scene.
type Image struct {
	Base
	X, Y   float64
	Width  float64
	Source string

	height float64
}

// NewImage creates an unconfirmed image with its top-left corner at p.
func NewImage(style Style, source string, width float64, p Vertex) *Image {
	return &Image{Base: newBase(style), X: p.X, Y: p.Y, Width: width, Source: source}
}

func (i *Image) Kind() Kind { return KindImage }

// SetHeight stores the height derived from the picture's aspect ratio.
func (i *Image) SetHeight(h float64) { i.height = h }

// Height returns the known height or treats the picture as square.
func (i *Image) Height() float64 {
	if i.height > 0 {
		return i.height
	}
	return i.Width
}

func (i *Image) Position() Vertex { return Vertex{X: i.X, Y: i.Y} }

func (i *Image) SetPosition(p Vertex) {
	i.X, i.Y = p.X, p.Y
	i.touch()
}

func (i *Image) Bounds() geometry.Rect {
	return geometry.Rect{X: i.X, Y: i.Y, Width: i.Width, Height: i.Height()}
}

func (i *Image) HitPoint(p Vertex, radius float64) bool {
	return i.Bounds().Expand(radius).Contains(p)
}

func (i *Image) HitRect(r geometry.Rect) bool { return r.Overlaps(i.Bounds()) }

func (i *Image) Move(dx, dy float64) {
	i.X += dx
	i.Y += dy
	i.touch()
}

// Scale keeps the aspect ratio. The horizontal factor sizes it unless it is
// 1, as it is for the top and bottom grips.
func (i *Image) Scale(sx, sy float64, fixed Vertex) {
	p := i.Position().ScaleAround(sx, sy, fixed)
	i.X, i.Y = p.X, p.Y
	f := sx
	if f == 1 {
		f = sy
	}
	i.Width *= f
	i.height *= f
	i.touch()
}

func (i *Image) Floor() {
	i.X, i.Y = math.Floor(i.X), math.Floor(i.Y)
	i.Width = math.Floor(i.Width)
}

func (i *Image) Clone() Element {
	c := *i
	c.Style = i.Style.clone()
	c.key = NewKey()
	c.id = NoID
	return &c
}

func (i *Image) CopyFrom(src Element) error {
	o, ok := src.(*Image)
	if !ok {
		return mismatch(i, src)
	}
	i.copyHeader(&o.Base)
	if i.Source != o.Source {
		i.height = 0
	} else if i.Width > 0 {
		i.height *= o.Width / i.Width
	}
	i.X, i.Y, i.Width, i.Source = o.X, o.Y, o.Width, o.Source
	return nil
}
