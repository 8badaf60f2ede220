package render

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"

	"SketchBoard/internal/geometry"
	"SketchBoard/internal/state"
)

var ErrUnknownVariant = errors.New("render: unknown element variant")

func pos(v state.Vertex) fyne.Position { return fyne.NewPos(float32(v.X), float32(v.Y)) }

func size(w, h float64) fyne.Size { return fyne.NewSize(float32(w), float32(h)) }

// Render builds a new node for e.
func Render(e state.Element) (fyne.CanvasObject, error) {
	return update(nil, e)
}

// update refreshes obj in place when its node type still fits e and builds a
// replacement otherwise. A nil obj always builds.
func update(obj fyne.CanvasObject, e state.Element) (fyne.CanvasObject, error) {
	switch el := e.(type) {
	case *state.Stroke:
		return strokeNode(obj, el), nil
	case *state.Shape:
		return shapeNode(obj, el), nil
	case *state.Text:
		return textNode(obj, el), nil
	case *state.Image:
		return imageNode(obj, el), nil
	}
	return nil, fmt.Errorf("%T: %w", e, ErrUnknownVariant)
}

// strokeNode draws a lone vertex as a filled dot and anything longer as a
// container of line segments.
func strokeNode(obj fyne.CanvasObject, s *state.Stroke) fyne.CanvasObject {
	c := StrokeColor(s.Style)
	w := math.Max(s.Style.Width, 1)
	if len(s.Vertices) <= 1 {
		dot, ok := obj.(*canvas.Circle)
		if !ok {
			dot = canvas.NewCircle(c)
		}
		dot.FillColor = c
		center := s.Position()
		dot.Position1 = pos(center.Sub(state.Vertex{X: w / 2, Y: w / 2}))
		dot.Position2 = pos(center.Add(state.Vertex{X: w / 2, Y: w / 2}))
		dot.Refresh()
		return dot
	}

	lines, ok := obj.(*fyne.Container)
	if !ok {
		lines = container.NewWithoutLayout()
	}
	segs := dashSegments(s.Vertices, s.Style.Dash)
	objs := make([]fyne.CanvasObject, 0, len(segs))
	for _, sg := range segs {
		l := canvas.NewLine(c)
		l.StrokeWidth = float32(w)
		l.Position1, l.Position2 = pos(sg.a), pos(sg.b)
		objs = append(objs, l)
	}
	lines.Objects = objs
	lines.Refresh()
	return lines
}

func shapeNode(obj fyne.CanvasObject, s *state.Shape) fyne.CanvasObject {
	stroke := StrokeColor(s.Style)
	fill := colorOr(s.Fill, color.NRGBA{})
	box := s.Box()
	w := float32(s.Style.Width)

	switch s.Type {
	case state.ShapeCircle, state.ShapeEllipse:
		c, ok := obj.(*canvas.Circle)
		if !ok {
			c = canvas.NewCircle(fill)
		}
		c.FillColor, c.StrokeColor, c.StrokeWidth = fill, stroke, w
		c.Position1, c.Position2 = pos(box.Min()), pos(box.Max())
		c.Refresh()
		return c
	case state.ShapeTriangle:
		tri, ok := obj.(*fyne.Container)
		if !ok {
			tri = container.NewWithoutLayout()
		}
		apex := state.Vertex{X: box.X + box.Width/2, Y: box.Y}
		left, right := box.BottomLeft(), box.BottomRight()
		if s.MirrorY {
			apex.Y = box.Y + box.Height
			left, right = box.TopLeft(), box.TopRight()
		}
		corners := []state.Vertex{apex, right, left, apex}
		objs := make([]fyne.CanvasObject, 0, 3)
		for _, sg := range dashSegments(corners, s.Style.Dash) {
			l := canvas.NewLine(stroke)
			l.StrokeWidth = w
			l.Position1, l.Position2 = pos(sg.a), pos(sg.b)
			objs = append(objs, l)
		}
		tri.Objects = objs
		tri.Refresh()
		return tri
	}

	r, ok := obj.(*canvas.Rectangle)
	if !ok {
		r = canvas.NewRectangle(fill)
	}
	r.FillColor, r.StrokeColor, r.StrokeWidth = fill, stroke, w
	r.Move(pos(box.Min()))
	r.Resize(size(box.Width, box.Height))
	r.Refresh()
	return r
}

func textStyle(family string) fyne.TextStyle {
	switch family {
	case "mono", "monospace":
		return fyne.TextStyle{Monospace: true}
	case "serif-italic", "italic":
		return fyne.TextStyle{Italic: true}
	case "bold":
		return fyne.TextStyle{Bold: true}
	}
	return fyne.TextStyle{}
}

// textNode also records the measured size on the element so that hit tests
// and selection frames match what is on screen.
func textNode(obj fyne.CanvasObject, t *state.Text) fyne.CanvasObject {
	txt, ok := obj.(*canvas.Text)
	if !ok {
		txt = canvas.NewText("", color.Black)
	}
	txt.Text = t.Content
	txt.Color = colorOr(t.Style.Color, color.NRGBA{A: 255})
	txt.TextSize = float32(t.FontSize)
	txt.TextStyle = textStyle(t.FontFamily)
	txt.Move(pos(t.Position()))
	if t.Content != "" {
		m := fyne.MeasureText(t.Content, txt.TextSize, txt.TextStyle)
		t.SetMeasured(float64(m.Width), float64(m.Height))
		txt.Resize(m)
	}
	txt.Refresh()
	return txt
}

// imageNode sizes the picture from its header the first time it is seen.
func imageNode(obj fyne.CanvasObject, im *state.Image) fyne.CanvasObject {
	img, ok := obj.(*canvas.Image)
	if !ok {
		img = newImage(im)
	}
	img.Move(pos(im.Position()))
	img.Resize(size(im.Width, im.Height()))
	img.Refresh()
	return img
}

func newImage(im *state.Image) *canvas.Image {
	var img *canvas.Image
	uri, err := sourceURI(im.Source)
	if err != nil {
		log.Printf("[RENDER] Image %q: %v", im.Source, err)
		img = &canvas.Image{}
	} else {
		img = canvas.NewImageFromURI(uri)
	}
	img.FillMode = canvas.ImageFillStretch
	if aspect, err := ImageAspect(im.Source); err == nil && im.Width > 0 {
		im.SetHeight(math.Round(im.Width * aspect))
	} else if err != nil {
		log.Printf("[RENDER] Image %q kept square: %v", im.Source, err)
	}
	return img
}

func overlayRect(r geometry.Rect, stroke color.NRGBA, fill color.Color) *canvas.Rectangle {
	rect := canvas.NewRectangle(fill)
	rect.StrokeColor = stroke
	rect.StrokeWidth = 1
	rect.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	rect.Resize(size(r.Width, r.Height))
	return rect
}
