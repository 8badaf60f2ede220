package protocol

import (
	"fmt"
	"time"

	"SketchBoard/internal/state"
)

// WireElement is the tagged union form of an element on the wire.
type WireElement struct {
	ID          int64      `json:"id,omitempty"`
	Kind        state.Kind `json:"kind"`
	Color       string     `json:"color,omitempty"`
	StrokeWidth float64    `json:"strokeWidth,omitempty"`
	Dash        []float64  `json:"dash,omitempty"`
	Brush       string     `json:"brush,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`

	// line
	Vertices []float64 `json:"vertices,omitempty"`

	// shape, text, image
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// shape, image
	Width float64 `json:"width,omitempty"`

	// shape
	Shape   state.ShapeType `json:"shape,omitempty"`
	Height  float64         `json:"height,omitempty"`
	Fill    string          `json:"fill,omitempty"`
	MirrorX bool            `json:"mirrorX,omitempty"`
	MirrorY bool            `json:"mirrorY,omitempty"`

	// text
	Text       string  `json:"text,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`

	// image
	Src string `json:"src,omitempty"`
}

// FromElement converts a model element to its wire form.
func FromElement(e state.Element) WireElement {
	h := e.Header()
	w := WireElement{
		ID:          e.ID(),
		Kind:        e.Kind(),
		Color:       h.Style.Color,
		StrokeWidth: h.Style.Width,
		Dash:        h.Style.Dash,
		Brush:       h.Style.Brush,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	switch el := e.(type) {
	case *state.Stroke:
		w.Vertices = FlattenVertices(el.Vertices)
	case *state.Shape:
		w.Shape, w.X, w.Y, w.Width, w.Height = el.Type, el.X, el.Y, el.Width, el.Height
		w.Fill, w.MirrorX, w.MirrorY = el.Fill, el.MirrorX, el.MirrorY
	case *state.Text:
		w.X, w.Y, w.Text, w.FontFamily, w.FontSize = el.X, el.Y, el.Content, el.FontFamily, el.FontSize
	case *state.Image:
		w.X, w.Y, w.Width, w.Src = el.X, el.Y, el.Width, el.Source
	}
	return w
}

// FromElements converts a slice of elements.
func FromElements(els []state.Element) []WireElement {
	out := make([]WireElement, 0, len(els))
	for _, e := range els {
		out = append(out, FromElement(e))
	}
	return out
}

// Element builds the model element described by w.
func (w WireElement) Element() (state.Element, error) {
	style := state.Style{Color: w.Color, Width: w.StrokeWidth, Dash: w.Dash, Brush: w.Brush}
	var e state.Element
	switch w.Kind {
	case state.KindStroke:
		vs, err := UnflattenVertices(w.Vertices)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", w.ID, err)
		}
		s := state.NewStroke(style, state.Vertex{})
		s.Vertices = vs
		e = s
	case state.KindShape:
		s := state.NewShape(style, w.Shape, w.Fill, state.Vertex{X: w.X, Y: w.Y})
		s.Width, s.Height, s.MirrorX, s.MirrorY = w.Width, w.Height, w.MirrorX, w.MirrorY
		e = s
	case state.KindText:
		t := state.NewText(style, w.FontFamily, w.FontSize, state.Vertex{X: w.X, Y: w.Y})
		t.Content = w.Text
		e = t
	case state.KindImage:
		e = state.NewImage(style, w.Src, w.Width, state.Vertex{X: w.X, Y: w.Y})
	default:
		return nil, fmt.Errorf("element %d kind %q: %w", w.ID, w.Kind, ErrUnknownKind)
	}
	e.SetID(w.ID)
	h := e.Header()
	if !w.CreatedAt.IsZero() {
		h.CreatedAt = w.CreatedAt
	}
	if !w.UpdatedAt.IsZero() {
		h.UpdatedAt = w.UpdatedAt
	}
	return e, nil
}

// FlattenVertices packs vertices as [x, y, x, y, ...].
func FlattenVertices(vs []state.Vertex) []float64 {
	out := make([]float64, 0, 2*len(vs))
	for _, v := range vs {
		out = append(out, v.X, v.Y)
	}
	return out
}

// UnflattenVertices is the inverse of FlattenVertices.
func UnflattenVertices(flat []float64) ([]state.Vertex, error) {
	if len(flat)%2 != 0 {
		return nil, ErrOddVertices
	}
	out := make([]state.Vertex, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		out = append(out, state.Vertex{X: flat[i], Y: flat[i+1]})
	}
	return out, nil
}
