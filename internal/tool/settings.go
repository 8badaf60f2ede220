package tool

import (
	"SketchBoard/internal/geometry"
	"SketchBoard/internal/state"
)

// Settings is the current drawing style shared by the toolbar and the tools.
type Settings struct {
	Color string
	Fill  string
	Width float64
	Dash  []float64
	Brush string

	Shape state.ShapeType

	FontFamily string
	FontSize   float64

	ImageSource string
	ImageWidth  float64

	EraserRadius float64
	HitRadius    float64

	// Canvas is the drawable area; strokes leaving it are clipped to its edge.
	Canvas geometry.Rect
}

// DefaultSettings returns the style a fresh board starts with.
func DefaultSettings() *Settings {
	return &Settings{
		Color:        "#000000",
		Width:        3,
		Brush:        state.BrushPen,
		Shape:        state.ShapeRectangle,
		FontFamily:   "sans",
		FontSize:     18,
		ImageWidth:   200,
		EraserRadius: 8,
		HitRadius:    4,
		Canvas:       geometry.Rect{Width: 4000, Height: 3000},
	}
}

// Style snapshots the element style.
func (s *Settings) Style() state.Style {
	st := state.Style{Color: s.Color, Width: s.Width, Brush: s.Brush}
	if len(s.Dash) > 0 {
		st.Dash = append([]float64(nil), s.Dash...)
	}
	return st
}

func (s *Settings) SetColor(c string)          { s.Color = c }
func (s *Settings) SetFill(c string)           { s.Fill = c }
func (s *Settings) SetWidth(w float64)         { s.Width = w }
func (s *Settings) SetDash(d []float64)        { s.Dash = d }
func (s *Settings) SetBrush(b string)          { s.Brush = b }
func (s *Settings) SetShape(t state.ShapeType) { s.Shape = t }
func (s *Settings) SetFont(family string, size float64) {
	s.FontFamily, s.FontSize = family, size
}

// SetImage preselects the picture the image tool will place.
func (s *Settings) SetImage(src string, width float64) {
	s.ImageSource = src
	if width > 0 {
		s.ImageWidth = width
	}
}

// Clipboard is the copy register shared by every sketch in the process.
type Clipboard struct {
	elements []state.Element
	origin   state.Vertex
}

// Set captures els by reference together with the copy origin.
func (c *Clipboard) Set(els []state.Element, origin state.Vertex) {
	c.elements = append([]state.Element(nil), els...)
	c.origin = origin
}

// Get returns the captured elements and origin.
func (c *Clipboard) Get() ([]state.Element, state.Vertex) {
	return c.elements, c.origin
}

// Empty reports whether nothing has been copied.
func (c *Clipboard) Empty() bool { return len(c.elements) == 0 }
