package state

import (
	"errors"
	"fmt"
	"time"

	"SketchBoard/internal/geometry"
)

// Vertex is an immutable (x, y) pair; equality and copies are by value.
type Vertex = geometry.Point

// NoID marks an element the server has not confirmed yet.
const NoID int64 = 0

var (
	ErrDuplicateID    = errors.New("state: duplicate element id")
	ErrUnconfirmed    = errors.New("state: element has no id")
	ErrUnknownElement = errors.New("state: unknown element")
	ErrKindMismatch   = errors.New("state: element kind mismatch")
)

// Kind tags the element variants. The values double as the wire type tags.
type Kind string

const (
	KindStroke Kind = "line"
	KindShape  Kind = "shape"
	KindText   Kind = "text"
	KindImage  Kind = "image"
)

// Brush style tags.
const (
	BrushPen         = "pen"
	BrushMarker      = "marker"
	BrushHighlighter = "highlighter"
)

// Style holds the attributes every element variant shares.
type Style struct {
	Color string
	Width float64
	Dash  []float64
	Brush string
}

func (s Style) clone() Style {
	if s.Dash != nil {
		s.Dash = append([]float64(nil), s.Dash...)
	}
	return s
}

// Base is embedded by every element variant.
type Base struct {
	id        int64
	key       string
	Style     Style
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newBase(style Style) Base {
	now := time.Now()
	return Base{key: NewKey(), Style: style.clone(), CreatedAt: now, UpdatedAt: now}
}

// ID returns the server assigned id, or NoID while unconfirmed.
func (b *Base) ID() int64 { return b.id }

// SetID records the id assigned by the server.
func (b *Base) SetID(id int64) { b.id = id }

// Key is a process-local identity that survives confirmation.
func (b *Base) Key() string { return b.key }

// Header exposes the shared attributes for codecs.
func (b *Base) Header() *Base { return b }

func (b *Base) touch() { b.UpdatedAt = time.Now() }

func (b *Base) copyHeader(src *Base) {
	b.Style = src.Style.clone()
	b.CreatedAt = src.CreatedAt
	b.UpdatedAt = src.UpdatedAt
}

// Element is the capability set shared by Stroke, Shape, Text and Image.
// The set of variants is closed.
type Element interface {
	ID() int64
	SetID(id int64)
	Key() string
	Header() *Base
	Kind() Kind

	Position() Vertex
	SetPosition(p Vertex)
	// Bounds is the outer extent used for selection frames.
	Bounds() geometry.Rect
	HitPoint(p Vertex, radius float64) bool
	HitRect(r geometry.Rect) bool
	Move(dx, dy float64)
	Scale(sx, sy float64, fixed Vertex)
	Floor()
	Clone() Element
	// CopyFrom replaces geometry and style with src's, keeping identity.
	CopyFrom(src Element) error

	sealed()
}

func (*Stroke) sealed() {}
func (*Shape) sealed()  {}
func (*Text) sealed()   {}
func (*Image) sealed()  {}

func mismatch(dst, src Element) error {
	return fmt.Errorf("copy %s into %s: %w", src.Kind(), dst.Kind(), ErrKindMismatch)
}

// Describe is a short form for log lines.
func Describe(e Element) string {
	if e == nil {
		return "<nil>"
	}
	if e.ID() == NoID {
		return fmt.Sprintf("%s(unconfirmed %s)", e.Kind(), e.Key()[:8])
	}
	return fmt.Sprintf("%s(%d)", e.Kind(), e.ID())
}
